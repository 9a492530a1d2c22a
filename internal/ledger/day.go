package ledger

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
)

// DateLayout is the wire format of a ledger date.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date at UTC midnight. All log dates are
// stored in this form so equality on (user_id, date) is exact.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be formatted as YYYY-MM-DD").
			WithDetails(map[string]any{"date": value})
	}
	return Day(parsed), nil
}

// FormatDay renders a ledger date.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Unexpected reports whether err is worth an error log, as opposed to a
// caller mistake such as a missing row or invalid input.
func Unexpected(err error) bool {
	switch {
	case err == nil,
		pkgerrors.IsCode(err, pkgerrors.CodeValidation),
		pkgerrors.IsCode(err, pkgerrors.CodeNotFound),
		pkgerrors.IsCode(err, pkgerrors.CodeNoGoals):
		return false
	}
	return true
}
