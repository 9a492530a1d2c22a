package enums

// LedgerKind names the two day-ledger variants.
type LedgerKind string

const (
	LedgerKindFood     LedgerKind = "food"
	LedgerKindActivity LedgerKind = "activity"
)

func (k LedgerKind) String() string {
	return string(k)
}
