package enums

import (
	"fmt"
	"strings"
)

// FoodSource selects where a food search query is resolved.
type FoodSource string

const (
	// FoodSourceLocal searches public items plus the requester's private items.
	FoodSourceLocal FoodSource = "local"
	// FoodSourcePersonal searches only the requester's private items.
	FoodSourcePersonal FoodSource = "personal"
	// FoodSourceOpenFoodFacts delegates to the external catalog.
	FoodSourceOpenFoodFacts FoodSource = "openfoodfacts"
)

var validFoodSources = []FoodSource{
	FoodSourceLocal,
	FoodSourcePersonal,
	FoodSourceOpenFoodFacts,
}

func (s FoodSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FoodSource.
func (s FoodSource) IsValid() bool {
	for _, candidate := range validFoodSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsLocal reports whether the source is answered from the local embedded corpus.
func (s FoodSource) IsLocal() bool {
	return s == FoodSourceLocal || s == FoodSourcePersonal
}

// ParseFoodSource converts raw input into a FoodSource; empty input yields local.
func ParseFoodSource(value string) (FoodSource, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return FoodSourceLocal, nil
	}
	for _, candidate := range validFoodSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food source %q", value)
}
