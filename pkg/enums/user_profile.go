package enums

import "fmt"

// Gender is used for basal metabolic rate estimates.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var validGenders = []Gender{GenderMale, GenderFemale}

// IsValid reports whether the value is a known Gender.
func (g Gender) IsValid() bool {
	for _, candidate := range validGenders {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGender converts raw input into a Gender.
func ParseGender(value string) (Gender, error) {
	for _, candidate := range validGenders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gender %q", value)
}

// ActivityLevel describes a user's habitual activity.
type ActivityLevel string

const (
	ActivityLevelSedentary        ActivityLevel = "sedentary"
	ActivityLevelLightlyActive    ActivityLevel = "lightly_active"
	ActivityLevelModeratelyActive ActivityLevel = "moderately_active"
	ActivityLevelVeryActive       ActivityLevel = "very_active"
	ActivityLevelSuperActive      ActivityLevel = "super_active"
)

var validActivityLevels = []ActivityLevel{
	ActivityLevelSedentary,
	ActivityLevelLightlyActive,
	ActivityLevelModeratelyActive,
	ActivityLevelVeryActive,
	ActivityLevelSuperActive,
}

// IsValid reports whether the value is a known ActivityLevel.
func (a ActivityLevel) IsValid() bool {
	for _, candidate := range validActivityLevels {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityLevel converts raw input into an ActivityLevel.
func ParseActivityLevel(value string) (ActivityLevel, error) {
	for _, candidate := range validActivityLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity level %q", value)
}
