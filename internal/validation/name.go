package validation

import (
	"fmt"
	"strings"
)

// ValidateName validates a required short label such as a place name or a firstname
func ValidateName(field, value string) error {
	return ValidateText(field, value, 100)
}

// ValidateText validates a required free-text value bounded to max characters
func ValidateText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return fmt.Errorf("%s is required", field)
	}

	if len([]rune(trimmed)) > max {
		return fmt.Errorf("%s is too long (max %d characters)", field, max)
	}

	return nil
}
