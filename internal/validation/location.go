package validation

import (
	"errors"
	"strconv"
	"strings"
)

// ParseZipcode parses a five digit postal code, leading zeros included
func ParseZipcode(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("zipcode is required")
	}

	zip, err := strconv.Atoi(value)
	if err != nil || len(value) != 5 {
		return 0, errors.New("zipcode must be 5 digits")
	}

	return zip, ValidateZipcode(zip)
}

// ValidateZipcode checks that zip fits in five digits
func ValidateZipcode(zip int) error {
	if zip < 0 || zip > 99999 {
		return errors.New("zipcode is out of range")
	}
	return nil
}

// ValidateLatitude checks a decimal latitude string
func ValidateLatitude(value string) error {
	return validateCoordinate("latitude", value, 90)
}

// ValidateLongitude checks a decimal longitude string
func ValidateLongitude(value string) error {
	return validateCoordinate("longitude", value, 180)
}

func validateCoordinate(field, value string, limit float64) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New(field + " is required")
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return errors.New(field + " must be a decimal number")
	}

	if f < -limit || f > limit {
		return errors.New(field + " is out of range")
	}

	return nil
}
