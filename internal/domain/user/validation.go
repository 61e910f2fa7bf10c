package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	specialChars    = `!@#$%^&*(),.?":{}|<>`
)

// ValidateUsername checks 3-80 characters, a leading letter, then letters,
// digits, underscores or hyphens.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 80 {
		return fmt.Errorf("username must be between 3 and 80 characters long")
	}
	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("username cannot start with a number")
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username must start with a letter and can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("password must contain at least one uppercase letter")
	case !lower:
		return fmt.Errorf("password must contain at least one lowercase letter")
	case !digit:
		return fmt.Errorf("password must contain at least one digit")
	case !special:
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

// ValidateName applies to first and last names.
func ValidateName(field, value string) error {
	n := len([]rune(value))
	if n < 2 || n > 50 {
		return fmt.Errorf("%s must be between 2 and 50 characters", field)
	}
	if unicode.IsDigit([]rune(value)[0]) {
		return fmt.Errorf("%s cannot start with a number", field)
	}
	return nil
}

// ValidatePhoneNumber accepts local mobile numbers: "03" followed by nine digits.
func ValidatePhoneNumber(phone string) error {
	if len(phone) != 11 || !strings.HasPrefix(phone, "03") {
		return fmt.Errorf("phone_number must start with '03' and be exactly 11 digits long")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return fmt.Errorf("phone_number must start with '03' and be exactly 11 digits long")
		}
	}
	return nil
}

func ValidateSpecialization(specialization string) error {
	n := len([]rune(strings.TrimSpace(specialization)))
	if n < 3 || n > 100 {
		return fmt.Errorf("specialization must be between 3 and 100 characters")
	}
	return nil
}

func ValidateDateOfBirth(dob time.Time, now time.Time) error {
	if dob.IsZero() {
		return fmt.Errorf("dob is required")
	}
	if dob.After(now) {
		return fmt.Errorf("dob cannot be in the future")
	}
	return nil
}

// Validate collects every problem with the command rather than stopping at the first.
func (c *RegisterPatientCommand) Validate(now time.Time) []string {
	var errs []string
	errs = appendErr(errs, ValidateUsername(c.Username))
	errs = appendErr(errs, ValidatePassword(c.Password))
	errs = appendErr(errs, ValidateName("first_name", c.FirstName))
	errs = appendErr(errs, ValidateName("last_name", c.LastName))
	errs = appendErr(errs, ValidatePhoneNumber(c.PhoneNumber))
	errs = appendErr(errs, ValidateDateOfBirth(c.DateOfBirth, now))
	return errs
}

func (c *RegisterDoctorCommand) Validate() []string {
	var errs []string
	errs = appendErr(errs, ValidateUsername(c.Username))
	errs = appendErr(errs, ValidatePassword(c.Password))
	errs = appendErr(errs, ValidateName("first_name", c.FirstName))
	errs = appendErr(errs, ValidateName("last_name", c.LastName))
	errs = appendErr(errs, ValidatePhoneNumber(c.PhoneNumber))
	errs = appendErr(errs, ValidateSpecialization(c.Specialization))
	return errs
}

func (c *RegisterAdminCommand) Validate() []string {
	var errs []string
	errs = appendErr(errs, ValidateUsername(c.Username))
	errs = appendErr(errs, ValidatePassword(c.Password))
	return errs
}

func appendErr(errs []string, err error) []string {
	if err != nil {
		return append(errs, err.Error())
	}
	return errs
}
