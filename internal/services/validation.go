package services

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validName accepts human names of at least two characters built from
// letters and whitespace only.
func validName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) < 2 {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// validPassword requires at least 6 characters containing a letter and a
// digit.
func validPassword(password string) bool {
	if len(password) < 6 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func validAge(age int) bool {
	return age >= 10 && age <= 120
}

func validHeight(height float64) bool {
	return height >= 50 && height <= 300
}

func validWeight(weight float64) bool {
	return weight >= 20 && weight <= 500
}
