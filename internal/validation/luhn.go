// Package validation содержит функции проверки платёжных данных.
package validation

import (
	"strings"
	"unicode"
)

const (
	minCardDigits = 12
	maxCardDigits = 19
)

// IsValidCardNumber проверяет номер карты: 12–19 цифр, допускаются пробелы и дефисы
// между группами, контрольная сумма по алгоритму Луна.
func IsValidCardNumber(number string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(number))

	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return false
	}
	return luhn(digits)
}

// IsDigits сообщает, что s состоит только из цифр и его длина в пределах [min, max].
func IsDigits(s string, min, max int) bool {
	if len(s) < min || len(s) > max {
		return false
	}
	for _, ch := range s {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

func luhn(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	double := false

	for i := len(number) - 1; i >= 0; i-- {
		ch := rune(number[i])
		if !unicode.IsDigit(ch) {
			return false
		}
		digit := int(ch - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}
