// Package document validates and normalizes Brazilian taxpayer identifiers
// (CPF for individuals, CNPJ for companies).
package document

import "strings"

const (
	// CPFLength is the number of digits in a CPF.
	CPFLength = 11
	// CNPJLength is the number of digits in a CNPJ.
	CNPJLength = 14
)

var (
	cpfFirstWeights  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfSecondWeights = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}

	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Digits removes every non-digit character, so "529.982.247-25" and
// "52998224725" normalize to the same value.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ValidCPF reports whether s is an 11-digit CPF with correct check digits.
// Input must already be digits-only.
func ValidCPF(s string) bool {
	return valid(s, CPFLength, cpfFirstWeights, cpfSecondWeights)
}

// ValidCNPJ reports whether s is a 14-digit CNPJ with correct check digits.
// Input must already be digits-only.
func ValidCNPJ(s string) bool {
	return valid(s, CNPJLength, cnpjFirstWeights, cnpjSecondWeights)
}

// FormatCPF masks a CPF as XXX.XXX.XXX-XX. Values of the wrong length are
// returned unchanged.
func FormatCPF(s string) string {
	d := Digits(s)
	if len(d) != CPFLength {
		return s
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatCNPJ masks a CNPJ as XX.XXX.XXX/XXXX-XX. Values of the wrong length
// are returned unchanged.
func FormatCNPJ(s string) string {
	d := Digits(s)
	if len(d) != CNPJLength {
		return s
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

func valid(s string, length int, first, second []int) bool {
	if len(s) != length {
		return false
	}

	digits := make([]int, length)
	for i := 0; i < length; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		digits[i] = int(c - '0')
	}

	if repeated(s) {
		return false
	}

	if checkDigit(digits[:length-2], first) != digits[length-2] {
		return false
	}
	return checkDigit(digits[:length-1], second) == digits[length-1]
}

// checkDigit computes a Módulo 11 check digit.
func checkDigit(digits, weights []int) int {
	sum := 0
	for i, d := range digits {
		sum += d * weights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

func repeated(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
