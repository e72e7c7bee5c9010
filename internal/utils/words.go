package utils

import (
	"errors"
	"strings"
)

// ErrNegativeAmount is returned when a negative amount is passed to
// AmountInWords. A grand total can never legitimately be negative, so this
// signals a caller bug rather than a value to be phrased.
var ErrNegativeAmount = errors.New("amount must not be negative")

var wordOnes = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var wordTens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords renders a whole-rupee amount as words using the Indian
// numbering system (Thousand, Lakh, Crore). It is used for the "Amount
// Chargeable (In words)" field on the printed invoice.
func AmountInWords(amount int64) (string, error) {
	if amount < 0 {
		return "", ErrNegativeAmount
	}
	if amount == 0 {
		return "Zero Rupees Only", nil
	}
	return indianWords(amount) + " Rupees Only", nil
}

// indianWords converts n > 0 to words. Groups follow the Indian convention:
// the lowest three digits, then two-digit groups for Thousand, Lakh and
// Crore. Amounts of a crore and above recurse on the crore count, so the
// two-digit grouping rule keeps composing upward (e.g. "One Hundred Crore")
// instead of capping out.
func indianWords(n int64) string {
	if n >= 10000000 {
		rest := indianWords(n / 10000000)
		if rem := n % 10000000; rem != 0 {
			return rest + " Crore " + indianWords(rem)
		}
		return rest + " Crore"
	}

	var parts []string

	if n >= 100000 {
		parts = append(parts, underHundredWords(n/100000)+" Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, underHundredWords(n/1000)+" Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, wordOnes[n/100]+" Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, underHundredWords(n))
	}

	return strings.Join(parts, " ")
}

func underHundredWords(n int64) string {
	if n < 20 {
		return wordOnes[n]
	}
	result := wordTens[n/10]
	if n%10 != 0 {
		result += " " + wordOnes[n%10]
	}
	return result
}
