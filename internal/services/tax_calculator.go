package services

import (
	"errors"
	"fmt"
	"math"

	"skenterprise/billing/internal/models"
)

// Line input validation errors. A failed validation leaves the line
// untouched so the editor keeps its previous valid state.
var (
	ErrNegativeRate      = errors.New("line rate must not be negative")
	ErrNegativeQty       = errors.New("line qty must not be negative")
	ErrInvalidTaxPercent = errors.New("tax percent must be a non-negative number")
)

// ITaxCalculator derives per-line amounts and invoice aggregates. It is
// pure: no store, no clock, and recomputing with unchanged inputs always
// yields identical outputs.
type ITaxCalculator interface {
	ComputeLine(line *models.InvoiceLine) error
	Recompute(inv *models.Invoice) error
}

// taxCalculator implements ITaxCalculator.
type taxCalculator struct{}

// NewTaxCalculator creates a new TaxCalculator.
func NewTaxCalculator() ITaxCalculator {
	return &taxCalculator{}
}

// validateLine checks the editable fields before anything is derived.
func validateLine(line *models.InvoiceLine) error {
	if line.Rate < 0 || math.IsNaN(line.Rate) || math.IsInf(line.Rate, 0) {
		return fmt.Errorf("line %s: %w", line.ID.String(), ErrNegativeRate)
	}
	if line.Qty < 0 {
		return fmt.Errorf("line %s: %w", line.ID.String(), ErrNegativeQty)
	}
	for _, pct := range []float64{line.CgstPercent, line.SgstPercent} {
		if pct < 0 || math.IsNaN(pct) || math.IsInf(pct, 0) {
			return fmt.Errorf("line %s: %w", line.ID.String(), ErrInvalidTaxPercent)
		}
	}
	return nil
}

// ComputeLine fills the derived fields of a single line from rate, qty and
// the two tax percents:
//
//	amount     = rate * qty
//	cgstAmount = amount * cgstPercent / 100
//	sgstAmount = amount * sgstPercent / 100
//	total      = amount + cgstAmount + sgstAmount
//
// Invalid input is rejected without mutating the line.
func (c *taxCalculator) ComputeLine(line *models.InvoiceLine) error {
	if err := validateLine(line); err != nil {
		return err
	}

	line.Amount = line.Rate * float64(line.Qty)
	line.CgstAmount = line.Amount * line.CgstPercent / 100
	line.SgstAmount = line.Amount * line.SgstPercent / 100
	line.Total = line.Amount + line.CgstAmount + line.SgstAmount
	return nil
}

// Recompute derives every line and the invoice aggregates. The grand total
// is the raw total rounded to the nearest rupee (ties away from zero), NOT
// the sum of per-line roundings, so cumulative drift cannot creep in. The
// signed remainder is kept to two decimals as the round-off, and
//
//	withoutGst + gstAmount + roundOff == grandTotal
//
// holds exactly for what ends up stored. All lines are validated before any
// line is mutated, so a rejected edit leaves the invoice as it was.
func (c *taxCalculator) Recompute(inv *models.Invoice) error {
	for i := range inv.Items {
		if err := validateLine(&inv.Items[i]); err != nil {
			return err
		}
	}
	for i := range inv.Items {
		// validateLine already passed; ComputeLine cannot fail here
		_ = c.ComputeLine(&inv.Items[i])
	}

	var subtotal, cgstTotal, sgstTotal float64
	for _, line := range inv.Items {
		subtotal += line.Amount
		cgstTotal += line.CgstAmount
		sgstTotal += line.SgstAmount
	}

	rawTotal := subtotal + cgstTotal + sgstTotal
	grandTotal := math.Round(rawTotal) // ties round away from zero

	inv.WithoutGst = subtotal
	inv.CgstTotal = cgstTotal
	inv.SgstTotal = sgstTotal
	inv.GstAmount = cgstTotal + sgstTotal
	inv.GrandTotal = grandTotal
	inv.RoundOff = roundTo2(grandTotal - rawTotal)
	return nil
}

// roundTo2 keeps the round-off presentable at two decimal places.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
