package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"skenterprise/billing/internal/models"
	"skenterprise/billing/internal/utils"
)

const tolerance = 1e-9

func line(rate float64, qty int, cgst, sgst float64) models.InvoiceLine {
	return models.InvoiceLine{
		ID:          utils.NewSixID(),
		Name:        "BRASS BUSH",
		HsnCode:     "8401",
		Rate:        rate,
		Qty:         qty,
		CgstPercent: cgst,
		SgstPercent: sgst,
	}
}

func TestComputeLine_Basic(t *testing.T) {
	calc := NewTaxCalculator()

	l := line(150, 2, 9, 9)
	err := calc.ComputeLine(&l)
	assert.NoError(t, err)

	assert.InDelta(t, 300.0, l.Amount, tolerance)
	assert.InDelta(t, 27.0, l.CgstAmount, tolerance)
	assert.InDelta(t, 27.0, l.SgstAmount, tolerance)
	assert.InDelta(t, 354.0, l.Total, tolerance)
}

func TestComputeLine_ZeroRateAndZeroQty(t *testing.T) {
	calc := NewTaxCalculator()

	l := line(0, 5, 9, 9)
	assert.NoError(t, calc.ComputeLine(&l))
	assert.Zero(t, l.Amount)
	assert.Zero(t, l.Total)

	l = line(150, 0, 9, 9)
	assert.NoError(t, calc.ComputeLine(&l))
	assert.Zero(t, l.Amount)
	assert.Zero(t, l.Total)
}

func TestComputeLine_RejectsInvalidInput(t *testing.T) {
	calc := NewTaxCalculator()

	cases := []struct {
		name string
		l    models.InvoiceLine
		want error
	}{
		{"negative rate", line(-1, 1, 9, 9), ErrNegativeRate},
		{"negative qty", line(100, -1, 9, 9), ErrNegativeQty},
		{"negative cgst", line(100, 1, -9, 9), ErrInvalidTaxPercent},
		{"nan sgst", line(100, 1, 9, math.NaN()), ErrInvalidTaxPercent},
		{"inf rate", line(math.Inf(1), 1, 9, 9), ErrNegativeRate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := calc.ComputeLine(&tc.l)
			assert.ErrorIs(t, err, tc.want)
			// rejected edit leaves the derived fields untouched
			assert.Zero(t, tc.l.Amount)
			assert.Zero(t, tc.l.CgstAmount)
			assert.Zero(t, tc.l.SgstAmount)
			assert.Zero(t, tc.l.Total)
		})
	}
}

func TestRecompute_SingleLineInvoice(t *testing.T) {
	calc := NewTaxCalculator()

	inv := &models.Invoice{Items: []models.InvoiceLine{line(150, 2, 9, 9)}}
	assert.NoError(t, calc.Recompute(inv))

	assert.InDelta(t, 300.0, inv.WithoutGst, tolerance)
	assert.InDelta(t, 27.0, inv.CgstTotal, tolerance)
	assert.InDelta(t, 27.0, inv.SgstTotal, tolerance)
	assert.InDelta(t, 54.0, inv.GstAmount, tolerance)
	assert.InDelta(t, 354.0, inv.GrandTotal, tolerance)
	assert.InDelta(t, 0.0, inv.RoundOff, tolerance)
}

func TestRecompute_RoundOffUp(t *testing.T) {
	calc := NewTaxCalculator()

	// raw total 100*2 + 2*76.8 = 353.6 -> rounds up to 354
	inv := &models.Invoice{Items: []models.InvoiceLine{
		line(100, 2, 0, 0),
		line(76.8, 2, 0, 0),
	}}
	assert.NoError(t, calc.Recompute(inv))

	assert.InDelta(t, 354.0, inv.GrandTotal, tolerance)
	assert.InDelta(t, 0.4, inv.RoundOff, tolerance)
}

func TestRecompute_RoundOffDown(t *testing.T) {
	calc := NewTaxCalculator()

	// raw total 353.4 -> rounds down to 353, round-off is negative
	inv := &models.Invoice{Items: []models.InvoiceLine{line(353.4, 1, 0, 0)}}
	assert.NoError(t, calc.Recompute(inv))

	assert.InDelta(t, 353.0, inv.GrandTotal, tolerance)
	assert.InDelta(t, -0.4, inv.RoundOff, tolerance)
}

func TestRecompute_TieRoundsAwayFromZero(t *testing.T) {
	calc := NewTaxCalculator()

	inv := &models.Invoice{Items: []models.InvoiceLine{line(353.5, 1, 0, 0)}}
	assert.NoError(t, calc.Recompute(inv))
	assert.InDelta(t, 354.0, inv.GrandTotal, tolerance)
	assert.InDelta(t, 0.5, inv.RoundOff, tolerance)
}

func TestRecompute_EmptyInvoice(t *testing.T) {
	calc := NewTaxCalculator()

	inv := &models.Invoice{}
	assert.NoError(t, calc.Recompute(inv))
	assert.Zero(t, inv.WithoutGst)
	assert.Zero(t, inv.GstAmount)
	assert.Zero(t, inv.GrandTotal)
	assert.Zero(t, inv.RoundOff)
}

func TestRecompute_Reconciliation(t *testing.T) {
	calc := NewTaxCalculator()

	// A spread of realistic line mixes; the stored breakdown must always
	// reconcile and the grand total must always be whole rupees.
	invoices := []*models.Invoice{
		{Items: []models.InvoiceLine{line(150, 2, 9, 9)}},
		{Items: []models.InvoiceLine{line(99.99, 3, 9, 9), line(12.5, 7, 6, 6)}},
		{Items: []models.InvoiceLine{line(0.01, 1, 14, 14)}},
		{Items: []models.InvoiceLine{line(1234.56, 4, 9, 9), line(7.77, 13, 2.5, 2.5), line(500, 1, 0, 0)}},
	}

	for _, inv := range invoices {
		assert.NoError(t, calc.Recompute(inv))

		for _, l := range inv.Items {
			assert.InDelta(t, l.Rate*float64(l.Qty), l.Amount, tolerance)
		}
		assert.InDelta(t, inv.GrandTotal,
			inv.WithoutGst+inv.CgstTotal+inv.SgstTotal+inv.RoundOff, 0.005)
		_, frac := math.Modf(inv.GrandTotal)
		assert.Zero(t, frac, "grand total must be whole rupees")
		assert.Less(t, math.Abs(inv.RoundOff), 1.0)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	calc := NewTaxCalculator()

	inv := &models.Invoice{Items: []models.InvoiceLine{
		line(99.99, 3, 9, 9),
		line(12.5, 7, 6, 6),
	}}
	assert.NoError(t, calc.Recompute(inv))
	first := *inv
	firstItems := append([]models.InvoiceLine(nil), inv.Items...)

	assert.NoError(t, calc.Recompute(inv))
	assert.Equal(t, first.WithoutGst, inv.WithoutGst)
	assert.Equal(t, first.GstAmount, inv.GstAmount)
	assert.Equal(t, first.GrandTotal, inv.GrandTotal)
	assert.Equal(t, first.RoundOff, inv.RoundOff)
	assert.Equal(t, firstItems, inv.Items)
}

func TestRecompute_RejectsBadLineWithoutMutating(t *testing.T) {
	calc := NewTaxCalculator()

	inv := &models.Invoice{Items: []models.InvoiceLine{
		line(150, 2, 9, 9),
		line(-5, 1, 9, 9),
	}}
	before := append([]models.InvoiceLine(nil), inv.Items...)

	err := calc.Recompute(inv)
	assert.ErrorIs(t, err, ErrNegativeRate)
	assert.Equal(t, before, inv.Items)
	assert.Zero(t, inv.GrandTotal)
}
