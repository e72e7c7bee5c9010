package models

import (
	"errors"
	"time"

	"skenterprise/billing/internal/utils"
)

// InvoiceStatus is the payment state of a finalized invoice.
type InvoiceStatus string

const (
	StatusPaid    InvoiceStatus = "paid"
	StatusPending InvoiceStatus = "pending"
)

// ErrInvalidStatus is returned when a status value outside the known set
// is submitted.
var ErrInvalidStatus = errors.New("invalid invoice status")

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	return s == StatusPaid || s == StatusPending
}

// InvoiceLine is a single row on a tax invoice. Name, HSN code and rate are
// denormalized from the item catalog; the derived fields are filled in by
// the tax calculator and must satisfy:
//
//	Amount     = Rate * Qty
//	CgstAmount = Amount * CgstPercent / 100
//	SgstAmount = Amount * SgstPercent / 100
//	Total      = Amount + CgstAmount + SgstAmount
type InvoiceLine struct {
	ID          utils.SixID `bson:"id" json:"id"`
	ItemID      utils.SixID `bson:"item_id,omitempty" json:"itemId,omitempty"`
	Name        string      `bson:"name" json:"name"`
	HsnCode     string      `bson:"hsn_code" json:"hsnCode"`
	Rate        float64     `bson:"rate" json:"rate"`
	Qty         int         `bson:"qty" json:"qty"`
	CgstPercent float64     `bson:"cgst_percent" json:"cgstPercent"`
	SgstPercent float64     `bson:"sgst_percent" json:"sgstPercent"`
	Amount      float64     `bson:"amount" json:"amount"`
	CgstAmount  float64     `bson:"cgst_amount" json:"cgstAmount"`
	SgstAmount  float64     `bson:"sgst_amount" json:"sgstAmount"`
	Total       float64     `bson:"total" json:"total"`
}

// Invoice is a finalized tax invoice. Once created it is never mutated apart
// from its payment status; corrections mean issuing a new invoice.
//
// Aggregates reconcile exactly: WithoutGst + GstAmount + RoundOff ==
// GrandTotal, where GrandTotal is the raw total rounded to the nearest whole
// rupee and RoundOff carries the signed fractional remainder.
type Invoice struct {
	Base          `bson:",inline"`
	InvoiceNumber string        `bson:"invoice_number" json:"invoiceNumber"`
	Date          time.Time     `bson:"date" json:"date"`
	CustomerID    utils.SixID   `bson:"customer_id,omitempty" json:"customerId,omitempty"`
	CustomerName  string        `bson:"customer_name" json:"customerName"`
	GSTIN         string        `bson:"gstin" json:"gstin"`
	Address       string        `bson:"address" json:"address"`
	PO            string        `bson:"po" json:"po"`
	Items         []InvoiceLine `bson:"items" json:"items"`
	WithoutGst    float64       `bson:"without_gst" json:"withoutGst"`
	CgstTotal     float64       `bson:"cgst_total" json:"cgstTotal"`
	SgstTotal     float64       `bson:"sgst_total" json:"sgstTotal"`
	GstAmount     float64       `bson:"gst_amount" json:"gstAmount"`
	RoundOff      float64       `bson:"round_off" json:"roundOff"`
	GrandTotal    float64       `bson:"grand_total" json:"grandTotal"`
	Status        InvoiceStatus `bson:"status" json:"status"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// InvoiceDraft is the mutable shape submitted by the invoice editor. The
// service validates and recomputes it before it becomes an Invoice; client
// supplied derived fields and aggregates are never trusted.
type InvoiceDraft struct {
	Date         time.Time     `json:"date"`
	CustomerID   utils.SixID   `json:"customerId,omitempty"`
	CustomerName string        `json:"customerName"`
	GSTIN        string        `json:"gstin"`
	Address      string        `json:"address"`
	PO           string        `json:"po"`
	Items        []InvoiceLine `json:"items"`
	Status       InvoiceStatus `json:"status"`
}
