package document

import (
	"errors"
	"fmt"
	"strings"

	"skenterprise/billing/internal/config"
	"skenterprise/billing/internal/models"
	"skenterprise/billing/internal/utils"
)

// ErrNothingToRender means no invoice was supplied to assemble a document
// from. The exporter checks this before any output resource is opened.
var ErrNothingToRender = errors.New("no invoice document to render")

// placeholder fills optional fields (gstin, address, order no) so the fixed
// document layout never collapses around a missing value.
const placeholder = "-"

// SellerBlock is the letterhead: identity, bank details and terms come from
// configuration, not from the invoice.
type SellerBlock struct {
	Name          string `json:"name"`
	Tagline       string `json:"tagline"`
	Address       string `json:"address"`
	GSTIN         string `json:"gstin"`
	Mobile        string `json:"mobile"`
	PlaceOfSupply string `json:"placeOfSupply"`
	BankName      string `json:"bankName"`
	BankAccountNo string `json:"bankAccountNo"`
	BankIFSC      string `json:"bankIfsc"`
	BankBranch    string `json:"bankBranch"`
	Jurisdiction  string `json:"jurisdiction"`
}

// DocumentLine is one row of the items table, display-formatted.
type DocumentLine struct {
	Sr          int    `json:"sr"`
	Name        string `json:"name"`
	HsnCode     string `json:"hsnCode"`
	Qty         int    `json:"qty"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
	CgstPercent string `json:"cgstPercent"`
	CgstAmount  string `json:"cgstAmount"`
	SgstPercent string `json:"sgstPercent"`
	SgstAmount  string `json:"sgstAmount"`
	Total       string `json:"total"`
}

// InvoiceDocument is the read-only view handed to rendering and export. It
// performs no arithmetic: every number is taken from the invoice as stored,
// already satisfying the calculator's invariants. What the renderer gets is
// a snapshot; later edits to the source invoice do not reach an already
// assembled document.
type InvoiceDocument struct {
	Seller SellerBlock `json:"seller"`

	InvoiceNumber string `json:"invoiceNumber"`
	Date          string `json:"date"`
	OrderNo       string `json:"orderNo"`

	CustomerName    string `json:"customerName"`
	CustomerAddress string `json:"customerAddress"`
	CustomerGSTIN   string `json:"customerGstin"`

	Lines []DocumentLine `json:"lines"`

	TaxableAmount string `json:"taxableAmount"`
	CgstTotal     string `json:"cgstTotal"`
	SgstTotal     string `json:"sgstTotal"`
	ItemsTotal    string `json:"itemsTotal"`
	RoundOff      string `json:"roundOff"`
	ShowRoundOff  bool   `json:"showRoundOff"`
	GrandTotal    string `json:"grandTotal"`
	AmountInWords string `json:"amountInWords"`
}

// Build assembles the document for an invoice. The only failure mode is a
// negative grand total, which the calculator makes impossible for valid
// stored invoices, so an error here means the caller handed over a corrupt
// record.
func Build(inv *models.Invoice, cfg *config.Config) (*InvoiceDocument, error) {
	if inv == nil {
		return nil, ErrNothingToRender
	}

	words, err := utils.AmountInWords(int64(inv.GrandTotal))
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, err)
	}

	doc := &InvoiceDocument{
		Seller: SellerBlock{
			Name:          cfg.CompanyName,
			Tagline:       cfg.CompanyTagline,
			Address:       cfg.CompanyAddress,
			GSTIN:         cfg.CompanyGSTIN,
			Mobile:        cfg.CompanyMobile,
			PlaceOfSupply: cfg.PlaceOfSupply,
			BankName:      cfg.BankName,
			BankAccountNo: cfg.BankAccountNo,
			BankIFSC:      cfg.BankIFSC,
			BankBranch:    cfg.BankBranch,
			Jurisdiction:  cfg.Jurisdiction,
		},
		InvoiceNumber:   inv.InvoiceNumber,
		Date:            inv.Date.Format("02/01/2006"),
		OrderNo:         orPlaceholder(inv.PO),
		CustomerName:    strings.ToUpper(inv.CustomerName),
		CustomerAddress: orPlaceholder(strings.ToUpper(inv.Address)),
		CustomerGSTIN:   orPlaceholder(inv.GSTIN),
		TaxableAmount:   FormatINR(inv.WithoutGst),
		CgstTotal:       FormatINR(inv.CgstTotal),
		SgstTotal:       FormatINR(inv.SgstTotal),
		RoundOff:        formatSigned(inv.RoundOff),
		ShowRoundOff:    inv.RoundOff != 0,
		GrandTotal:      FormatINR(inv.GrandTotal),
		AmountInWords:   words,
	}

	var itemsTotal float64
	for i, item := range inv.Items {
		itemsTotal += item.Total
		doc.Lines = append(doc.Lines, DocumentLine{
			Sr:          i + 1,
			Name:        strings.ToUpper(item.Name),
			HsnCode:     item.HsnCode,
			Qty:         item.Qty,
			Rate:        FormatINR(item.Rate),
			Amount:      FormatINR(item.Amount),
			CgstPercent: trimPercent(item.CgstPercent),
			CgstAmount:  FormatINR(item.CgstAmount),
			SgstPercent: trimPercent(item.SgstPercent),
			SgstAmount:  FormatINR(item.SgstAmount),
			Total:       FormatINR(item.Total),
		})
	}
	doc.ItemsTotal = FormatINR(itemsTotal)

	return doc, nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func formatSigned(v float64) string {
	if v > 0 {
		return "+" + FormatINR(v)
	}
	return FormatINR(v)
}

// trimPercent renders tax percents the way the slab is spoken: "9", not
// "9.00", but "2.5" keeps its half.
func trimPercent(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}

// FormatINR formats an amount with two decimals and Indian digit grouping:
// the last three integer digits form one group, every group above that has
// two digits (12,34,567.89). Display-only: stored numeric values are never
// derived back from this.
func FormatINR(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		intPart = strings.Join(append(groups, tail), ",")
	}

	out := intPart + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
