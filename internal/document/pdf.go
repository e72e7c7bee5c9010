package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Fixed page geometry: A4 portrait, 12mm side margins, 10mm top margin.
// The table is padded to a minimum row count so short invoices keep the
// same full-page frame as long ones.
const (
	pageMarginSide = 12.0
	pageMarginTop  = 10.0
	printableWidth = 210.0 - 2*pageMarginSide
	minTableRows   = 15
	tableRowHeight = 7.0
)

// Column widths of the items table, in mm. Must sum to printableWidth.
var colWidths = [11]float64{8, 55, 18, 10, 18, 20, 8, 13, 8, 13, 15}

// RenderPDF renders an assembled invoice document to PDF bytes. It is
// headless: no display surface is involved, so the same bytes come out on a
// server as in a test.
func RenderPDF(doc *InvoiceDocument) ([]byte, error) {
	if doc == nil {
		return nil, ErrNothingToRender
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginSide, pageMarginTop, pageMarginSide)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	renderHeader(pdf, doc)
	renderPartyGrid(pdf, doc)
	renderItemsTable(pdf, doc)
	renderTotalsSection(pdf, doc)
	renderFooter(pdf, doc)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", doc.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func renderHeader(pdf *gofpdf.Fpdf, doc *InvoiceDocument) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(printableWidth/2, 4, "GSTIN: "+doc.Seller.GSTIN, "", 0, "L", false, 0, "")
	pdf.CellFormat(printableWidth/2, 4, "Mobile: "+doc.Seller.Mobile, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(printableWidth, 10, doc.Seller.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(printableWidth, 4, doc.Seller.Tagline, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(printableWidth, 4, doc.Seller.Address, "B", 1, "C", false, 0, "")

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(printableWidth, 7, "TAX - INVOICE", "TB", 1, "C", true, 0, "")
	pdf.Ln(2)
}

func renderPartyGrid(pdf *gofpdf.Fpdf, doc *InvoiceDocument) {
	half := printableWidth / 2
	top := pdf.GetY()

	// Left: billed party
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(half, 6, "M/s : "+doc.CustomerName, "LT", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(pageMarginSide)
	pdf.CellFormat(half, 6, "Add : "+doc.CustomerAddress, "L", 1, "L", false, 0, "")
	pdf.SetX(pageMarginSide)
	pdf.CellFormat(half, 6, "GST : "+doc.CustomerGSTIN, "LB", 1, "L", false, 0, "")

	// Right: invoice metadata
	pdf.SetY(top)
	metaX := pageMarginSide + half
	meta := [][2]string{
		{"Invoice No:", doc.InvoiceNumber},
		{"Date:", doc.Date},
		{"Order No:", doc.OrderNo},
		{"Place of Supply:", doc.Seller.PlaceOfSupply},
	}
	for i, row := range meta {
		pdf.SetX(metaX)
		border := "LR"
		if i == 0 {
			border = "LRT"
		}
		if i == len(meta)-1 {
			border = "LRB"
		}
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(half*0.45, 4.5, row[0], border, 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(half*0.55, 4.5, row[1], border, 1, "R", false, 0, "")
	}

	// The left block is 18mm tall, the right 18mm as well; continue below
	pdf.SetY(top + 18)
	pdf.Ln(2)
}

func renderItemsTable(pdf *gofpdf.Fpdf, doc *InvoiceDocument) {
	headers := [11]string{"Sr.", "Description of Goods", "HSN", "QTY", "RATE", "AMOUNT", "%", "CGST", "%", "SGST", "TOTAL"}

	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		last := 0
		if i == len(headers)-1 {
			last = 1
		}
		pdf.CellFormat(colWidths[i], 6, h, "1", last, "C", true, 0, "")
	}

	pdf.SetFont("Helvetica", "", 7)
	rows := len(doc.Lines)
	if rows < minTableRows {
		rows = minTableRows
	}
	for r := 0; r < rows; r++ {
		if r < len(doc.Lines) {
			l := doc.Lines[r]
			cells := [11]string{
				fmt.Sprintf("%d", l.Sr), l.Name, l.HsnCode, fmt.Sprintf("%d", l.Qty),
				l.Rate, l.Amount, l.CgstPercent, l.CgstAmount, l.SgstPercent, l.SgstAmount, l.Total,
			}
			aligns := [11]string{"C", "L", "C", "C", "R", "R", "C", "R", "C", "R", "R"}
			for i, cell := range cells {
				last := 0
				if i == len(cells)-1 {
					last = 1
				}
				pdf.CellFormat(colWidths[i], tableRowHeight, cell, "1", last, aligns[i], false, 0, "")
			}
		} else {
			// Empty filler row keeps the page frame stable
			for i := range colWidths {
				last := 0
				if i == len(colWidths)-1 {
					last = 1
				}
				pdf.CellFormat(colWidths[i], tableRowHeight, "", "1", last, "C", false, 0, "")
			}
		}
	}

	// Aggregate row under the table
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(245, 245, 245)
	labelWidth := colWidths[0] + colWidths[1] + colWidths[2] + colWidths[3] + colWidths[4]
	pdf.CellFormat(labelWidth, 7, "GRAND TOTAL ITEMS VALUE", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colWidths[5], 7, doc.TaxableAmount, "1", 0, "R", true, 0, "")
	pdf.CellFormat(colWidths[6], 7, "", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colWidths[7], 7, doc.CgstTotal, "1", 0, "R", true, 0, "")
	pdf.CellFormat(colWidths[8], 7, "", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colWidths[9], 7, doc.SgstTotal, "1", 0, "R", true, 0, "")
	pdf.CellFormat(colWidths[10], 7, doc.ItemsTotal, "1", 1, "R", true, 0, "")
	pdf.Ln(2)
}

func renderTotalsSection(pdf *gofpdf.Fpdf, doc *InvoiceDocument) {
	half := printableWidth / 2
	top := pdf.GetY()

	// Left: amount in words and bank details
	pdf.SetFont("Helvetica", "BI", 8)
	pdf.CellFormat(half, 5, "Amount Chargeable (In words):", "LT", 1, "L", false, 0, "")
	pdf.SetX(pageMarginSide)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.MultiCell(half, 5, doc.AmountInWords, "L", "L", false)

	pdf.SetX(pageMarginSide)
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(half, 5, "BANK DETAILS:", "L", 1, "L", false, 0, "")
	bank := [][2]string{
		{"Bank Name:", doc.Seller.BankName},
		{"A/c No:", doc.Seller.BankAccountNo},
		{"IFSC:", doc.Seller.BankIFSC},
		{"Branch:", doc.Seller.BankBranch},
	}
	for i, row := range bank {
		pdf.SetX(pageMarginSide)
		border := "L"
		if i == len(bank)-1 {
			border = "LB"
		}
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(22, 4, row[0], border, 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(half-22, 4, row[1], "", 1, "L", false, 0, "")
	}
	leftBottom := pdf.GetY()

	// Right: the totals breakdown that reconciles to the grand total
	pdf.SetY(top)
	metaX := pageMarginSide + half
	rows := [][2]string{
		{"Taxable Amount", doc.TaxableAmount},
		{"Add: Central Tax (CGST)", doc.CgstTotal},
		{"Add: State Tax (SGST)", doc.SgstTotal},
	}
	if doc.ShowRoundOff {
		rows = append(rows, [2]string{"Round Off (+/-)", doc.RoundOff})
	}
	pdf.SetFont("Helvetica", "B", 8)
	for _, row := range rows {
		pdf.SetX(metaX)
		pdf.CellFormat(half*0.6, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(half*0.4, 6, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.SetX(metaX)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(0, 0, 0)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(half*0.6, 10, "GRAND TOTAL", "1", 0, "L", true, 0, "")
	pdf.CellFormat(half*0.4, 10, "Rs. "+doc.GrandTotal, "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if pdf.GetY() < leftBottom {
		pdf.SetY(leftBottom)
	}
	pdf.Ln(3)
}

func renderFooter(pdf *gofpdf.Fpdf, doc *InvoiceDocument) {
	half := printableWidth / 2
	top := pdf.GetY()

	pdf.SetFont("Helvetica", "BU", 7)
	pdf.CellFormat(half, 4, "TERMS & CONDITIONS:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	terms := []string{
		"1. Goods are dispatched on buyer's risk.",
		"2. Interest @ 12% will be charged if not paid within 7 days.",
		"3. No complaint will be entertained after 2 days of delivery.",
		fmt.Sprintf("4. Subject to %s Jurisdiction only.", doc.Seller.Jurisdiction),
	}
	for _, term := range terms {
		pdf.SetX(pageMarginSide)
		pdf.CellFormat(half, 4, term, "", 1, "L", false, 0, "")
	}

	pdf.SetY(top)
	metaX := pageMarginSide + half
	pdf.SetX(metaX)
	pdf.SetFont("Helvetica", "BI", 8)
	pdf.CellFormat(half, 5, "For, "+doc.Seller.Name, "", 1, "R", false, 0, "")
	pdf.SetY(top + 25)
	pdf.SetX(metaX)
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(half, 5, "Authorised Signature", "T", 1, "R", false, 0, "")
}
