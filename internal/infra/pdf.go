package infra

// pdf.go renders an A4 proforma invoice with go-pdf/fpdf:
//   - company header (logo when LOGO_FILE exists)
//   - invoice number, dates and terms
//   - Bill-To / Ship-To blocks side by side
//   - item table
//   - shipping fee, bold total and bank details

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"

	"github.com/go-pdf/fpdf"
)

// InvoicePDFName is the file name used for downloads, archives and e-mail
// attachments.
func InvoicePDFName(invoiceNo string) string {
	return "invoice_" + invoiceNo + ".pdf"
}

// RenderInvoicePDF builds the PDF for an invoice view in memory.
func RenderInvoicePDF(view *dto.InvoiceView) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	if logo := view.Company.LogoFile; logo != "" {
		if _, err := os.Stat(logo); err == nil {
			pdf.ImageOptions(logo, 12, 12, 30, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		}
	}
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(view.Company.Name), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, line := range []string{view.Company.Address, view.Company.Email, view.Company.Phone} {
		if line != "" {
			pdf.CellFormat(contentW, 4, tr(line), "", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "PROFORMA INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Invoice info ──────────────────────────────────────────────────────────
	half := contentW / 2
	info := [][2]string{
		{"Invoice No", view.InvoiceNo},
		{"Issue date", view.IssueDate},
		{"Required delivery", view.RequiredDeliveryDate},
		{"Shipping date", view.ShippingDate},
		{"Delivery mode", view.DeliveryMode},
		{"Trade terms", view.TradeTerms},
		{"Payment terms", view.PaymentTerms},
		{"Currency", view.Currency},
	}
	for i, kv := range info {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(half*0.4, 5, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		ln := 0
		if i%2 == 1 {
			ln = 1
		}
		pdf.CellFormat(half*0.6, 5, tr(kv[1]), "", ln, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Addresses ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(half, 6, "BILL TO", "B", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, "SHIP TO", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	bill, ship := addressLines(view.BillTo), addressLines(view.ShipTo)
	for i := 0; i < len(bill) || i < len(ship); i++ {
		pdf.CellFormat(half, 4.5, tr(lineAt(bill, i)), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 4.5, tr(lineAt(ship, i)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// ── Items ─────────────────────────────────────────────────────────────────
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"#", 0.05, "C"},
		{"Description", 0.27, "L"},
		{"Specification", 0.16, "L"},
		{"Package", 0.12, "L"},
		{"Form", 0.08, "L"},
		{"Qty", 0.08, "R"},
		{"Unit price", 0.12, "R"},
		{"Amount", 0.12, "R"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 235)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(contentW*c.w, 6, c.title, "1", ln, c.align, true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	for _, it := range view.Items {
		row := []string{
			fmt.Sprintf("%d", it.LineNo),
			truncate(it.Description, 40),
			truncate(it.Specification, 24),
			truncate(it.Package, 18),
			truncate(it.Form, 12),
			it.QuantityDisplay,
			it.UnitPriceDisplay,
			it.AmountDisplay,
		}
		for i, c := range cols {
			ln := 0
			if i == len(cols)-1 {
				ln = 1
			}
			pdf.CellFormat(contentW*c.w, 5.5, tr(row[i]), "1", ln, c.align, false, 0, "")
		}
	}
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	labelW := contentW * 0.88
	valueW := contentW * 0.12
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(labelW, 5, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 5, view.SubtotalDisplay, "", 1, "R", false, 0, "")
	if !view.InternalShippingFee.IsZero() {
		pdf.CellFormat(labelW, 5, "Internal shipping fee:", "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 5, view.ShippingFeeDisplay, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 7, "TOTAL ("+view.Currency+"):", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 7, view.TotalDisplay, "", 1, "R", false, 0, "")

	if view.PreviousBalanceNote != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, tr("Previous balance: "+view.PreviousBalanceNote), "", "L", false)
	}

	// ── Bank details ──────────────────────────────────────────────────────────
	if len(view.Company.BankInfo) > 0 {
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "Bank details", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, line := range view.Company.BankInfo {
			pdf.CellFormat(contentW, 4, tr(line), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render %s: %w", view.InvoiceNo, err)
	}
	return buf.Bytes(), nil
}

func addressLines(a dto.AddressView) []string {
	var lines []string
	for _, s := range []string{a.Name, a.Company, a.Address, strings.TrimSpace(a.City + " " + a.Country), a.Phone, a.Email} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
