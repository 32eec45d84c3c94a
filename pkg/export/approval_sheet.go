package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SheetRow is one sign-off line of an approval sheet.
type SheetRow struct {
	Stage    string
	SignedBy string
	SignedAt string
}

// ApprovalSheet holds everything printed on a document's sign-off page.
type ApprovalSheet struct {
	Title    string
	Label    string
	Status   string
	Valid    bool
	Comment  string
	Fields   [][2]string
	Sign     []SheetRow
	Footnote string
}

// PDFExporter renders approval sheets into PDF bytes.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a single-page sheet with a header block, the document fields
// and a sign-off table.
func (e *PDFExporter) Render(sheet ApprovalSheet) ([]byte, error) {
	if len(sheet.Sign) == 0 {
		return nil, fmt.Errorf("approval sheet requires at least one stage")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(sheet.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "", 10)
	header := [][2]string{
		{"Document", sheet.Label},
		{"Approval", sheet.Status},
		{"Valid", fmt.Sprintf("%t", sheet.Valid)},
	}
	if sheet.Comment != "" {
		header = append(header, [2]string{"Comment", sheet.Comment})
	}
	for _, kv := range append(header, sheet.Fields...) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 7, kv[0], "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, kv[1], "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	headers := []string{"Stage", "Signed by", "Signed at"}
	colWidth := 190.0 / float64(len(headers))
	pdf.SetFont("Arial", "B", 10)
	for _, h := range headers {
		pdf.CellFormat(colWidth, 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range sheet.Sign {
		for _, value := range []string{row.Stage, row.SignedBy, row.SignedAt} {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if sheet.Footnote != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 5, sheet.Footnote, "", "", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
