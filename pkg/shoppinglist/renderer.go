package shoppinglist

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Notemat/foodgram/domain"
	"github.com/go-pdf/fpdf"
)

const listTitle = "Shopping list"

type Renderer interface {
	Render(w io.Writer, items []domain.ShoppingListItem) error
	ContentType() string
	FileName() string
}

func FormatLine(item domain.ShoppingListItem) string {
	return fmt.Sprintf("%s (%s) — %d", item.Name, item.MeasurementUnit, item.Amount)
}

type TextRenderer struct{}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }
func (TextRenderer) FileName() string    { return "shopping_list.txt" }

func (TextRenderer) Render(w io.Writer, items []domain.ShoppingListItem) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		if _, err := fmt.Fprintln(bw, FormatLine(item)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// PDFRenderer lays the list out one line per ingredient on A4 pages.
// Without FontPath the core Helvetica font is used, which only covers cp1252.
type PDFRenderer struct {
	FontPath string
}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) FileName() string    { return "shopping_list.pdf" }

func (r PDFRenderer) Render(w io.Writer, items []domain.ShoppingListItem) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(listTitle, true)
	pdf.SetAutoPageBreak(true, 15)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if r.FontPath != "" {
		family = "ListFont"
		pdf.AddUTF8Font(family, "", r.FontPath)
		translate = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 16)
	pdf.CellFormat(0, 10, translate(listTitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 12)
	for _, item := range items {
		pdf.CellFormat(0, 8, translate(FormatLine(item)), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render shopping list pdf: %w", err)
	}
	return pdf.Output(w)
}
