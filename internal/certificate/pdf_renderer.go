package certificate

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/learnhub/backend/internal/models"
)

const (
	pageWidth  = 297.0
	pageHeight = 210.0
	margin     = 10.0
)

// PDFRenderer renders completion certificates as single page A4 landscape PDFs
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDF certificate renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// ContentType returns the MIME type of rendered certificates
func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Extension returns the file extension of rendered certificates
func (r *PDFRenderer) Extension() string {
	return "pdf"
}

// Render draws the certificate and returns the PDF bytes
func (r *PDFRenderer) Render(data models.CertificateData) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(data.IssuedAt)
	pdf.SetTitle("Certificate of Completion", true)
	pdf.SetAuthor(data.PlatformName, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// core fonts are cp1252 encoded
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetDrawColor(31, 64, 115)
	pdf.SetLineWidth(2)
	pdf.Rect(margin, margin, pageWidth-2*margin, pageHeight-2*margin, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(margin+4, margin+4, pageWidth-2*margin-8, pageHeight-2*margin-8, "D")

	centered := func(y float64, style string, size float64, text string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.SetXY(margin, y)
		pdf.CellFormat(pageWidth-2*margin, size*0.5, tr(text), "", 0, "C", false, 0, "")
	}

	pdf.SetTextColor(31, 64, 115)
	centered(35, "B", 36, "Certificate of Completion")

	pdf.SetTextColor(60, 60, 60)
	centered(65, "", 16, "This is to certify that")

	pdf.SetTextColor(0, 0, 0)
	centered(80, "B", 28, data.RecipientName)

	pdf.SetTextColor(60, 60, 60)
	centered(100, "", 16, "has successfully completed the course")

	pdf.SetTextColor(31, 64, 115)
	centered(115, "B", 22, data.CourseTitle)

	pdf.SetTextColor(60, 60, 60)
	centered(135, "", 12, "Date: "+data.IssuedAt.Format("January 2, 2006"))

	signatureX := pageWidth/2 - 40
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.3)
	pdf.Line(signatureX, 165, signatureX+80, 165)
	centered(158, "I", 14, data.InstructorName)
	centered(169, "", 10, "Instructor Signature")

	pdf.SetTextColor(120, 120, 120)
	centered(pageHeight-margin-12, "", 9, fmt.Sprintf("Issued by %s", data.PlatformName))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	return buf.Bytes(), nil
}
