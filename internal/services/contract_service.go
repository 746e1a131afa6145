// internal/services/contract_service.go
package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/beathaus/beathaus-backend/internal/models"
)

// ContractService renders license agreement PDFs from producer-defined
// templates and stores them alongside the Contract row created at
// fulfillment time.
type ContractService struct {
	storage *StorageService
}

// ContractData carries everything the PDF needs. Fulfillment assembles it
// inside the transaction so the document reflects exactly what was sold.
type ContractData struct {
	Template  *models.ContractTemplate
	Beat      *models.Beat
	Buyer     *models.User
	Producer  *models.User
	FileType  models.FileType
	Amount    float64
	Currency  string
	PaymentID uint
	IssuedAt  time.Time
}

func NewContractService(storage *StorageService) *ContractService {
	return &ContractService{storage: storage}
}

// Generate renders the agreement PDF and uploads it, returning the stored
// document URL. Any failure is returned to the caller so fulfillment can
// abort the whole transaction rather than grant access without papers.
func (s *ContractService) Generate(data *ContractData) (string, error) {
	pdfBytes, err := s.Render(data)
	if err != nil {
		return "", fmt.Errorf("failed to render contract: %w", err)
	}

	key := s.storage.ContractKey(data.PaymentID)
	result, err := s.storage.UploadBytes(pdfBytes, key, "application/pdf", false)
	if err != nil {
		return "", fmt.Errorf("failed to store contract: %w", err)
	}

	return result.URL, nil
}

// Render produces the PDF document bytes without touching storage.
func (s *ContractService) Render(data *ContractData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("License Agreement", false)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "BEAT LICENSE AGREEMENT", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Issued %s", data.IssuedAt.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Parties", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Licensor (Producer): %s (%s)\nLicensee (Buyer): %s (%s)",
		data.Producer.Name, data.Producer.Email,
		data.Buyer.Name, data.Buyer.Email,
	), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Work", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Title: %s\nLicense tier: %s (%s)\nPurchase price: %.2f %s\nPayment reference: #%d",
		data.Beat.Title,
		strings.ToUpper(string(data.FileType)),
		data.Template.ContractType,
		data.Amount, data.Currency,
		data.PaymentID,
	), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Terms", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	terms := data.Template.Terms
	if terms == "" {
		terms = defaultTerms(data.FileType)
	}
	pdf.MultiCell(0, 6, terms, "", "L", false)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5,
		"This agreement takes effect on the date of issue above and is delivered "+
			"electronically. Retain a copy for your records.",
		"", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func defaultTerms(fileType models.FileType) string {
	switch fileType {
	case models.FileTypeExclusive:
		return "The Licensee is granted exclusive, worldwide, perpetual rights to the Work. " +
			"The Licensor will not sell or license the Work to any other party after this sale."
	case models.FileTypeTrackout:
		return "The Licensee is granted a non-exclusive license to the Work including its " +
			"individual track stems, for unlimited commercial releases with producer credit."
	case models.FileTypeWAV:
		return "The Licensee is granted a non-exclusive license to the high-quality WAV master " +
			"of the Work for commercial releases with producer credit."
	default:
		return "The Licensee is granted a non-exclusive license to the MP3 master of the Work " +
			"for non-profit and limited commercial use with producer credit."
	}
}
