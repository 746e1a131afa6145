// internal/services/contract_service_test.go
package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/models"
)

func testContractData() *ContractData {
	return &ContractData{
		Template: &models.ContractTemplate{
			ContractType: "basic_lease",
			Terms:        "Non-exclusive mp3 lease, producer credit required.",
		},
		Beat:      &models.Beat{Title: "Nairobi Nights"},
		Buyer:     &models.User{Name: "Amani", Email: "amani@example.com"},
		Producer:  &models.User{Name: "Kaha", Email: "kaha@example.com"},
		FileType:  models.FileTypeMP3,
		Amount:    40,
		Currency:  "USD",
		PaymentID: 12,
		IssuedAt:  time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	svc := NewContractService(nil)

	pdfBytes, err := svc.Render(testContractData())
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"), "output should be a PDF document")
}

func TestRenderUsesDefaultTermsWhenTemplateIsBlank(t *testing.T) {
	svc := NewContractService(nil)

	data := testContractData()
	data.Template.Terms = ""
	data.FileType = models.FileTypeExclusive

	pdfBytes, err := svc.Render(data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))
}

func TestGenerateStoresDocument(t *testing.T) {
	// No AWS credentials: the storage service runs in local mode.
	storage, err := NewStorageService(&config.Config{})
	require.NoError(t, err)

	svc := NewContractService(storage)

	url, err := svc.Generate(testContractData())
	require.NoError(t, err)
	assert.Contains(t, url, "contracts/")
	assert.True(t, strings.HasSuffix(url, ".pdf"))
}
