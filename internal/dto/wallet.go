package dto

import "github.com/noah-isme/circleed-client/internal/models"

// WalletSummary is the wallet view model.
type WalletSummary struct {
	Balance      int                  `json:"balance"`
	TotalEarned  int                  `json:"total_earned"`
	TotalSpent   int                  `json:"total_spent"`
	Transactions []models.Transaction `json:"transactions"`
}

// ExportFormat selects the wallet statement encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// Statement is a rendered wallet export.
type Statement struct {
	Format   ExportFormat `json:"format"`
	Filename string       `json:"filename"`
	Data     []byte       `json:"-"`
}
