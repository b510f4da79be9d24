package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
	"github.com/noah-isme/circleed-client/pkg/export"
)

type meLoader interface {
	Me(ctx context.Context) (*models.User, error)
}

type transactionLister interface {
	List(ctx context.Context) ([]models.Transaction, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type statementStorage interface {
	Save(filename string, data []byte, perm os.FileMode) (string, error)
}

// WalletService shows the token balance and ledger.
type WalletService struct {
	users        meLoader
	transactions transactionLister
	store        *state.Store
	storage      statementStorage
	csv          csvRenderer
	pdf          pdfRenderer
	logger       *zap.Logger
	now          func() time.Time
}

// NewWalletService wires a WalletService. storage may be nil when statements
// are never written to disk.
func NewWalletService(users meLoader, transactions transactionLister, store *state.Store, storage statementStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *WalletService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = &export.PDFExporter{Widths: []float64{40, 80, 30, 40}}
	}
	return &WalletService{
		users:        users,
		transactions: transactions,
		store:        store,
		storage:      storage,
		csv:          csv,
		pdf:          pdf,
		logger:       logger,
		now:          time.Now,
	}
}

// Load fetches the user and the ledger concurrently.
func (s *WalletService) Load(ctx context.Context) (*dto.WalletSummary, error) {
	seq := s.store.Begin(state.KeyWallet)

	var (
		user *models.User
		txs  []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactions.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Summarize(user.TokenBalance, txs)
	if !s.store.Commit(state.KeyWallet, seq, summary) {
		if latest, err := state.Get[*dto.WalletSummary](s.store, state.KeyWallet); err == nil {
			return latest, nil
		}
	}
	return summary, nil
}

// Summarize totals a ledger. Earned is the sum of earn amounts; spent is the
// absolute sum of spend amounts. The balance always comes from the backend.
func Summarize(balance int, txs []models.Transaction) *dto.WalletSummary {
	summary := &dto.WalletSummary{Balance: balance, Transactions: txs}
	if summary.Transactions == nil {
		summary.Transactions = []models.Transaction{}
	}
	spent := 0
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionEarn:
			summary.TotalEarned += tx.Amount
		case models.TransactionSpend:
			spent += tx.Amount
		}
	}
	if spent < 0 {
		spent = -spent
	}
	summary.TotalSpent = spent
	return summary
}

// Current returns the stored wallet, loading it when absent.
func (s *WalletService) Current(ctx context.Context) (*dto.WalletSummary, error) {
	summary, err := state.Get[*dto.WalletSummary](s.store, state.KeyWallet)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, appErrors.ErrStoreMiss) {
		return nil, err
	}
	return s.Load(ctx)
}

// Export renders the wallet statement.
func (s *WalletService) Export(ctx context.Context, format dto.ExportFormat) (*dto.Statement, error) {
	summary, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	dataset := statementDataset(summary)
	generatedAt := s.now()

	var payload []byte
	switch format {
	case dto.ExportCSV:
		payload, err = s.csv.Render(dataset)
	case dto.ExportPDF:
		payload, err = s.pdf.Render(dataset, "CircleEd Wallet Statement "+generatedAt.Format("2006-01-02"))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, err
	}

	return &dto.Statement{
		Format:   format,
		Filename: fmt.Sprintf("wallet-statement-%s.%s", generatedAt.Format("20060102-150405"), format),
		Data:     payload,
	}, nil
}

// SaveStatement writes a statement to the export directory.
func (s *WalletService) SaveStatement(statement *dto.Statement) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("statement storage not configured")
	}
	path, err := s.storage.Save(statement.Filename, statement.Data, 0o644)
	if err != nil {
		return "", err
	}
	s.logger.Info("wallet statement saved", zap.String("path", path), zap.String("format", string(statement.Format)))
	return path, nil
}

func statementDataset(summary *dto.WalletSummary) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Date", "Description", "Type", "Amount"},
		Rows:    make([]map[string]string, 0, len(summary.Transactions)),
		Summary: []string{
			fmt.Sprintf("Balance: %d tokens", summary.Balance),
			fmt.Sprintf("Total earned: %d tokens", summary.TotalEarned),
			fmt.Sprintf("Total spent: %d tokens", summary.TotalSpent),
		},
	}
	for _, tx := range summary.Transactions {
		date := ""
		if !tx.CreatedAt.IsZero() {
			date = tx.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":        date,
			"Description": tx.Description,
			"Type":        string(tx.Type),
			"Amount":      strconv.Itoa(tx.Amount),
		})
	}
	return dataset
}
