package repository

import (
	"context"

	"github.com/noah-isme/circleed-client/internal/models"
)

// TransactionRepository wraps the /transactions endpoints.
type TransactionRepository struct {
	api *APIClient
}

// NewTransactionRepository constructs a transaction repository.
func NewTransactionRepository(api *APIClient) *TransactionRepository {
	return &TransactionRepository{api: api}
}

// List returns the current user's ledger entries.
func (r *TransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.api.Get(ctx, "/transactions", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Balance returns the backend-computed token balance.
func (r *TransactionRepository) Balance(ctx context.Context) (int, error) {
	var balance models.Balance
	if err := r.api.Get(ctx, "/transactions/balance", nil, &balance); err != nil {
		return 0, err
	}
	return balance.Balance, nil
}
