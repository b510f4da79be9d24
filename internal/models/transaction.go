package models

// TransactionType distinguishes token credits from debits.
type TransactionType string

const (
	TransactionEarn  TransactionType = "earn"
	TransactionSpend TransactionType = "spend"
)

// Transaction is a ledger entry in the user's token wallet.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	CreatedAt   Timestamp       `json:"created_at"`
}

// Balance is the payload of GET /transactions/balance.
type Balance struct {
	Balance int `json:"balance"`
}
