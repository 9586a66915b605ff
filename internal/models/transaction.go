package models

type TransactionType string

const (
	TransactionTypeTopUp        TransactionType = "topup"
	TransactionTypeRegionChange TransactionType = "region_change"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

var statusLabels = map[TransactionStatus]string{
	TransactionStatusPending:   "В обработке",
	TransactionStatusCompleted: "Завершено",
	TransactionStatusFailed:    "Ошибка",
}

// Label returns the display label. Unknown statuses are shown as pending.
func (s TransactionStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[TransactionStatusPending]
}

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction is a snapshot of a remote transaction. Status transitions happen
// server-side only.
type Transaction struct {
	ID          int64             `json:"id"`
	Type        TransactionType   `json:"type"`
	Amount      *float64          `json:"amount,omitempty"`
	SteamLogin  string            `json:"steam_login,omitempty"`
	Region      string            `json:"region,omitempty"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	CreatedAt   Timestamp         `json:"created_at"`
}

func (t *Transaction) IsTopUp() bool {
	return t.Type == TransactionTypeTopUp
}

func (t *Transaction) FormattedAmount() string {
	if t.Amount == nil {
		return ""
	}
	return FormatRubles(*t.Amount)
}

// CreateTransactionRequest is the body posted to the transactions function.
type CreateTransactionRequest struct {
	UserID     int64           `json:"user_id"`
	Type       TransactionType `json:"type"`
	Amount     *float64        `json:"amount,omitempty"`
	SteamLogin string          `json:"steam_login,omitempty"`
	Region     string          `json:"region,omitempty"`
}

type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions,omitempty"`
}

type CreateTransactionResponse struct {
	Success     bool         `json:"success"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Error       string       `json:"error,omitempty"`
}
