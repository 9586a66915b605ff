package services

import (
	"context"
	"fmt"

	"gepay-web/internal/models"
)

type HistoryService struct {
	api TransactionLister
}

func NewHistoryService(api TransactionLister) *HistoryService {
	return &HistoryService{api: api}
}

// Transactions returns the user's history in the order the remote sends it.
// A response without the transactions field is an empty history.
func (s *HistoryService) Transactions(ctx context.Context, user *models.User) ([]models.Transaction, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	resp, err := s.api.ListTransactions(ctx, user.ID)
	if err != nil {
		return []models.Transaction{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	if resp.Transactions == nil {
		return []models.Transaction{}, nil
	}
	return resp.Transactions, nil
}
