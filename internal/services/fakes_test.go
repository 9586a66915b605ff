package services_test

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gepay-web/internal/models"
)

var errRemoteDown = errors.New("remote down")

// fakeAPI stands in for the remote functions and records what it was asked.
type fakeAPI struct {
	mu sync.Mutex

	authResp *models.AuthResponse
	authErr  error
	authSeen []*models.TelegramAuthData

	createResp *models.CreateTransactionResponse
	createErr  error
	created    []*models.CreateTransactionRequest
	keys       []string

	listResps []*models.TransactionsResponse
	listErr   error
	listCalls int

	messages    []models.SupportMessage
	sendResp    *models.SendSupportMessageResponse
	sendErr     error
	sent        []string
	supportList int
}

func (f *fakeAPI) Authenticate(ctx context.Context, assertion *models.TelegramAuthData) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authSeen = append(f.authSeen, assertion)
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authResp, nil
}

func (f *fakeAPI) CreateTransaction(ctx context.Context, req *models.CreateTransactionRequest, key string) (*models.CreateTransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	f.keys = append(f.keys, key)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResp, nil
}

func (f *fakeAPI) ListTransactions(ctx context.Context, userID int64) (*models.TransactionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.listResps) == 0 {
		return &models.TransactionsResponse{}, nil
	}
	resp := f.listResps[0]
	if len(f.listResps) > 1 {
		f.listResps = f.listResps[1:]
	}
	return resp, nil
}

func (f *fakeAPI) ListSupportMessages(ctx context.Context, userID int64) (*models.SupportMessagesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supportList++
	if f.messages == nil {
		return &models.SupportMessagesResponse{}, nil
	}
	out := make([]models.SupportMessage, len(f.messages))
	copy(out, f.messages)
	return &models.SupportMessagesResponse{Messages: out}, nil
}

func (f *fakeAPI) SendSupportMessage(ctx context.Context, userID int64, text string) (*models.SendSupportMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendResp, nil
}

type recordingSink struct {
	mu       sync.Mutex
	progress []int
	statuses []models.TransactionStatus
}

func (s *recordingSink) Progress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, percent)
}

func (s *recordingSink) TransactionStatus(tx *models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, tx.Status)
}

type fakeNotifier struct {
	support      []string
	transactions []int64
	err          error
}

func (n *fakeNotifier) SupportMessage(ctx context.Context, user *models.User, text string) error {
	n.support = append(n.support, text)
	return n.err
}

func (n *fakeNotifier) TransactionCreated(ctx context.Context, user *models.User, tx *models.Transaction) error {
	n.transactions = append(n.transactions, tx.ID)
	return n.err
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, s.err
}
