package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"gepay-web/internal/content"
	"gepay-web/internal/metrics"
	"gepay-web/internal/models"
)

type TransactionAPI interface {
	ListTransactions(ctx context.Context, userID int64) (*models.TransactionsResponse, error)
	CreateTransaction(ctx context.Context, req *models.CreateTransactionRequest, idempotencyKey string) (*models.CreateTransactionResponse, error)
}

// The forms carry the idempotency key they were rendered with, so a manual
// resubmission of the same form reaches the remote under the same key.
type TopUpForm struct {
	SteamLogin     string `form:"steam_login" json:"steam_login"`
	Amount         string `form:"amount" json:"amount"`
	IdempotencyKey string `form:"idempotency_key" json:"idempotency_key"`
}

type RegionChangeForm struct {
	SteamLogin     string `form:"steam_login" json:"steam_login"`
	Region         string `form:"region" json:"region"`
	IdempotencyKey string `form:"idempotency_key" json:"idempotency_key"`
}

type SubmitResult struct {
	Transaction    *models.Transaction
	IdempotencyKey string
	Notification   *models.Notification
	// ResetForm tells the shell to render the form empty again, with
	// NextIdempotencyKey as its new key.
	ResetForm          bool
	NextIdempotencyKey string
}

const maxIdempotencyKeyLength = 128

// FormKey returns the key a form was rendered with, or a fresh one when the
// form carries none or an unusable one.
func FormKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > maxIdempotencyKeyLength {
		return models.NewIdempotencyKey()
	}
	return key
}

// OrderService validates top-up and region change forms and submits them to
// the transactions function.
type OrderService struct {
	api      TransactionAPI
	progress *Progress
	notifier OperatorNotifier
}

func NewOrderService(api TransactionAPI, progress *Progress, notifier OperatorNotifier) *OrderService {
	return &OrderService{
		api:      api,
		progress: progress,
		notifier: notifier,
	}
}

func (s *OrderService) SubmitTopUp(ctx context.Context, user *models.User, form TopUpForm, sink Sink) (*SubmitResult, error) {
	kind := string(models.TransactionTypeTopUp)
	if user == nil {
		metrics.RecordSubmission(kind, "unauthenticated")
		return nil, ErrUnauthenticated
	}

	login := strings.TrimSpace(form.SteamLogin)
	if login == "" {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("steam_login", "Укажите email или логин Steam")
	}
	if strings.TrimSpace(form.Amount) == "" {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("amount", "Выберите или введите сумму пополнения")
	}

	amount, err := models.ParseAmount(form.Amount)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("amount", "Сумма должна быть числом")
	}
	if amount < content.MinTopUpAmount {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("amount", fmt.Sprintf("Минимальная сумма пополнения %d₽", content.MinTopUpAmount))
	}

	req := &models.CreateTransactionRequest{
		UserID:     user.ID,
		Type:       models.TransactionTypeTopUp,
		Amount:     &amount,
		SteamLogin: login,
	}
	success := models.NewNotification(models.NotificationSuccess, "Заявка принята",
		fmt.Sprintf("Пополнение на %s для %s принято в обработку", models.FormatRubles(amount), login))

	return s.submit(ctx, user, req, form.IdempotencyKey, success, sink)
}

func (s *OrderService) SubmitRegionChange(ctx context.Context, user *models.User, form RegionChangeForm, sink Sink) (*SubmitResult, error) {
	kind := string(models.TransactionTypeRegionChange)
	if user == nil {
		metrics.RecordSubmission(kind, "unauthenticated")
		return nil, ErrUnauthenticated
	}

	login := strings.TrimSpace(form.SteamLogin)
	if login == "" {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("steam_login", "Укажите email или логин Steam")
	}
	if strings.TrimSpace(form.Region) == "" {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("region", "Выберите регион")
	}

	region, ok := content.FindRegion(form.Region)
	if !ok {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("region", "Этот регион недоступен")
	}

	req := &models.CreateTransactionRequest{
		UserID:     user.ID,
		Type:       models.TransactionTypeRegionChange,
		SteamLogin: login,
		Region:     region.Name,
	}
	success := models.NewNotification(models.NotificationSuccess, "Заявка принята",
		fmt.Sprintf("Смена региона на %s для %s принята в обработку", region.Name, login))

	return s.submit(ctx, user, req, form.IdempotencyKey, success, sink)
}

func (s *OrderService) submit(ctx context.Context, user *models.User, req *models.CreateTransactionRequest, formKey string, success *models.Notification, sink Sink) (*SubmitResult, error) {
	kind := string(req.Type)
	key := FormKey(formKey)

	resp, err := s.api.CreateTransaction(ctx, req, key)
	if err != nil {
		metrics.RecordSubmission(kind, "failed")
		log.Error().Err(err).Int64("user_id", user.ID).Str("idempotency_key", key).Msg("Failed to create transaction")
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if !resp.Success {
		metrics.RecordSubmission(kind, "rejected")
		log.Warn().Str("error", resp.Error).Int64("user_id", user.ID).Msg("Transaction rejected by remote")
		return nil, fmt.Errorf("%w: remote rejected transaction: %s", ErrSubmissionFailed, resp.Error)
	}

	metrics.RecordSubmission(kind, "accepted")
	log.Info().
		Int64("user_id", user.ID).
		Str("type", kind).
		Str("idempotency_key", key).
		Msg("Transaction submitted")

	if s.notifier != nil && resp.Transaction != nil {
		if err := s.notifier.TransactionCreated(ctx, user, resp.Transaction); err != nil {
			log.Warn().Err(err).Msg("Failed to notify operators about transaction")
		}
	}

	if sink != nil && s.progress != nil {
		if err := s.progress.Play(ctx, sink.Progress); err != nil {
			log.Debug().Err(err).Int64("user_id", user.ID).Msg("Progress interrupted")
		}
	}

	return &SubmitResult{
		Transaction:        resp.Transaction,
		IdempotencyKey:     key,
		Notification:       success,
		ResetForm:          true,
		NextIdempotencyKey: models.NewIdempotencyKey(),
	}, nil
}
