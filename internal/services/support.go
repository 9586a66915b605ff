package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"gepay-web/internal/metrics"
	"gepay-web/internal/models"
)

const maxSupportMessageLength = 2000

type SupportAPI interface {
	ListSupportMessages(ctx context.Context, userID int64) (*models.SupportMessagesResponse, error)
	SendSupportMessage(ctx context.Context, userID int64, text string) (*models.SendSupportMessageResponse, error)
}

type SupportService struct {
	api      SupportAPI
	notifier OperatorNotifier
}

func NewSupportService(api SupportAPI, notifier OperatorNotifier) *SupportService {
	return &SupportService{api: api, notifier: notifier}
}

// Messages returns the conversation oldest first.
func (s *SupportService) Messages(ctx context.Context, user *models.User) ([]models.SupportMessage, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	resp, err := s.api.ListSupportMessages(ctx, user.ID)
	if err != nil {
		return []models.SupportMessage{}, fmt.Errorf("failed to load support messages: %w", err)
	}
	if resp.Messages == nil {
		return []models.SupportMessage{}, nil
	}

	models.SortMessages(resp.Messages)
	return resp.Messages, nil
}

// Send posts the message and then reloads the whole conversation.
func (s *SupportService) Send(ctx context.Context, user *models.User, text string) ([]models.SupportMessage, error) {
	kind := "support"
	if user == nil {
		metrics.RecordSubmission(kind, "unauthenticated")
		return nil, ErrUnauthenticated
	}

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("message", "Введите сообщение")
	}
	if utf8.RuneCountInString(text) > maxSupportMessageLength {
		metrics.RecordSubmission(kind, "invalid")
		return nil, newValidationError("message", fmt.Sprintf("Сообщение длиннее %d символов", maxSupportMessageLength))
	}

	resp, err := s.api.SendSupportMessage(ctx, user.ID, text)
	if err != nil {
		metrics.RecordSubmission(kind, "failed")
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if !resp.Success {
		metrics.RecordSubmission(kind, "rejected")
		return nil, fmt.Errorf("%w: remote rejected message: %s", ErrSubmissionFailed, resp.Error)
	}
	metrics.RecordSubmission(kind, "accepted")

	if s.notifier != nil {
		if err := s.notifier.SupportMessage(ctx, user, text); err != nil {
			log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to notify operators about support message")
		}
	}

	return s.Messages(ctx, user)
}
