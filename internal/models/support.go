package models

import "sort"

type SupportMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Message   string    `json:"message"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt Timestamp `json:"created_at"`
}

type SupportMessagesResponse struct {
	Messages []SupportMessage `json:"messages,omitempty"`
}

type SendSupportMessageRequest struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

type SendSupportMessageResponse struct {
	Success   bool            `json:"success"`
	Message   *SupportMessage `json:"message,omitempty"`
	AutoReply *SupportMessage `json:"auto_reply,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// SortMessages orders messages by creation time, oldest first. Messages with
// equal timestamps keep their relative order.
func SortMessages(messages []SupportMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt.Time)
	})
}
