package models

type NotificationKind string

const (
	NotificationSuccess    NotificationKind = "success"
	NotificationError      NotificationKind = "error"
	NotificationValidation NotificationKind = "validation"
	NotificationInfo       NotificationKind = "info"
)

// Notification is a toast shown by the shell after an action.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message,omitempty"`
}

func NewNotification(kind NotificationKind, title, message string) *Notification {
	return &Notification{Kind: kind, Title: title, Message: message}
}
