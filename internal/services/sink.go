package services

import "gepay-web/internal/models"

// Sink receives live updates about one submission.
type Sink interface {
	Progress(percent int)
	TransactionStatus(tx *models.Transaction)
}
