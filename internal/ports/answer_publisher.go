package ports

import (
	"context"
	"ocean-query-service/internal/domain"
)

// Port: best-effort sink for resolved answers (audit trail).
type AnswerPublisher interface {
	Publish(ctx context.Context, requestID string, query domain.ParsedQuery, answers []domain.ResolvedAnswer) error
}
