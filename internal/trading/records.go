package trading

import (
	"context"

	"github.com/nerrad567/ths-gateway/internal/audit"
)

type requestIDKey struct{}

// WithRequestID attaches the HTTP request ID so audit entries can be
// traced back to access logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// enqueue queues an order or cancel record (best-effort).
func (s *Service) enqueue(entry *audit.Entry) {
	if s.audit == nil && s.events == nil {
		return
	}

	select {
	case s.records <- entry:
	default:
		s.logger.Warn("trade record channel full, dropping entry",
			"action", entry.Action,
			"request_id", entry.RequestID,
		)
	}
}

// Run delivers queued records until ctx is cancelled, then drains what is
// left. Records are written serially, which suits SQLite's single writer.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case entry := <-s.records:
			s.deliver(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-s.records:
					s.deliver(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) deliver(entry *audit.Entry) {
	if s.audit != nil {
		if err := s.audit.Create(context.Background(), entry); err != nil {
			s.logger.Error("audit write failed",
				"action", entry.Action,
				"request_id", entry.RequestID,
				"error", err,
			)
		}
	}

	if s.events != nil {
		topic := s.topics.Orders(entry.Account)
		if entry.Action == audit.ActionCancel {
			topic = s.topics.Cancels(entry.Account)
		}
		if err := s.events.PublishEvent(topic, entry); err != nil {
			s.logger.Warn("order event publish failed",
				"topic", topic,
				"error", err,
			)
		}
	}
}
