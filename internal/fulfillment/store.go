package fulfillment

import "context"

// Store keeps sessions between scans. Get returns (nil, nil) for an unknown
// request.
type Store interface {
	Get(ctx context.Context, requestID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, requestID string) error
	// Lock serialises mutations of one request's session.
	Lock(ctx context.Context, requestID string) (unlock func(), err error)
}
