package synclog

import (
	"context"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SyncLog records the outcome of one pull-sync run.
type SyncLog struct {
	ID          uint
	Status      string
	Created     int
	Updated     int
	SoftDeleted int
	Total       int
	Message     *string
	ErrorDetail *string
	CreatedAt   time.Time
}

type Repository interface {
	Create(ctx context.Context, log *SyncLog) error
	Latest(ctx context.Context) (*SyncLog, error)
	// List returns entries newest first.
	List(ctx context.Context, limit, offset int) ([]*SyncLog, error)
}
