package buildlog

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
)

// ErrNoStore is returned by Open when no build log database is configured.
var ErrNoStore = errors.New("no build log store configured")

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Entry records the outcome of one build.
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Service     string    `json:"service" yaml:"service"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	TriggeredBy string    `json:"triggeredBy" yaml:"triggeredBy"`
	Posts       int       `json:"posts" yaml:"posts"`
	Pages       int       `json:"pages" yaml:"pages"`
	Status      string    `json:"status" yaml:"status"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewEntry starts an entry for service stamped with the current time.
func NewEntry(service string) Entry {
	triggeredBy := "local"
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		triggeredBy = "github-actions"
	}
	return Entry{
		ID:          uuid.NewString(),
		Service:     service,
		Timestamp:   time.Now().UTC(),
		TriggeredBy: triggeredBy,
	}
}

// Store persists build log entries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	// Recent returns the newest entries of service, newest first.
	Recent(ctx context.Context, service string, limit int) ([]Entry, error)
	// Prune keeps only the newest keep entries of service.
	Prune(ctx context.Context, service string, keep int) error
	Close() error
}

// Open returns the Postgres store when databaseURL is set, otherwise the
// SQLite store when sqlitePath is set, otherwise ErrNoStore.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	switch {
	case databaseURL != "":
		return NewPostgresStore(ctx, databaseURL)
	case sqlitePath != "":
		return NewSQLiteStore(ctx, sqlitePath)
	}
	return nil, ErrNoStore
}
