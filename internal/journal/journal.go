// Package journal keeps an append-only record of ingest and delete events.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event kinds.
const (
	KindIngest = "ingest"
	KindDelete = "delete"
)

// Event is one journal row.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Kind         string    `json:"kind"`
	Principal    string    `json:"principal"`
	Path         string    `json:"path,omitempty"`
	Hash         string    `json:"hash,omitempty"`
	OriginalName string    `json:"originalName,omitempty"`
	Dedup        bool      `json:"dedup"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Recorder persists and lists events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Nop discards events. It is used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

func (Nop) Recent(context.Context, int) ([]Event, error) { return []Event{}, nil }

// stamp fills in the generated fields of ev.
func stamp(ev Event, now time.Time) Event {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now.UTC()
	}
	return ev
}
