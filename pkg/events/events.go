// Package events publishes storage lifecycle notifications so other services
// (resume parsers, thumbnail builders, search indexers) can react to changes
// without polling the bucket.
package events

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Event types. They double as AMQP routing keys.
const (
	TypeFileUploaded  = "file.uploaded"
	TypeFileDeleted   = "file.deleted"
	TypeFolderDeleted = "folder.deleted"
)

// Event is one storage change.
type Event struct {
	OccurredAt  time.Time `json:"occurred_at"`
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Bucket      string    `json:"bucket"`
	TenantID    string    `json:"tenant_id,omitempty"`
	Category    string    `json:"category,omitempty"`
	Key         string    `json:"key,omitempty"`
	Prefix      string    `json:"prefix,omitempty"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	Deleted     int       `json:"deleted,omitempty"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Memory keeps published events in memory. Useful in tests and the memory
// storage driver.
type Memory struct {
	events []Event
	mu     sync.Mutex
}

// NewMemory creates an empty Memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish implements Publisher.
func (m *Memory) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

var (
	_ Publisher = Nop{}
	_ Publisher = (*Memory)(nil)
)
