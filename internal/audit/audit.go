package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"scanid.app/internal/ids"
	"scanid.app/internal/obs"
	"scanid.app/internal/pagination"
	"scanid.app/internal/stream"
)

var (
	ErrInvalidInput = errors.New("audit: invalid input")
	ErrNotFound     = errors.New("audit: not found")
)

// Entry is one append-only audit record. Entries are immutable once written.
type Entry struct {
	ID              string            `json:"id"`
	SystemEditionID string            `json:"system_edition_id,omitempty"`
	CompanyID       string            `json:"company_id,omitempty"`
	UserID          string            `json:"user_id"`
	Action          string            `json:"action"`
	Module          string            `json:"module"`
	Description     string            `json:"description,omitempty"`
	IPAddress       string            `json:"ip_address,omitempty"`
	UserAgent       string            `json:"user_agent,omitempty"`
	RequestID       string            `json:"request_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

// ListQuery scopes and paginates audit reads.
type ListQuery struct {
	SystemEditionID string
	CompanyID       string
	Module          string
	pagination.Filter
}

// Store appends and reads immutable entries. There is deliberately no
// update or delete operation.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, q ListQuery) ([]Entry, int, error)
}

// Recorder persists audit entries, mirrors them to the structured log and
// publishes them to the live dashboard stream.
type Recorder struct {
	store  Store
	stream *stream.Stream
}

// NewRecorder constructs a Recorder. The stream may be nil when no live
// feed is wanted.
func NewRecorder(store Store, st *stream.Stream) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	return &Recorder{store: store, stream: st}, nil
}

// Record writes one entry. Failures are returned but callers typically log
// and continue: an audit miss must not fail the mutation it describes.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	e.Action = strings.TrimSpace(e.Action)
	e.Module = strings.TrimSpace(e.Module)
	e.UserID = strings.TrimSpace(e.UserID)
	if e.Action == "" || e.Module == "" {
		return fmt.Errorf("%w: action and module are required", ErrInvalidInput)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if e.ID == "" {
		e.ID = ids.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = requestIDFromContext(ctx)
	}

	if err := r.store.Append(ctx, &e); err != nil {
		return err
	}
	logEntry(e)
	if r.stream != nil {
		r.stream.Publish(stream.Event{
			ID:              e.ID,
			Action:          e.Action,
			Module:          e.Module,
			UserID:          e.UserID,
			SystemEditionID: e.SystemEditionID,
			CompanyID:       e.CompanyID,
			OccurredAt:      e.OccurredAt,
		})
	}
	return nil
}

// List reads entries for the audit log endpoints.
func (r *Recorder) List(ctx context.Context, q ListQuery) ([]Entry, int, error) {
	q.Filter = q.Filter.Normalized()
	return r.store.List(ctx, q)
}

func logEntry(e Entry) {
	line := map[string]any{
		"ts":     e.OccurredAt.Format(time.RFC3339Nano),
		"type":   "audit",
		"event":  e.Action,
		"module": e.Module,
	}
	if e.RequestID != "" {
		line["request_id"] = e.RequestID
	}
	if e.UserID != "" {
		line["user_id"] = e.UserID
	}
	if e.SystemEditionID != "" {
		line["system_edition_id"] = e.SystemEditionID
	}
	if e.CompanyID != "" {
		line["company_id"] = e.CompanyID
	}
	if len(e.Metadata) > 0 {
		line["fields"] = e.Metadata
	}
	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	obs.Logger().Println(string(data))
}

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit
// correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
