package activitylog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
)

// clientMethod marks rows ingested from the frontend rather than captured by
// the middleware.
const clientMethod = "CLIENT"

// ClientEventRequest is a frontend-reported event.
type ClientEventRequest struct {
	Event   string          `json:"event" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EntryDTO is the transport shape for an audit row.
type EntryDTO struct {
	ID         uint64          `json:"id"`
	UserID     *uint64         `json:"user_id,omitempty"`
	Method     string          `json:"method"`
	Path       string          `json:"path"`
	Status     int             `json:"status"`
	IP         string          `json:"ip,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ListResult pairs a page of audit rows with the total match count.
type ListResult struct {
	Entries []EntryDTO `json:"entries"`
	Total   int64      `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
}

// Service ingests client events and serves the admin audit listing.
type Service interface {
	IngestClientEvent(ctx context.Context, actorID uint64, req ClientEventRequest, ip, userAgent string) error
	AdminList(ctx context.Context, filters ListFilters) (*ListResult, error)
}

type recorder interface {
	Record(rec Record)
}

type service struct {
	repo     *Repository
	recorder recorder
}

// NewService constructs the activity log service.
func NewService(repo *Repository, rec recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity log repository is required")
	}
	if rec == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	return &service{repo: repo, recorder: rec}, nil
}

func (s *service) IngestClientEvent(ctx context.Context, actorID uint64, req ClientEventRequest, ip, userAgent string) error {
	event := strings.TrimSpace(req.Event)
	if event == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event is required")
	}

	s.recorder.Record(Record{
		UserID:    &actorID,
		Method:    clientMethod,
		Path:      event,
		IP:        ip,
		UserAgent: userAgent,
		Payload:   req.Payload,
	})
	return nil
}

func (s *service) AdminList(ctx context.Context, filters ListFilters) (*ListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 25
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list activity logs")
	}

	entries := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		entries = append(entries, fromModel(&rows[i]))
	}
	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func fromModel(row *models.ActivityLog) EntryDTO {
	return EntryDTO{
		ID:         row.ID,
		UserID:     row.UserID,
		Method:     row.Method,
		Path:       row.Path,
		Status:     row.Status,
		IP:         row.IP,
		UserAgent:  row.UserAgent,
		Payload:    row.Payload,
		DurationMS: row.DurationMS,
		CreatedAt:  row.CreatedAt,
	}
}
