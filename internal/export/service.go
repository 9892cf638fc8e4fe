package export

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
)

var csvHeader = []string{"record_type", "id", "created_at", "summary", "status", "value"}

// Service streams a shop's data as CSV.
type Service interface {
	WriteCSV(ctx context.Context, shopID uuid.UUID, w io.Writer) (Counts, error)
}

// Counts reports how many rows of each kind were exported.
type Counts struct {
	Sessions      int `json:"sessions"`
	Notifications int `json:"notifications"`
	Suggestions   int `json:"suggestions"`
}

type service struct {
	repo Repository
}

// NewService wires export dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "export repository required")
	}
	return &service{repo: repo}, nil
}

// WriteCSV writes one flat CSV holding the shop's sessions,
// notifications and competitor suggestions. Soft-deleted notifications
// are excluded at the query level.
func (s *service) WriteCSV(ctx context.Context, shopID uuid.UUID, w io.Writer) (Counts, error) {
	if shopID == uuid.Nil {
		return Counts{}, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}

	sessions, err := s.repo.Sessions(ctx, shopID)
	if err != nil {
		return Counts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sessions")
	}
	notifications, err := s.repo.Notifications(ctx, shopID)
	if err != nil {
		return Counts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notifications")
	}
	suggestions, err := s.repo.Suggestions(ctx, shopID)
	if err != nil {
		return Counts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load suggestions")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return Counts{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	counts := Counts{}
	for _, row := range sessions {
		status := "inactive"
		if row.IsActive {
			status = "active"
		}
		record := []string{
			"session",
			row.ID.String(),
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.UserAgent,
			status,
			row.LastAccessedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return counts, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write session row")
		}
		counts.Sessions++
	}

	for _, row := range notifications {
		status := "unread"
		if row.ReadAt != nil {
			status = "read"
		}
		record := []string{
			"notification",
			row.ID.String(),
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.Title,
			status,
			string(row.Type),
		}
		if err := writer.Write(record); err != nil {
			return counts, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write notification row")
		}
		counts.Notifications++
	}

	for _, row := range suggestions {
		record := []string{
			"competitor_suggestion",
			row.ID.String(),
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.SuggestedURL,
			string(row.Status),
			row.Price.StringFixed(2) + " " + row.Currency,
		}
		if err := writer.Write(record); err != nil {
			return counts, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write suggestion row")
		}
		counts.Suggestions++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return counts, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return counts, nil
}
