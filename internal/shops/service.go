package shops

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
)

// Service defines shop install and lookup operations.
type Service interface {
	Install(ctx context.Context, params InstallParams) (*models.Shop, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	GetByDomain(ctx context.Context, domain string) (*models.Shop, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// InstallParams carries the values received from the OAuth callback.
type InstallParams struct {
	Domain      string
	AccessToken string
	AppURL      string
}

// NewService wires shop dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	return &service{repo: repo}, nil
}

// Install records a completed OAuth handshake. Reinstalls of a known
// domain rotate the stored access token instead of duplicating the row.
func (s *service) Install(ctx context.Context, params InstallParams) (*models.Shop, error) {
	domain := NormalizeDomain(params.Domain)
	if domain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain required")
	}
	if strings.TrimSpace(params.AccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access token required")
	}

	shop := &models.Shop{
		Domain:      domain,
		AccessToken: params.AccessToken,
		Active:      true,
	}
	if appURL := strings.TrimSpace(params.AppURL); appURL != "" {
		shop.AppURL = &appURL
	}

	if err := s.repo.Upsert(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert shop")
	}
	return shop, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find shop")
	}
	return shop, nil
}

func (s *service) GetByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	normalized := NormalizeDomain(domain)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain required")
	}
	shop, err := s.repo.FindByDomain(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find shop")
	}
	return shop, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	affected, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate shop")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return nil
}

// NormalizeDomain lowercases and trims a merchant domain.
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
