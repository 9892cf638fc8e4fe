package shops

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
)

type fakeRepo struct {
	byDomain map[string]*models.Shop
	byID     map[uuid.UUID]*models.Shop
	upserts  int
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byDomain: map[string]*models.Shop{},
		byID:     map[uuid.UUID]*models.Shop{},
	}
}

func (f *fakeRepo) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Shop, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if shop, ok := f.byID[id]; ok {
		return shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByDomain(_ context.Context, domain string) (*models.Shop, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if shop, ok := f.byDomain[domain]; ok {
		return shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Upsert(_ context.Context, shop *models.Shop) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.upserts++
	if existing, ok := f.byDomain[shop.Domain]; ok {
		existing.AccessToken = shop.AccessToken
		existing.AppURL = shop.AppURL
		existing.Active = true
		*shop = *existing
		return nil
	}
	shop.ID = uuid.New()
	f.byDomain[shop.Domain] = shop
	f.byID[shop.ID] = shop
	return nil
}

func (f *fakeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	shop, ok := f.byID[id]
	if !ok {
		return 0, nil
	}
	shop.Active = active
	return 1, nil
}

func TestInstallCreatesShop(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	shop, err := svc.Install(context.Background(), InstallParams{
		Domain:      " Acme.MyShopify.com ",
		AccessToken: "shpat_abc",
		AppURL:      "https://app.shoplens.io",
	})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if shop.Domain != "acme.myshopify.com" {
		t.Fatalf("expected normalized domain, got %q", shop.Domain)
	}
	if shop.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}
	if shop.AppURL == nil || *shop.AppURL != "https://app.shoplens.io" {
		t.Fatalf("app url not stored: %v", shop.AppURL)
	}
}

func TestInstallReinstallRotatesToken(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := NewService(repo)

	first, err := svc.Install(context.Background(), InstallParams{Domain: "acme.myshopify.com", AccessToken: "shpat_old"})
	if err != nil {
		t.Fatalf("first install: %v", err)
	}

	second, err := svc.Install(context.Background(), InstallParams{Domain: "acme.myshopify.com", AccessToken: "shpat_new"})
	if err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("reinstall created a second row: %s vs %s", second.ID, first.ID)
	}
	if second.AccessToken != "shpat_new" {
		t.Fatalf("token not rotated, got %q", second.AccessToken)
	}
}

func TestInstallValidation(t *testing.T) {
	svc, _ := NewService(newFakeRepo())

	if _, err := svc.Install(context.Background(), InstallParams{AccessToken: "x"}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing domain, got %v", err)
	}
	if _, err := svc.Install(context.Background(), InstallParams{Domain: "acme.myshopify.com"}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing token, got %v", err)
	}
}

func TestGetByDomainNotFound(t *testing.T) {
	svc, _ := NewService(newFakeRepo())

	_, err := svc.GetByDomain(context.Background(), "missing.myshopify.com")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByIDDependencyError(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("connection reset")
	svc, _ := NewService(repo)

	_, err := svc.GetByID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := NewService(repo)

	shop, err := svc.Install(context.Background(), InstallParams{Domain: "acme.myshopify.com", AccessToken: "shpat_abc"})
	if err != nil {
		t.Fatalf("install: %v", err)
	}

	if err := svc.Deactivate(context.Background(), shop.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.byID[shop.ID].Active {
		t.Fatal("shop still active")
	}

	err = svc.Deactivate(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown shop, got %v", err)
	}
}
