package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
)

type mockDomainRepo struct {
	domains map[string]*models.Domain
}

func (m *mockDomainRepo) Create(ctx context.Context, domain *models.Domain) error {
	if m.domains == nil {
		m.domains = make(map[string]*models.Domain)
	}
	domain.ID = "generated-id"
	m.domains[domain.Name] = domain
	return nil
}

func (m *mockDomainRepo) List(ctx context.Context) ([]models.Domain, error) {
	out := make([]models.Domain, 0, len(m.domains))
	for _, d := range m.domains {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDomainRepo) FindByName(ctx context.Context, name string) (*models.Domain, error) {
	d, ok := m.domains[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return d, nil
}

func (m *mockDomainRepo) Exists(ctx context.Context, name string) (bool, error) {
	_, ok := m.domains[name]
	return ok, nil
}

func TestDomainCreateNormalizesName(t *testing.T) {
	repo := &mockDomainRepo{}
	svc := NewDomainService(repo, validator.New(), zap.NewNop())

	domain, err := svc.Create(context.Background(), models.DomainCreateRequest{Name: "GoLang"})
	require.NoError(t, err)
	assert.Equal(t, "golang", domain.Name)

	_, err = svc.Create(context.Background(), models.DomainCreateRequest{Name: "golang"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestDomainCreateRejectsInvalidName(t *testing.T) {
	svc := NewDomainService(&mockDomainRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), models.DomainCreateRequest{Name: "no spaces"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestDomainGetByName(t *testing.T) {
	repo := &mockDomainRepo{}
	svc := NewDomainService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), models.DomainCreateRequest{Name: "music"})
	require.NoError(t, err)

	domain, err := svc.GetByName(context.Background(), "music")
	require.NoError(t, err)
	assert.Equal(t, "music", domain.Name)

	_, err = svc.GetByName(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
