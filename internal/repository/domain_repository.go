package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giron-dev/giron-api/internal/models"
)

// DomainRepository provides database access for discussion domains.
type DomainRepository struct {
	db *sqlx.DB
}

// NewDomainRepository creates a new instance of DomainRepository.
func NewDomainRepository(db *sqlx.DB) *DomainRepository {
	return &DomainRepository{db: db}
}

// Create inserts a new domain. Names are stored lowercased.
func (r *DomainRepository) Create(ctx context.Context, domain *models.Domain) error {
	if domain.ID == "" {
		domain.ID = uuid.NewString()
	}
	domain.Name = strings.ToLower(domain.Name)
	if domain.CreatedAt.IsZero() {
		domain.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO domains (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, domain); err != nil {
		return fmt.Errorf("create domain: %w", err)
	}
	return nil
}

// List returns all domains ordered by name.
func (r *DomainRepository) List(ctx context.Context) ([]models.Domain, error) {
	const query = `SELECT id, name, created_at FROM domains ORDER BY name ASC`
	var domains []models.Domain
	if err := r.db.SelectContext(ctx, &domains, query); err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return domains, nil
}

// FindByName returns a domain by its lowercased name.
func (r *DomainRepository) FindByName(ctx context.Context, name string) (*models.Domain, error) {
	const query = `SELECT id, name, created_at FROM domains WHERE name = $1 LIMIT 1`
	var domain models.Domain
	if err := r.db.GetContext(ctx, &domain, query, strings.ToLower(name)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find domain by name: %w", err)
	}
	return &domain, nil
}

// Exists reports whether a domain with the given name exists.
func (r *DomainRepository) Exists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM domains WHERE name = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, strings.ToLower(name)); err != nil {
		return false, fmt.Errorf("domain exists: %w", err)
	}
	return exists, nil
}
