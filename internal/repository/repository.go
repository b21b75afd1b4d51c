// Package repository provides the remote backend the client store talks to:
// collaborator interfaces plus a gorm implementation of each.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"discovrr/internal/models"
)

// ErrNoCurrentUser is returned by AuthProvider.SignOut when no session is active.
var ErrNoCurrentUser = errors.New("no current user")

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = p.normalize()
	return db.Limit(p.Limit).Offset(p.Offset)
}

// mapError converts driver and gorm errors into AppErrors.
func mapError(err error, resource string, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError(fmt.Sprintf("%s already exists", resource))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return models.NewConflictError(fmt.Sprintf("%s already exists", resource))
	}
	return fmt.Errorf("%s %s: %w", resource, id, err)
}

func containsPattern(query string) string {
	return "%" + query + "%"
}
