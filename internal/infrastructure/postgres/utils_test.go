package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Talento-api/internal/domain"
)

func TestUnavailable_EnvuelveErroresDelPrimario(t *testing.T) {
	undefined := unavailable("list salary categories", &pgconn.PgError{Code: "42P01", Message: `relation "salary_categories" does not exist`})
	assert.ErrorIs(t, undefined, domain.ErrBackendUnavailable)
	assert.Contains(t, undefined.Error(), "entidad no provisionada")

	dup := unavailable("insert salary category", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, dup, domain.ErrBackendUnavailable)
	assert.ErrorIs(t, dup, domain.ErrDuplicate)

	refused := unavailable("list salary categories", errors.New("dial tcp 127.0.0.1:5432: connection refused"))
	assert.ErrorIs(t, refused, domain.ErrBackendUnavailable)
	assert.NotErrorIs(t, refused, domain.ErrDuplicate)
}

func TestUnavailableCategoryRepo_SiempreFalla(t *testing.T) {
	r := NewUnavailableCategoryRepository(errors.New("ping DB: timeout"))

	_, err := r.List(context.Background(), "c1", "")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.ErrorIs(t, r.Create(context.Background(), nil), domain.ErrBackendUnavailable)
	assert.ErrorIs(t, r.Update(context.Background(), nil), domain.ErrBackendUnavailable)
	assert.ErrorIs(t, r.Delete(context.Background(), "c1", "x"), domain.ErrBackendUnavailable)
}
