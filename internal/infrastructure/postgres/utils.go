package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Talento-api/internal/domain"
)

// Querier subconjunto común de *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isUndefinedTable la tabla no existe (42P01): la entidad no está provisionada en este entorno.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}

// unavailable envuelve cualquier fallo del almacén primario en domain.ErrBackendUnavailable.
func unavailable(op string, err error) error {
	switch {
	case isUndefinedTable(err):
		return fmt.Errorf("%w: %s: entidad no provisionada: %v", domain.ErrBackendUnavailable, op, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrBackendUnavailable, op, domain.ErrDuplicate)
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrBackendUnavailable, op, err)
	}
}

// withTimeout aplica el timeout del adaptador; d <= 0 no limita.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
