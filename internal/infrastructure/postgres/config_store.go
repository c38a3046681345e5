package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
)

var _ repository.ConfigStore = (*ConfigStoreRepo)(nil)

// ConfigStoreRepo almacén clave-valor genérico sobre la tabla app_config.
type ConfigStoreRepo struct {
	q       Querier
	timeout time.Duration
}

// NewConfigStoreRepository construye el adaptador.
func NewConfigStoreRepository(q Querier, timeout time.Duration) *ConfigStoreRepo {
	return &ConfigStoreRepo{q: q, timeout: timeout}
}

// Get devuelve domain.ErrNotFound si la clave no existe.
func (r *ConfigStoreRepo) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var value string
	err := r.q.QueryRow(ctx, `SELECT value FROM app_config WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get config %s: %w", key, err)
	}
	return value, nil
}

// Set crea o reemplaza la clave en una sola sentencia.
func (r *ConfigStoreRepo) Set(ctx context.Context, key, value string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.q.Exec(ctx, `
		INSERT INTO app_config (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("set config %s: %w", key, err)
	}
	return nil
}
