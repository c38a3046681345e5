// Package redisstore implementa el almacén clave-valor de respaldo sobre Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
	"github.com/jhoicas/Talento-api/pkg/config"
)

var _ repository.ConfigStore = (*ConfigStore)(nil)

// NewClient crea el cliente Redis.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ConfigStore claves sin TTL: la colección de respaldo no debe expirar.
type ConfigStore struct {
	c       *redis.Client
	timeout time.Duration
}

// NewConfigStore construye el adaptador. timeout acota cada llamada (0 = sin límite).
func NewConfigStore(c *redis.Client, timeout time.Duration) *ConfigStore {
	return &ConfigStore{c: c, timeout: timeout}
}

// Get devuelve domain.ErrNotFound si la clave no existe.
func (s *ConfigStore) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	val, err := s.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set guarda el valor completo en una sola operación.
func (s *ConfigStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.c.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *ConfigStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
