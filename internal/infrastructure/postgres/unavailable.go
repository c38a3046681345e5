package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
)

var _ repository.SalaryCategoryRepository = (*UnavailableCategoryRepo)(nil)

// UnavailableCategoryRepo sustituye al almacén primario cuando la base de datos no está disponible
// al arrancar: toda llamada devuelve domain.ErrBackendUnavailable y el servicio trabaja solo con respaldo.
type UnavailableCategoryRepo struct {
	cause error
}

// NewUnavailableCategoryRepository construye el sustituto con la causa original.
func NewUnavailableCategoryRepository(cause error) *UnavailableCategoryRepo {
	return &UnavailableCategoryRepo{cause: cause}
}

func (r *UnavailableCategoryRepo) err() error {
	return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, r.cause)
}

func (r *UnavailableCategoryRepo) List(context.Context, string, string) ([]*entity.SalaryCategory, error) {
	return nil, r.err()
}

func (r *UnavailableCategoryRepo) Create(context.Context, *entity.SalaryCategory) error { return r.err() }

func (r *UnavailableCategoryRepo) Update(context.Context, *entity.SalaryCategory) error { return r.err() }

func (r *UnavailableCategoryRepo) Delete(context.Context, string, string) error { return r.err() }
