package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Talento-api/internal/domain/entity"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
)

var _ repository.DepartmentRepository = (*DepartmentRepo)(nil)

// DepartmentRepo directorio de departamentos (solo lectura).
type DepartmentRepo struct {
	q       Querier
	timeout time.Duration
}

// NewDepartmentRepository construye el adaptador.
func NewDepartmentRepository(q Querier, timeout time.Duration) *DepartmentRepo {
	return &DepartmentRepo{q: q, timeout: timeout}
}

// List departamentos de la empresa ordenados por nombre.
func (r *DepartmentRepo) List(ctx context.Context, companyID string) ([]*entity.Department, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx,
		`SELECT id, company_id, name FROM departments WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Department
	for rows.Next() {
		var d entity.Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
