package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Talento-api/internal/domain/category"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
)

var _ repository.AssignmentCounter = (*AssignmentRepo)(nil)

// AssignmentRepo cuenta empleados activos por categoría. Los empleados enlazados por ID cuentan
// bajo el ID; los que solo guardan el código, bajo el código normalizado.
type AssignmentRepo struct {
	q       Querier
	timeout time.Duration
}

// NewAssignmentRepository construye el adaptador.
func NewAssignmentRepository(q Querier, timeout time.Duration) *AssignmentRepo {
	return &AssignmentRepo{q: q, timeout: timeout}
}

// CountByCategory devuelve id|código -> número de empleados activos.
func (r *AssignmentRepo) CountByCategory(ctx context.Context, companyID string) (map[string]int, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(category_id::text, ''), COALESCE(category_code, ''), COUNT(*)
		FROM employees
		WHERE company_id = $1 AND is_active
		GROUP BY 1, 2`, companyID)
	if err != nil {
		return nil, fmt.Errorf("count assignments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id, code string
		var n int
		if err := rows.Scan(&id, &code, &n); err != nil {
			return nil, fmt.Errorf("scan assignment count: %w", err)
		}
		switch {
		case id != "":
			counts[id] += n
		case code != "":
			counts[category.NormalizeLabel(code)] += n
		}
	}
	return counts, rows.Err()
}
