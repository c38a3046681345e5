package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Talento-api/internal/domain/entity"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
)

var _ repository.SalaryCategoryRepository = (*SalaryCategoryRepo)(nil)

const salaryCategoryColumns = `id, company_id, name, code, level, department, department_normalized, department_id,
	description, salary_min, salary_target, salary_max, required_experience_years, is_active, sort_order,
	created_at, updated_at`

var salaryCategorySort = map[string]string{
	repository.SortByOrder: "department_normalized, sort_order, level, name",
	repository.SortByLevel: "level, sort_order, name",
	repository.SortByName:  "name, level",
	repository.SortByCode:  "code, name",
}

// SalaryCategoryRepo almacén primario de categorías salariales sobre PostgreSQL (pool o tx).
type SalaryCategoryRepo struct {
	q       Querier
	timeout time.Duration
}

// NewSalaryCategoryRepository construye el adaptador. timeout acota cada llamada (0 = sin límite).
func NewSalaryCategoryRepository(q Querier, timeout time.Duration) *SalaryCategoryRepo {
	return &SalaryCategoryRepo{q: q, timeout: timeout}
}

// List lista las categorías de la empresa ordenadas por sortKey (por defecto "order").
func (r *SalaryCategoryRepo) List(ctx context.Context, companyID, sortKey string) ([]*entity.SalaryCategory, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	orderBy, ok := salaryCategorySort[sortKey]
	if !ok {
		orderBy = salaryCategorySort[repository.SortByOrder]
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+salaryCategoryColumns+` FROM salary_categories WHERE company_id = $1 ORDER BY `+orderBy,
		companyID,
	)
	if err != nil {
		return nil, unavailable("list salary categories", err)
	}
	defer rows.Close()

	var list []*entity.SalaryCategory
	for rows.Next() {
		c, err := scanSalaryCategory(rows)
		if err != nil {
			return nil, unavailable("scan salary category", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list salary categories", err)
	}
	return list, nil
}

// Create inserta una categoría. El ID lo asigna el llamador.
func (r *SalaryCategoryRepo) Create(ctx context.Context, c *entity.SalaryCategory) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO salary_categories (` + salaryCategoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	if _, err := r.q.Exec(ctx, query, salaryCategoryArgs(c)...); err != nil {
		return unavailable("insert salary category", err)
	}
	return nil
}

// Update actualiza la categoría por ID. Si no existe en el primario (p. ej. restaurada desde respaldo) se inserta.
func (r *SalaryCategoryRepo) Update(ctx context.Context, c *entity.SalaryCategory) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO salary_categories (` + salaryCategoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, code = EXCLUDED.code, level = EXCLUDED.level,
			department = EXCLUDED.department, department_normalized = EXCLUDED.department_normalized,
			department_id = EXCLUDED.department_id, description = EXCLUDED.description,
			salary_min = EXCLUDED.salary_min, salary_target = EXCLUDED.salary_target, salary_max = EXCLUDED.salary_max,
			required_experience_years = EXCLUDED.required_experience_years, is_active = EXCLUDED.is_active,
			sort_order = EXCLUDED.sort_order, updated_at = EXCLUDED.updated_at
		WHERE salary_categories.company_id = EXCLUDED.company_id`
	if _, err := r.q.Exec(ctx, query, salaryCategoryArgs(c)...); err != nil {
		return unavailable("update salary category", err)
	}
	return nil
}

// Delete elimina una categoría por ID.
func (r *SalaryCategoryRepo) Delete(ctx context.Context, companyID, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.q.Exec(ctx, `DELETE FROM salary_categories WHERE company_id = $1 AND id = $2`, companyID, id); err != nil {
		return unavailable("delete salary category", err)
	}
	return nil
}

func salaryCategoryArgs(c *entity.SalaryCategory) []any {
	var departmentID *string
	if c.DepartmentID != "" {
		departmentID = &c.DepartmentID
	}
	department := c.Department
	if department == "" {
		department = c.DepartmentName
	}
	return []any{
		c.ID, c.CompanyID, c.Name, c.Code, c.Level, department, c.DepartmentNormalized, departmentID,
		c.Description, c.SalaryRange.Min, c.SalaryRange.Target, c.SalaryRange.Max,
		c.RequiredExperienceYears, c.IsActive, c.Order, c.CreatedAt, c.UpdatedAt,
	}
}

func scanSalaryCategory(row pgx.Row) (*entity.SalaryCategory, error) {
	var c entity.SalaryCategory
	var departmentID *string
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Code, &c.Level, &c.Department, &c.DepartmentNormalized, &departmentID,
		&c.Description, &c.SalaryRange.Min, &c.SalaryRange.Target, &c.SalaryRange.Max,
		&c.RequiredExperienceYears, &c.IsActive, &c.Order, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.DepartmentName = c.Department
	if departmentID != nil {
		c.DepartmentID = *departmentID
	}
	return &c, nil
}
