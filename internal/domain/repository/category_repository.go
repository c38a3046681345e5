package repository

import (
	"context"

	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// Claves de ordenación admitidas por SalaryCategoryRepository.List.
const (
	SortByOrder = "order"
	SortByLevel = "level"
	SortByName  = "name"
	SortByCode  = "code"
)

// SalaryCategoryRepository puerto del almacén primario (estructurado) de categorías.
// Cualquier fallo se devuelve envuelto en domain.ErrBackendUnavailable: el llamador lo trata como fallo blando.
type SalaryCategoryRepository interface {
	List(ctx context.Context, companyID, sortKey string) ([]*entity.SalaryCategory, error)
	Create(ctx context.Context, category *entity.SalaryCategory) error
	Update(ctx context.Context, category *entity.SalaryCategory) error
	Delete(ctx context.Context, companyID, id string) error
}

// ConfigStore almacén clave-valor genérico donde vive la colección serializada de respaldo.
// Get devuelve domain.ErrNotFound si la clave no existe.
type ConfigStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// DepartmentRepository directorio de departamentos (solo lectura).
type DepartmentRepository interface {
	List(ctx context.Context, companyID string) ([]*entity.Department, error)
}

// AssignmentCounter cuenta empleados asignados por categoría. Las claves del mapa son
// IDs de categoría o códigos normalizados.
type AssignmentCounter interface {
	CountByCategory(ctx context.Context, companyID string) (map[string]int, error)
}
