package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryRangeDTO rango salarial.
type SalaryRangeDTO struct {
	Min    decimal.Decimal `json:"min"`
	Target decimal.Decimal `json:"target"`
	Max    decimal.Decimal `json:"max"`
}

// SaveSalaryCategoryRequest entrada para crear o actualizar una categoría salarial.
type SaveSalaryCategoryRequest struct {
	Name                    string         `json:"name" validate:"required"`
	Code                    string         `json:"code" validate:"required"`
	Level                   int            `json:"level"`
	Department              string         `json:"department"`
	DepartmentID            string         `json:"department_id"`
	Description             string         `json:"description"`
	SalaryRange             SalaryRangeDTO `json:"salary_range"`
	RequiredExperienceYears int            `json:"required_experience_years"`
	IsActive                *bool          `json:"is_active"` // nil = activa
	Order                   int            `json:"order"`
}

// SalaryCategoryResponse salida de una categoría. Key es la clave a usar en las rutas /:key.
type SalaryCategoryResponse struct {
	Key                     string         `json:"key"`
	ID                      string         `json:"id,omitempty"`
	Name                    string         `json:"name"`
	Code                    string         `json:"code"`
	Level                   int            `json:"level"`
	Department              string         `json:"department"`
	DepartmentName          string         `json:"department_name"`
	DepartmentNormalized    string         `json:"department_normalized"`
	DepartmentID            string         `json:"department_id,omitempty"`
	Description             string         `json:"description"`
	SalaryRange             SalaryRangeDTO `json:"salary_range"`
	RequiredExperienceYears int            `json:"required_experience_years"`
	IsActive                bool           `json:"is_active"`
	Order                   int            `json:"order"`
	Assignments             int            `json:"assignments"`
	Orphan                  bool           `json:"orphan"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// DepartmentResponse departamento.
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MergeReportResponse resumen de la fusión de ambos almacenes.
type MergeReportResponse struct {
	FromPrimary    int      `json:"from_primary"`
	FromFallback   int      `json:"from_fallback"`
	Overridden     int      `json:"overridden"`
	StaleOverrides []string `json:"stale_overrides,omitempty"`
}

// SalaryCategoryListResponse vista fusionada. Degraded indica modo respaldo (no es un error).
type SalaryCategoryListResponse struct {
	Items      []SalaryCategoryResponse `json:"items"`
	Department *DepartmentResponse      `json:"department,omitempty"`
	Merge      MergeReportResponse      `json:"merge"`
	Degraded   bool                     `json:"degraded"`
}

// DepartmentGroupResponse categorías de un departamento (Count sin huérfanas).
type DepartmentGroupResponse struct {
	Department DepartmentResponse       `json:"department"`
	Count      int                      `json:"count"`
	Categories []SalaryCategoryResponse `json:"categories"`
}

// SalaryCategoryOverviewResponse vista agrupada por departamento.
type SalaryCategoryOverviewResponse struct {
	Groups     []DepartmentGroupResponse `json:"groups"`
	Unassigned []SalaryCategoryResponse  `json:"unassigned"`
	Orphans    []SalaryCategoryResponse  `json:"orphans"`
	All        []SalaryCategoryResponse  `json:"all"`
	Degraded   bool                      `json:"degraded"`
}

// SalaryCategoryMutationResponse resultado de crear, actualizar o eliminar.
type SalaryCategoryMutationResponse struct {
	Category *SalaryCategoryResponse    `json:"category,omitempty"`
	Phase    string                     `json:"phase"`
	Degraded bool                       `json:"degraded"`
	View     *SalaryCategoryListResponse `json:"view,omitempty"`
}

// MoveSalaryCategoryRequest dirección del movimiento: up | down.
type MoveSalaryCategoryRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// MoveSalaryCategoryResponse orden de los hermanos tras el movimiento.
type MoveSalaryCategoryResponse struct {
	Moved    bool                     `json:"moved"`
	Ordered  []SalaryCategoryResponse `json:"ordered"`
	Degraded bool                     `json:"degraded"`
}

// RemovedSalaryCategoryResponse categoría retirada por la limpieza.
type RemovedSalaryCategoryResponse struct {
	Category SalaryCategoryResponse `json:"category"`
	Reason   string                 `json:"reason"`
}

// CleanupResponse resultado de la limpieza.
type CleanupResponse struct {
	BackupAt time.Time                       `json:"backup_at"`
	Removed  []RemovedSalaryCategoryResponse `json:"removed"`
	Kept     int                             `json:"kept"`
}

// RestoreRequest departamento seleccionado para los registros restaurados sin departamento.
type RestoreRequest struct {
	SelectedDepartmentID string `json:"selected_department_id"`
}

// RestoreResponse resultado de la restauración.
type RestoreResponse struct {
	BackupAt          time.Time `json:"backup_at"`
	Restored          int       `json:"restored"`
	DefaultAssigned   int       `json:"default_assigned"`
	Total             int       `json:"total"`
	MirroredToPrimary int       `json:"mirrored_to_primary"`
	PrimaryFailures   int       `json:"primary_failures"`
	Degraded          bool      `json:"degraded"`
}

// BackupInfoResponse metadatos de la copia de seguridad.
type BackupInfoResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Size      int       `json:"size"`
}
