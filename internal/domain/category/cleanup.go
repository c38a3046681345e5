package category

import (
	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// Motivos por los que la limpieza retira un registro.
const (
	ReasonOrphan    = "huerfana"
	ReasonDuplicate = "duplicada_sin_departamento"
)

// Removal registro marcado para eliminar y su motivo.
type Removal struct {
	Category *entity.SalaryCategory
	Reason   string
}

// CleanupPlan resultado de PlanCleanup.
type CleanupPlan struct {
	Keep   []*entity.SalaryCategory
	Remove []Removal
}

// PlanCleanup decide qué registros de la colección de respaldo se eliminan: las huérfanas y, cuando
// varias variantes comparten código|nombre y alguna tiene departamento, las variantes sin departamento.
// Debe recibir solo la colección local de respaldo, nunca la vista fusionada.
func PlanCleanup(fallback []*entity.SalaryCategory, counts AssignmentCounts) CleanupPlan {
	withDept := make(map[string]bool)
	for _, c := range fallback {
		if c != nil && HasDepartment(c) {
			withDept[BaseKey(c)] = true
		}
	}

	var plan CleanupPlan
	for _, c := range fallback {
		if c == nil {
			continue
		}
		switch {
		case HasDepartment(c):
			plan.Keep = append(plan.Keep, c)
		case withDept[BaseKey(c)]:
			plan.Remove = append(plan.Remove, Removal{Category: c, Reason: ReasonDuplicate})
		case IsOrphan(c, counts):
			plan.Remove = append(plan.Remove, Removal{Category: c, Reason: ReasonOrphan})
		default:
			plan.Keep = append(plan.Keep, c)
		}
	}
	return plan
}
