package category

import (
	"strings"

	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// AssignmentCounts empleados asignados por categoría, indexados por ID de categoría o por código normalizado.
type AssignmentCounts map[string]int

// For devuelve las asignaciones de c (por ID más por código).
func (a AssignmentCounts) For(c *entity.SalaryCategory) int {
	if a == nil {
		return 0
	}
	n := 0
	if c.ID != "" {
		n += a[c.ID]
	}
	if code := NormalizeLabel(c.Code); code != "" {
		n += a[code]
	}
	return n
}

// IsOrphan sin ninguna señal de departamento y sin asignaciones. Una categoría en uso nunca es huérfana.
func IsOrphan(c *entity.SalaryCategory, counts AssignmentCounts) bool {
	return !HasDepartment(c) && counts.For(c) == 0
}

// Orphans filtra las huérfanas de records.
func Orphans(records []*entity.SalaryCategory, counts AssignmentCounts) []*entity.SalaryCategory {
	var out []*entity.SalaryCategory
	for _, c := range records {
		if IsOrphan(c, counts) {
			out = append(out, c)
		}
	}
	return out
}

// BelongsTo coincidencia estricta con el departamento: nombre normalizado o ID.
func BelongsTo(c *entity.SalaryCategory, d *entity.Department) bool {
	if d == nil {
		return false
	}
	if d.ID != "" && strings.TrimSpace(c.DepartmentID) == d.ID {
		return true
	}
	n := NormalizeLabel(d.Name)
	return n != "" && departmentLabel(c) == n
}

// MatchesDepartment coincidencia para filtros: BelongsTo o sin departamento alguno,
// de modo que los registros sin asignar aparecen en todos los filtros para poder clasificarlos.
func MatchesDepartment(c *entity.SalaryCategory, d *entity.Department) bool {
	return !HasDepartment(c) || BelongsTo(c, d)
}

// FilterByDepartment aplica MatchesDepartment. Con d nil devuelve records sin filtrar.
func FilterByDepartment(records []*entity.SalaryCategory, d *entity.Department) []*entity.SalaryCategory {
	if d == nil {
		return records
	}
	out := make([]*entity.SalaryCategory, 0, len(records))
	for _, c := range records {
		if MatchesDepartment(c, d) {
			out = append(out, c)
		}
	}
	return out
}

// DepartmentGroup categorías de un departamento. Count no incluye huérfanas.
type DepartmentGroup struct {
	Department *entity.Department
	Categories []*entity.SalaryCategory
	Count      int
}

// Overview vista "todas las categorías agrupadas por departamento".
type Overview struct {
	Groups     []DepartmentGroup
	Unassigned []*entity.SalaryCategory // en uso o con un departamento que no está en el directorio
	Orphans    []*entity.SalaryCategory
	All        []*entity.SalaryCategory
}

// BuildOverview agrupa records por departamento del directorio.
func BuildOverview(records []*entity.SalaryCategory, departments []*entity.Department, counts AssignmentCounts) Overview {
	ov := Overview{
		Groups: make([]DepartmentGroup, 0, len(departments)),
		All:    SortCategories(records),
	}
	grouped := make(map[*entity.SalaryCategory]bool, len(records))
	for _, d := range departments {
		g := DepartmentGroup{Department: d}
		for _, c := range ov.All {
			if HasDepartment(c) && BelongsTo(c, d) && !grouped[c] {
				g.Categories = append(g.Categories, c)
				grouped[c] = true
			}
		}
		g.Count = len(g.Categories)
		ov.Groups = append(ov.Groups, g)
	}
	for _, c := range ov.All {
		switch {
		case grouped[c]:
		case IsOrphan(c, counts):
			ov.Orphans = append(ov.Orphans, c)
		default:
			ov.Unassigned = append(ov.Unassigned, c)
		}
	}
	return ov
}

// AssignDepartment fija a la vez nombre, forma normalizada e ID del departamento.
func AssignDepartment(c *entity.SalaryCategory, d *entity.Department) {
	name := strings.Join(strings.Fields(d.Name), " ")
	c.Department = name
	c.DepartmentName = name
	c.DepartmentNormalized = NormalizeLabel(name)
	c.DepartmentID = d.ID
}

// SyncDepartmentFields alinea Department/DepartmentName/DepartmentNormalized a partir de la
// primera etiqueta no vacía. No toca DepartmentID.
func SyncDepartmentFields(c *entity.SalaryCategory) {
	name := ""
	for _, v := range []string{c.Department, c.DepartmentName} {
		if s := strings.Join(strings.Fields(v), " "); s != "" {
			name = s
			break
		}
	}
	if name == "" {
		name = c.DepartmentNormalized
	}
	c.Department = name
	c.DepartmentName = name
	c.DepartmentNormalized = NormalizeLabel(name)
}

// FindDepartment busca en el directorio el departamento que ya indica el registro (por ID o nombre).
func FindDepartment(c *entity.SalaryCategory, departments []*entity.Department) *entity.Department {
	if id := strings.TrimSpace(c.DepartmentID); id != "" {
		for _, d := range departments {
			if d.ID == id {
				return d
			}
		}
	}
	if label := departmentLabel(c); label != "" {
		for _, d := range departments {
			if NormalizeLabel(d.Name) == label {
				return d
			}
		}
	}
	return nil
}

// ResolveDefaultDepartment departamento por defecto para un registro restaurado, en orden:
// el que ya indica el registro, el seleccionado por el llamador, el primero del directorio. Puede ser nil.
func ResolveDefaultDepartment(c *entity.SalaryCategory, selectedID string, departments []*entity.Department) *entity.Department {
	if d := FindDepartment(c, departments); d != nil {
		return d
	}
	if selectedID != "" {
		for _, d := range departments {
			if d.ID == selectedID {
				return d
			}
		}
	}
	if len(departments) > 0 {
		return departments[0]
	}
	return nil
}

// PrepareRestore clona records y completa su departamento. Los registros con un departamento que no
// figura en el directorio lo conservan (solo se sincronizan los campos de nombre).
// Devuelve cuántos registros recibieron un departamento por defecto.
func PrepareRestore(records []*entity.SalaryCategory, selectedID string, departments []*entity.Department) ([]*entity.SalaryCategory, int) {
	out := make([]*entity.SalaryCategory, 0, len(records))
	assigned := 0
	for _, r := range records {
		if r == nil {
			continue
		}
		c := r.Clone()
		switch d := FindDepartment(c, departments); {
		case d != nil:
			AssignDepartment(c, d)
		case HasDepartment(c):
			SyncDepartmentFields(c)
		default:
			if def := ResolveDefaultDepartment(c, selectedID, departments); def != nil {
				AssignDepartment(c, def)
				assigned++
			}
		}
		out = append(out, c)
	}
	return out, assigned
}
