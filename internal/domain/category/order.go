package category

import (
	"sort"
	"strings"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// Direction sentido de un movimiento manual.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection valida la dirección recibida.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", domain.ErrInvalidInput
}

func less(a, b *entity.SalaryCategory) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if a.Level != b.Level {
		return a.Level < b.Level
	}
	return NormalizeLabel(a.Name) < NormalizeLabel(b.Name)
}

// SortCategories copia ordenada por Order, Level y nombre.
func SortCategories(list []*entity.SalaryCategory) []*entity.SalaryCategory {
	out := make([]*entity.SalaryCategory, 0, len(list))
	for _, c := range list {
		if c != nil {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// sameDepartment ambos registros están en el mismo departamento (o ambos sin ninguno).
func sameDepartment(a, b *entity.SalaryCategory) bool {
	if !HasDepartment(a) || !HasDepartment(b) {
		return !HasDepartment(a) && !HasDepartment(b)
	}
	if a.DepartmentID != "" && a.DepartmentID == b.DepartmentID {
		return true
	}
	la := departmentLabel(a)
	return la != "" && la == departmentLabel(b)
}

// Siblings registros del mismo departamento que target (incluido), ordenados.
func Siblings(all []*entity.SalaryCategory, target *entity.SalaryCategory) []*entity.SalaryCategory {
	var out []*entity.SalaryCategory
	for _, c := range all {
		if c != nil && sameDepartment(c, target) {
			out = append(out, c)
		}
	}
	return SortCategories(out)
}

// MovePlan registros a persistir y el orden resultante de los hermanos.
type MovePlan struct {
	Changed []*entity.SalaryCategory
	Ordered []*entity.SalaryCategory
	NoOp    bool
}

// PlanMove intercambia Order entre el registro key y su vecino en la dirección dada.
// Si hay empates de Order entre hermanos se renumeran 1..n antes del intercambio.
// En los extremos de la lista no hay cambios.
func PlanMove(all []*entity.SalaryCategory, key string, dir Direction) (MovePlan, error) {
	target := Find(all, key)
	if target == nil {
		return MovePlan{}, domain.ErrNotFound
	}
	siblings := Siblings(all, target)
	idx := -1
	for i, c := range siblings {
		if c == target {
			idx = i
			break
		}
	}
	next := idx - 1
	if dir == Down {
		next = idx + 1
	}
	if idx < 0 || next < 0 || next >= len(siblings) {
		return MovePlan{Ordered: siblings, NoOp: true}, nil
	}

	work := make([]*entity.SalaryCategory, len(siblings))
	for i, c := range siblings {
		work[i] = c.Clone()
	}
	if hasOrderTies(work) {
		for i, c := range work {
			c.Order = i + 1
		}
	}
	work[idx].Order, work[next].Order = work[next].Order, work[idx].Order

	var plan MovePlan
	for i, c := range work {
		if c.Order != siblings[i].Order {
			plan.Changed = append(plan.Changed, c)
		}
	}
	plan.Ordered = SortCategories(work)
	return plan, nil
}

func hasOrderTies(list []*entity.SalaryCategory) bool {
	seen := make(map[int]bool, len(list))
	for _, c := range list {
		if seen[c.Order] {
			return true
		}
		seen[c.Order] = true
	}
	return false
}
