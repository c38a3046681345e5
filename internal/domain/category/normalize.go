// Package category contiene el motor de reconciliación de categorías salariales: claves canónicas,
// fusión entre el almacén primario y el de respaldo, detección de huérfanas, limpieza y restauración.
// Todo el paquete es puro: no hace I/O.
package category

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// NormalizeLabel devuelve la forma canónica de comparación: sin espacios extremos, espacios internos
// colapsados, sin diacríticos y en mayúsculas. "  Producción  Norte " -> "PRODUCCION NORTE".
func NormalizeLabel(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.ToUpper(s)
}

// CompositeKey identidad lógica de un registro: el ID si existe, si no código|departamento|nombre.
func CompositeKey(c *entity.SalaryCategory) string {
	if id := strings.TrimSpace(c.ID); id != "" {
		return id
	}
	return ContentKey(c)
}

// ContentKey clave por contenido, ignora el ID.
func ContentKey(c *entity.SalaryCategory) string {
	return NormalizeLabel(c.Code) + "|" + departmentLabel(c) + "|" + NormalizeLabel(c.Name)
}

// BaseKey código|nombre, ignora el departamento. Solo la usa la limpieza.
func BaseKey(c *entity.SalaryCategory) string {
	return NormalizeLabel(c.Code) + "|" + NormalizeLabel(c.Name)
}

// HasDepartment informa si el registro tiene alguna señal de departamento.
func HasDepartment(c *entity.SalaryCategory) bool {
	return departmentLabel(c) != "" || strings.TrimSpace(c.DepartmentID) != ""
}

// departmentLabel primera etiqueta de departamento no vacía, normalizada.
func departmentLabel(c *entity.SalaryCategory) string {
	for _, v := range []string{c.Department, c.DepartmentName, c.DepartmentNormalized} {
		if n := NormalizeLabel(v); n != "" {
			return n
		}
	}
	return ""
}
