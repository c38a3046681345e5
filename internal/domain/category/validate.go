package category

import (
	"strings"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// Validate comprueba los campos obligatorios antes de cualquier escritura.
// RequiredExperienceYears negativo también se rechaza.
func Validate(c *entity.SalaryCategory) error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Code) == "" {
		missing = append(missing, "code")
	}
	if !HasDepartment(c) {
		missing = append(missing, "department")
	}
	if c.RequiredExperienceYears < 0 {
		missing = append(missing, "required_experience_years")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing}
	}
	return nil
}
