package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryRange rango salarial de una categoría. Se espera Min <= Target <= Max, pero no se impone.
type SalaryRange struct {
	Min    decimal.Decimal
	Target decimal.Decimal
	Max    decimal.Decimal
}

// Valid informa si el rango respeta Min <= Target <= Max.
func (r SalaryRange) Valid() bool {
	return r.Min.LessThanOrEqual(r.Target) && r.Target.LessThanOrEqual(r.Max)
}

// SalaryCategory categoría profesional (salarial) de un departamento.
type SalaryCategory struct {
	ID                      string // vacío si solo existe en el almacén de respaldo
	CompanyID               string
	Name                    string
	Code                    string // siempre en mayúsculas
	Level                   int
	Department              string
	DepartmentName          string // redundante con Department, se mantienen sincronizados
	DepartmentNormalized    string
	DepartmentID            string
	Description             string
	SalaryRange             SalaryRange
	RequiredExperienceYears int
	IsActive                bool
	Order                   int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Clone devuelve una copia superficial (los campos son valores).
func (c *SalaryCategory) Clone() *SalaryCategory {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
