package entity

// Department departamento de la empresa (directorio externo, solo lectura para este módulo).
type Department struct {
	ID        string
	CompanyID string
	Name      string
}
