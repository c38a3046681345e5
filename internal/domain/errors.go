package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrBackendUnavailable = errors.New("almacén primario no disponible")
	ErrCorruptPayload     = errors.New("contenido de respaldo corrupto")
	ErrValidation         = errors.New("validación fallida")
	ErrNoBackupAvailable  = errors.New("no existe copia de seguridad")
)

// ValidationError detalla los campos obligatorios ausentes. Se compara con errors.Is(err, ErrValidation).
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": campos requeridos " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
