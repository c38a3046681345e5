package category

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
	"github.com/jhoicas/Talento-api/pkg/logger"
)

const payloadVersion = 1

// DefaultKeyPrefix prefijo por defecto de las claves de configuración.
const DefaultKeyPrefix = "salary_categories"

// Snapshot copia de seguridad de la colección de respaldo.
type Snapshot struct {
	Timestamp time.Time
	Data      []*entity.SalaryCategory
}

// FallbackStore adaptador del almacén de respaldo: una única colección serializada por empresa
// dentro de un registro clave-valor, más una segunda clave para la copia de seguridad.
type FallbackStore struct {
	store  repository.ConfigStore
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

// NewFallbackStore construye el adaptador. prefix vacío usa DefaultKeyPrefix.
func NewFallbackStore(store repository.ConfigStore, prefix string, log *logger.Logger) *FallbackStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &FallbackStore{store: store, prefix: prefix, log: log, now: time.Now}
}

func (f *FallbackStore) liveKey(companyID string) string   { return f.prefix + ":" + companyID }
func (f *FallbackStore) backupKey(companyID string) string { return f.prefix + ":" + companyID + ":backup" }

// ReadAll lee la colección. Ausente o corrupta devuelve lista vacía; solo los fallos del almacén son error.
func (f *FallbackStore) ReadAll(ctx context.Context, companyID string) ([]*entity.SalaryCategory, error) {
	raw, err := f.store.Get(ctx, f.liveKey(companyID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*entity.SalaryCategory{}, nil
		}
		return nil, fmt.Errorf("leer respaldo: %w", err)
	}
	records, err := decodeCollection([]byte(raw))
	if err != nil {
		f.log.Warn().Err(err).Str("company_id", companyID).Msg("colección de respaldo corrupta, se trata como vacía")
		return []*entity.SalaryCategory{}, nil
	}
	return records, nil
}

// WriteAll reemplaza la colección completa con una sola escritura.
func (f *FallbackStore) WriteAll(ctx context.Context, companyID string, records []*entity.SalaryCategory) error {
	payload, err := json.Marshal(livePayload{
		Version:    payloadVersion,
		UpdatedAt:  f.now().UTC(),
		Categories: toRecords(records),
	})
	if err != nil {
		return fmt.Errorf("serializar respaldo: %w", err)
	}
	if err := f.store.Set(ctx, f.liveKey(companyID), string(payload)); err != nil {
		return fmt.Errorf("escribir respaldo: %w", err)
	}
	return nil
}

// Backup copia la colección actual a la clave de copia de seguridad. Una colección vacía no
// sobrescribe una copia existente; en ese caso se devuelve la copia vigente.
func (f *FallbackStore) Backup(ctx context.Context, companyID string) (*Snapshot, error) {
	records, err := f.ReadAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		prev, err := f.ReadBackup(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			return &Snapshot{Timestamp: prev.Timestamp, Data: records}, nil
		}
	}
	snap := &Snapshot{Timestamp: f.now().UTC(), Data: records}
	payload, err := json.Marshal(backupPayload{Timestamp: snap.Timestamp, Data: toRecords(records)})
	if err != nil {
		return nil, fmt.Errorf("serializar copia de seguridad: %w", err)
	}
	if err := f.store.Set(ctx, f.backupKey(companyID), string(payload)); err != nil {
		return nil, fmt.Errorf("escribir copia de seguridad: %w", err)
	}
	return snap, nil
}

// ReadBackup devuelve la copia de seguridad más reciente o nil si no existe (o está corrupta).
func (f *FallbackStore) ReadBackup(ctx context.Context, companyID string) (*Snapshot, error) {
	raw, err := f.store.Get(ctx, f.backupKey(companyID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("leer copia de seguridad: %w", err)
	}
	var p backupPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		f.log.Warn().Err(err).Str("company_id", companyID).Msg("copia de seguridad corrupta, se ignora")
		return nil, nil
	}
	return &Snapshot{Timestamp: p.Timestamp, Data: fromRecords(p.Data)}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Formato persistido
// ──────────────────────────────────────────────────────────────────────────────

type livePayload struct {
	Version    int              `json:"version"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Categories []categoryRecord `json:"categories"`
}

// legacyPayload envoltorios antiguos: la colección podía estar en categories, data o value
// (este último como JSON dentro de un string). Solo se leen; siempre se escribe livePayload.
type legacyPayload struct {
	Categories json.RawMessage `json:"categories"`
	Data       json.RawMessage `json:"data"`
	Value      json.RawMessage `json:"value"`
}

type backupPayload struct {
	Timestamp time.Time        `json:"timestamp"`
	Data      []categoryRecord `json:"data"`
}

type salaryRangeRecord struct {
	Min    decimal.Decimal `json:"min"`
	Target decimal.Decimal `json:"target"`
	Max    decimal.Decimal `json:"max"`
}

type categoryRecord struct {
	ID                      string            `json:"id,omitempty"`
	CompanyID               string            `json:"company_id,omitempty"`
	Name                    string            `json:"name"`
	Code                    string            `json:"code"`
	Level                   int               `json:"level"`
	Department              string            `json:"department"`
	DepartmentName          string            `json:"department_name"`
	DepartmentNormalized    string            `json:"department_normalized"`
	DepartmentID            string            `json:"department_id,omitempty"`
	Description             string            `json:"description"`
	SalaryRange             salaryRangeRecord `json:"salary_range"`
	RequiredExperienceYears int               `json:"required_experience_years"`
	IsActive                bool              `json:"is_active"`
	Order                   int               `json:"order"`
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`
}

func decodeCollection(raw []byte) ([]*entity.SalaryCategory, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []*entity.SalaryCategory{}, nil
	}
	if raw[0] == '[' {
		var list []categoryRecord
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
		}
		return fromRecords(list), nil
	}
	var env legacyPayload
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
	}
	for _, field := range []json.RawMessage{env.Categories, env.Data, env.Value} {
		field = bytes.TrimSpace(field)
		if len(field) == 0 || bytes.Equal(field, []byte("null")) {
			continue
		}
		if field[0] == '"' {
			var inner string
			if err := json.Unmarshal(field, &inner); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
			}
			return decodeCollection([]byte(inner))
		}
		var list []categoryRecord
		if err := json.Unmarshal(field, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCorruptPayload, err)
		}
		return fromRecords(list), nil
	}
	return []*entity.SalaryCategory{}, nil
}

func toRecords(list []*entity.SalaryCategory) []categoryRecord {
	out := make([]categoryRecord, 0, len(list))
	for _, c := range list {
		if c == nil {
			continue
		}
		out = append(out, categoryRecord{
			ID:                   c.ID,
			CompanyID:            c.CompanyID,
			Name:                 c.Name,
			Code:                 c.Code,
			Level:                c.Level,
			Department:           c.Department,
			DepartmentName:       c.DepartmentName,
			DepartmentNormalized: c.DepartmentNormalized,
			DepartmentID:         c.DepartmentID,
			Description:          c.Description,
			SalaryRange: salaryRangeRecord{
				Min:    c.SalaryRange.Min,
				Target: c.SalaryRange.Target,
				Max:    c.SalaryRange.Max,
			},
			RequiredExperienceYears: c.RequiredExperienceYears,
			IsActive:                c.IsActive,
			Order:                   c.Order,
			CreatedAt:               c.CreatedAt,
			UpdatedAt:               c.UpdatedAt,
		})
	}
	return out
}

func fromRecords(list []categoryRecord) []*entity.SalaryCategory {
	out := make([]*entity.SalaryCategory, 0, len(list))
	for _, r := range list {
		out = append(out, &entity.SalaryCategory{
			ID:                   r.ID,
			CompanyID:            r.CompanyID,
			Name:                 r.Name,
			Code:                 r.Code,
			Level:                r.Level,
			Department:           r.Department,
			DepartmentName:       r.DepartmentName,
			DepartmentNormalized: r.DepartmentNormalized,
			DepartmentID:         r.DepartmentID,
			Description:          r.Description,
			SalaryRange: entity.SalaryRange{
				Min:    r.SalaryRange.Min,
				Target: r.SalaryRange.Target,
				Max:    r.SalaryRange.Max,
			},
			RequiredExperienceYears: r.RequiredExperienceYears,
			IsActive:                r.IsActive,
			Order:                   r.Order,
			CreatedAt:               r.CreatedAt,
			UpdatedAt:               r.UpdatedAt,
		})
	}
	return out
}
