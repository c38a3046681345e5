package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Talento-api/internal/domain"
	engine "github.com/jhoicas/Talento-api/internal/domain/category"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
	"github.com/jhoicas/Talento-api/pkg/logger"
)

// Phase estado de una operación de escritura.
//
//	idle -> writing_primary -> writing_fallback -> done
//	idle -> writing_primary (falla) -> writing_fallback -> done_degraded
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseWritingPrimary  Phase = "writing_primary"
	PhaseWritingFallback Phase = "writing_fallback"
	PhaseDone            Phase = "done"
	PhaseDoneDegraded    Phase = "done_degraded"
)

// ListQuery filtros de lectura. DepartmentID o DepartmentName vacíos = sin filtro.
type ListQuery struct {
	CompanyID      string
	DepartmentID   string
	DepartmentName string
}

// View vista fusionada y deduplicada. Se obtiene de nuevo tras cada escritura.
type View struct {
	Categories  []*entity.SalaryCategory
	Counts      engine.AssignmentCounts
	Department  *entity.Department
	MergeReport engine.MergeReport
	Degraded    bool
}

// OverviewView vista agrupada por departamento.
type OverviewView struct {
	engine.Overview
	Counts   engine.AssignmentCounts
	Degraded bool
}

// MutationResult resultado de Save/Delete.
type MutationResult struct {
	Category *entity.SalaryCategory
	Phase    Phase
	Degraded bool
	View     *View
}

// MoveResult orden de los hermanos tras un movimiento.
type MoveResult struct {
	Ordered  []*entity.SalaryCategory
	Moved    bool
	Degraded bool
	View     *View
}

// CleanupReport resultado de Cleanup.
type CleanupReport struct {
	BackupAt time.Time
	Removed  []engine.Removal
	Kept     int
	View     *View
}

// RestoreReport resultado de Restore/Import.
type RestoreReport struct {
	BackupAt          time.Time
	Restored          int
	DefaultAssigned   int
	Total             int
	MirroredToPrimary int
	PrimaryFailures   int
	Degraded          bool
	View              *View
}

// BackupInfo metadatos de la copia de seguridad vigente.
type BackupInfo struct {
	Timestamp time.Time
	Size      int
}

// Service coordina lecturas y escrituras sobre ambos niveles de almacenamiento.
// La escritura en respaldo es la red de seguridad: un fallo del primario no aborta la operación.
type Service struct {
	primary     repository.SalaryCategoryRepository
	fallback    *FallbackStore
	departments repository.DepartmentRepository
	assignments repository.AssignmentCounter
	log         *logger.Logger

	now   func() time.Time
	newID func() string

	degraded atomic.Bool
}

// NewService construye el coordinador.
func NewService(
	primary repository.SalaryCategoryRepository,
	fallback *FallbackStore,
	departments repository.DepartmentRepository,
	assignments repository.AssignmentCounter,
	log *logger.Logger,
) *Service {
	return &Service{
		primary:     primary,
		fallback:    fallback,
		departments: departments,
		assignments: assignments,
		log:         log,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// Degraded informa si la última operación contra el almacén primario falló.
func (s *Service) Degraded() bool { return s.degraded.Load() }

func (s *Service) markDegraded(op string, err error) {
	if !s.degraded.Swap(true) {
		s.log.Warn().Err(err).Str("op", op).Msg("almacén primario no disponible, modo respaldo activado")
		return
	}
	s.log.Debug().Err(err).Str("op", op).Msg("almacén primario sigue sin responder")
}

func (s *Service) markHealthy() {
	if s.degraded.Swap(false) {
		s.log.Info().Msg("almacén primario disponible de nuevo")
	}
}

func (s *Service) phase(op string, p Phase) {
	s.log.Debug().Str("op", op).Str("phase", string(p)).Msg("categoría")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura
// ──────────────────────────────────────────────────────────────────────────────

func (s *Service) read(ctx context.Context, companyID string) ([]*entity.SalaryCategory, engine.MergeReport, error) {
	fb, ferr := s.fallback.ReadAll(ctx, companyID)
	if ferr != nil {
		s.log.Warn().Err(ferr).Str("company_id", companyID).Msg("almacén de respaldo no disponible")
	}
	prim, perr := s.primary.List(ctx, companyID, repository.SortByOrder)
	if perr != nil {
		s.markDegraded("list", perr)
	} else {
		s.markHealthy()
	}
	if ferr != nil && perr != nil {
		return nil, engine.MergeReport{}, fmt.Errorf("%w: ningún almacén respondió: %v", domain.ErrBackendUnavailable, errors.Join(perr, ferr))
	}
	merged, rep := engine.MergeWithReport(fb, prim)
	if len(rep.StaleOverrides) > 0 {
		s.log.Warn().Strs("keys", rep.StaleOverrides).Str("company_id", companyID).
			Msg("copias de respaldo más recientes que el primario; prevalece el primario")
	}
	return merged, rep, nil
}

func (s *Service) listDepartments(ctx context.Context, companyID string) []*entity.Department {
	if s.departments == nil {
		return nil
	}
	list, err := s.departments.List(ctx, companyID)
	if err != nil {
		s.log.Warn().Err(err).Str("company_id", companyID).Msg("directorio de departamentos no disponible")
		return nil
	}
	return list
}

// assignmentCounts sin contador configurado devuelve ErrBackendUnavailable: "sin datos" no equivale
// a "sin asignaciones".
func (s *Service) assignmentCounts(ctx context.Context, companyID string) (engine.AssignmentCounts, error) {
	if s.assignments == nil {
		return nil, fmt.Errorf("%w: conteo de asignaciones no configurado", domain.ErrBackendUnavailable)
	}
	counts, err := s.assignments.CountByCategory(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return engine.AssignmentCounts(counts), nil
}

// List vista fusionada, opcionalmente filtrada por departamento.
func (s *Service) List(ctx context.Context, q ListQuery) (*View, error) {
	merged, rep, err := s.read(ctx, q.CompanyID)
	if err != nil {
		return nil, err
	}
	counts, err := s.assignmentCounts(ctx, q.CompanyID)
	if err != nil {
		s.log.Warn().Err(err).Msg("conteo de asignaciones no disponible")
	}

	view := &View{MergeReport: rep, Counts: counts, Degraded: s.Degraded()}
	if q.DepartmentID != "" || q.DepartmentName != "" {
		view.Department = s.resolveFilter(ctx, q)
	}
	view.Categories = engine.SortCategories(engine.FilterByDepartment(merged, view.Department))
	return view, nil
}

func (s *Service) resolveFilter(ctx context.Context, q ListQuery) *entity.Department {
	for _, d := range s.listDepartments(ctx, q.CompanyID) {
		if (q.DepartmentID != "" && d.ID == q.DepartmentID) ||
			(q.DepartmentName != "" && engine.NormalizeLabel(d.Name) == engine.NormalizeLabel(q.DepartmentName)) {
			return d
		}
	}
	return &entity.Department{ID: q.DepartmentID, CompanyID: q.CompanyID, Name: q.DepartmentName}
}

// Overview vista de todas las categorías agrupadas por departamento.
func (s *Service) Overview(ctx context.Context, companyID string) (*OverviewView, error) {
	merged, _, err := s.read(ctx, companyID)
	if err != nil {
		return nil, err
	}
	counts, err := s.assignmentCounts(ctx, companyID)
	if err != nil {
		s.log.Warn().Err(err).Msg("conteo de asignaciones no disponible")
	}
	ov := engine.BuildOverview(merged, s.listDepartments(ctx, companyID), counts)
	return &OverviewView{Overview: ov, Counts: counts, Degraded: s.Degraded()}, nil
}

// BackupInfo metadatos de la copia de seguridad vigente.
func (s *Service) BackupInfo(ctx context.Context, companyID string) (*BackupInfo, error) {
	snap, err := s.fallback.ReadBackup(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, domain.ErrNoBackupAvailable
	}
	return &BackupInfo{Timestamp: snap.Timestamp, Size: len(snap.Data)}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Escritura
// ──────────────────────────────────────────────────────────────────────────────

// Save crea (key vacío) o actualiza la categoría identificada por key. Valida antes de escribir nada.
// Un registro sin ID (solo en respaldo) se sincroniza con el primario al guardarse.
func (s *Service) Save(ctx context.Context, companyID, key string, in *entity.SalaryCategory) (*MutationResult, error) {
	rec := in.Clone()
	rec.CompanyID = companyID
	rec.Code = strings.ToUpper(strings.TrimSpace(rec.Code))
	rec.Name = strings.Join(strings.Fields(rec.Name), " ")
	if rec.Level <= 0 {
		rec.Level = 1
	}
	if err := engine.Validate(rec); err != nil {
		return nil, err
	}
	if key != "" {
		merged, _, err := s.read(ctx, companyID)
		if err != nil {
			return nil, err
		}
		existing := engine.Find(merged, key)
		if existing == nil {
			return nil, domain.ErrNotFound
		}
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}
	if d := engine.FindDepartment(rec, s.listDepartments(ctx, companyID)); d != nil {
		engine.AssignDepartment(rec, d)
	} else {
		engine.SyncDepartmentFields(rec)
	}
	if !rec.SalaryRange.Valid() {
		s.log.Warn().Str("code", rec.Code).Msg("rango salarial fuera de orden (min <= objetivo <= max)")
	}

	saved, phase, err := s.persist(ctx, companyID, key, rec)
	if err != nil {
		return nil, err
	}
	view, _ := s.List(ctx, ListQuery{CompanyID: companyID})
	return &MutationResult{Category: saved, Phase: phase, Degraded: phase == PhaseDoneDegraded, View: view}, nil
}

// persist escribe en el primario y refleja el resultado en respaldo. Solo devuelve error
// si ambos niveles fallan.
func (s *Service) persist(ctx context.Context, companyID, key string, rec *entity.SalaryCategory) (*entity.SalaryCategory, Phase, error) {
	const op = "save"
	rec = rec.Clone()
	now := s.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	ghost := engine.ContentKey(rec)

	s.phase(op, PhaseWritingPrimary)
	var perr error
	if rec.ID == "" {
		rec.ID = s.newID()
		if perr = s.primary.Create(ctx, rec); perr != nil {
			rec.ID = ""
		}
	} else {
		perr = s.primary.Update(ctx, rec)
	}
	if perr != nil {
		s.markDegraded(op, perr)
	} else {
		s.markHealthy()
	}

	s.phase(op, PhaseWritingFallback)
	ferr := s.mirror(ctx, companyID, func(list []*entity.SalaryCategory) ([]*entity.SalaryCategory, bool) {
		return engine.Upsert(list, rec, key, ghost), true
	})
	if ferr != nil {
		if perr != nil {
			return nil, PhaseIdle, fmt.Errorf("guardar categoría: %w", errors.Join(perr, ferr))
		}
		s.log.Warn().Err(ferr).Str("id", rec.ID).Msg("no se pudo reflejar la categoría en respaldo")
	}

	phase := PhaseDone
	if perr != nil {
		phase = PhaseDoneDegraded
	}
	s.phase(op, phase)
	return rec, phase, nil
}

// mirror lee la colección de respaldo, aplica fn y la escribe si fn indica cambios.
// Si la lectura falla no se escribe nada, para no pisar la colección con una lista parcial.
func (s *Service) mirror(ctx context.Context, companyID string, fn func([]*entity.SalaryCategory) ([]*entity.SalaryCategory, bool)) error {
	list, err := s.fallback.ReadAll(ctx, companyID)
	if err != nil {
		return err
	}
	next, changed := fn(list)
	if !changed {
		return nil
	}
	return s.fallback.WriteAll(ctx, companyID, next)
}

// Delete elimina la categoría key de ambos niveles. El borrado en respaldo se intenta siempre,
// independientemente del resultado del primario.
func (s *Service) Delete(ctx context.Context, companyID, key string) (*MutationResult, error) {
	const op = "delete"
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrInvalidInput
	}
	merged, _, _ := s.read(ctx, companyID)
	target := engine.Find(merged, key)

	isID := !strings.Contains(key, "|")
	var perr error
	if isID {
		s.phase(op, PhaseWritingPrimary)
		if perr = s.primary.Delete(ctx, companyID, key); perr != nil {
			s.markDegraded(op, perr)
		} else {
			s.markHealthy()
		}
	}

	s.phase(op, PhaseWritingFallback)
	removed := 0
	ferr := s.mirror(ctx, companyID, func(list []*entity.SalaryCategory) ([]*entity.SalaryCategory, bool) {
		list, n := engine.RemoveByKey(list, key)
		if target != nil && target.ID != "" {
			var g int
			list, g = engine.RemoveByKey(list, engine.ContentKey(target))
			n += g
		}
		removed = n
		return list, n > 0
	})

	switch {
	case ferr != nil && (!isID || perr != nil):
		return nil, fmt.Errorf("eliminar categoría: %w", errors.Join(perr, ferr))
	case ferr != nil:
		s.log.Warn().Err(ferr).Str("key", key).Msg("no se pudo eliminar la categoría del respaldo")
	case target == nil && removed == 0:
		return nil, domain.ErrNotFound
	}

	phase := PhaseDone
	if perr != nil {
		phase = PhaseDoneDegraded
	}
	s.phase(op, phase)
	view, _ := s.List(ctx, ListQuery{CompanyID: companyID})
	return &MutationResult{Category: target, Phase: phase, Degraded: perr != nil, View: view}, nil
}

// Move intercambia el orden de key con su vecino dentro del departamento. En los extremos no hace nada.
func (s *Service) Move(ctx context.Context, companyID, key string, dir engine.Direction) (*MoveResult, error) {
	merged, _, err := s.read(ctx, companyID)
	if err != nil {
		return nil, err
	}
	plan, err := engine.PlanMove(merged, key, dir)
	if err != nil {
		return nil, err
	}
	if plan.NoOp {
		return &MoveResult{Ordered: plan.Ordered, Degraded: s.Degraded()}, nil
	}

	degraded := false
	movedKey := key
	for _, c := range plan.Changed {
		oldKey := engine.CompositeKey(c)
		saved, phase, err := s.persist(ctx, companyID, oldKey, c)
		if err != nil {
			return nil, err
		}
		if phase == PhaseDoneDegraded {
			degraded = true
		}
		if oldKey == key {
			movedKey = engine.CompositeKey(saved)
		}
	}

	view, err := s.List(ctx, ListQuery{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	ordered := plan.Ordered
	if moved := engine.Find(view.Categories, movedKey); moved != nil {
		ordered = engine.Siblings(view.Categories, moved)
	}
	return &MoveResult{Ordered: ordered, Moved: true, Degraded: degraded, View: view}, nil
}

// Cleanup elimina del respaldo las huérfanas y las variantes sin departamento duplicadas.
// Sin conteo de asignaciones no elimina nada. Hace copia de seguridad solo si va a eliminar,
// así una pasada sin cambios conserva el punto de restauración. Nunca toca el almacén primario.
func (s *Service) Cleanup(ctx context.Context, companyID string) (*CleanupReport, error) {
	counts, err := s.assignmentCounts(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("conteo de asignaciones: %w", err)
	}
	live, err := s.fallback.ReadAll(ctx, companyID)
	if err != nil {
		return nil, err
	}

	plan := engine.PlanCleanup(live, counts)
	var backupAt time.Time
	if len(plan.Remove) > 0 {
		snap, err := s.fallback.Backup(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("copia de seguridad previa a la limpieza: %w", err)
		}
		backupAt = snap.Timestamp
		plan = engine.PlanCleanup(snap.Data, counts)
		if err := s.fallback.WriteAll(ctx, companyID, plan.Keep); err != nil {
			return nil, err
		}
	} else if prev, err := s.fallback.ReadBackup(ctx, companyID); err == nil && prev != nil {
		backupAt = prev.Timestamp
	}
	s.log.Info().Str("company_id", companyID).Int("removed", len(plan.Remove)).Int("kept", len(plan.Keep)).
		Msg("limpieza de categorías completada")

	view, _ := s.List(ctx, ListQuery{CompanyID: companyID})
	return &CleanupReport{BackupAt: backupAt, Removed: plan.Remove, Kept: len(plan.Keep), View: view}, nil
}

// Restore une la copia de seguridad con la colección actual (la copia prevalece en claves iguales),
// asigna un departamento por defecto a los registros sin él y replica en el primario.
func (s *Service) Restore(ctx context.Context, companyID, selectedDepartmentID string) (*RestoreReport, error) {
	snap, err := s.fallback.ReadBackup(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, domain.ErrNoBackupAvailable
	}
	rep, err := s.unionInto(ctx, companyID, snap.Data, selectedDepartmentID)
	if err != nil {
		return nil, err
	}
	rep.BackupAt = snap.Timestamp
	return rep, nil
}

// Import une registros externos (p. ej. una exportación antigua) con la misma semántica que Restore.
func (s *Service) Import(ctx context.Context, companyID string, records []*entity.SalaryCategory, selectedDepartmentID string) (*RestoreReport, error) {
	in := make([]*entity.SalaryCategory, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		c := r.Clone()
		c.CompanyID = companyID
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		in = append(in, c)
	}
	return s.unionInto(ctx, companyID, in, selectedDepartmentID)
}

func (s *Service) unionInto(ctx context.Context, companyID string, records []*entity.SalaryCategory, selectedDepartmentID string) (*RestoreReport, error) {
	restored, assigned := engine.PrepareRestore(records, selectedDepartmentID, s.listDepartments(ctx, companyID))

	current, err := s.fallback.ReadAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	known := current
	if prim, perr := s.primary.List(ctx, companyID, repository.SortByOrder); perr == nil {
		known = append(append([]*entity.SalaryCategory{}, current...), prim...)
	}
	restored = engine.AdoptIDs(restored, known)
	merged := engine.UnionByKey(current, restored)
	if err := s.fallback.WriteAll(ctx, companyID, merged); err != nil {
		return nil, err
	}

	rep := &RestoreReport{Restored: len(restored), DefaultAssigned: assigned, Total: len(merged)}
	idsAssigned := false
	for _, r := range restored {
		rec := r.Clone()
		var perr error
		if rec.ID == "" {
			rec.ID = s.newID()
			perr = s.primary.Create(ctx, rec)
		} else {
			perr = s.primary.Update(ctx, rec)
		}
		if perr != nil {
			rep.PrimaryFailures++
			s.markDegraded("restore", perr)
			continue
		}
		s.markHealthy()
		rep.MirroredToPrimary++
		if r.ID == "" {
			merged = engine.Upsert(merged, rec, engine.CompositeKey(r))
			idsAssigned = true
		}
	}
	if idsAssigned {
		if err := s.fallback.WriteAll(ctx, companyID, merged); err != nil {
			s.log.Warn().Err(err).Msg("no se pudieron guardar en respaldo los IDs asignados por el primario")
		}
	}

	rep.Degraded = rep.PrimaryFailures > 0
	s.log.Info().Str("company_id", companyID).Int("restored", rep.Restored).Int("total", rep.Total).
		Int("default_assigned", rep.DefaultAssigned).Int("primary_failures", rep.PrimaryFailures).
		Msg("restauración de categorías completada")

	rep.View, _ = s.List(ctx, ListQuery{CompanyID: companyID})
	return rep, nil
}
