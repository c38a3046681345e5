package http

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Talento-api/internal/application/category"
	"github.com/jhoicas/Talento-api/internal/application/dto"
	"github.com/jhoicas/Talento-api/internal/domain"
	engine "github.com/jhoicas/Talento-api/internal/domain/category"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// SalaryCategoryHandler maneja las peticiones HTTP de categorías salariales (protegido).
type SalaryCategoryHandler struct {
	svc *category.Service
}

// NewSalaryCategoryHandler construye el handler.
func NewSalaryCategoryHandler(svc *category.Service) *SalaryCategoryHandler {
	return &SalaryCategoryHandler{svc: svc}
}

// List godoc
// @Summary      Listar categorías salariales (vista fusionada)
// @Tags         salary-categories
// @Security     Bearer
// @Produce      json
// @Param        department_id  query  string  false  "ID de departamento"
// @Param        department     query  string  false  "Nombre de departamento"
// @Success      200  {object}  dto.SalaryCategoryListResponse
// @Router       /api/salary-categories [get]
func (h *SalaryCategoryHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	view, err := h.svc.List(c.UserContext(), category.ListQuery{
		CompanyID:      companyID,
		DepartmentID:   c.Query("department_id"),
		DepartmentName: c.Query("department"),
	})
	if err != nil {
		return categoryError(c, err)
	}
	return c.JSON(toListResponse(view))
}

// Overview godoc
// @Summary      Categorías agrupadas por departamento
// @Tags         salary-categories
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SalaryCategoryOverviewResponse
// @Router       /api/salary-categories/overview [get]
func (h *SalaryCategoryHandler) Overview(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	ov, err := h.svc.Overview(c.UserContext(), companyID)
	if err != nil {
		return categoryError(c, err)
	}
	out := dto.SalaryCategoryOverviewResponse{
		Groups:     make([]dto.DepartmentGroupResponse, 0, len(ov.Groups)),
		Unassigned: toCategoryResponses(ov.Unassigned, ov.Counts),
		Orphans:    toCategoryResponses(ov.Orphans, ov.Counts),
		All:        toCategoryResponses(ov.All, ov.Counts),
		Degraded:   ov.Degraded,
	}
	for _, g := range ov.Groups {
		out.Groups = append(out.Groups, dto.DepartmentGroupResponse{
			Department: dto.DepartmentResponse{ID: g.Department.ID, Name: g.Department.Name},
			Count:      g.Count,
			Categories: toCategoryResponses(g.Categories, ov.Counts),
		})
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear categoría salarial
// @Tags         salary-categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveSalaryCategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.SalaryCategoryMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/salary-categories [post]
func (h *SalaryCategoryHandler) Create(c *fiber.Ctx) error {
	return h.save(c, "", fiber.StatusCreated)
}

// Update godoc
// @Summary      Actualizar categoría salarial
// @Tags         salary-categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        key   path  string  true  "ID o clave compuesta"
// @Param        body  body  dto.SaveSalaryCategoryRequest  true  "Datos de la categoría"
// @Success      200   {object}  dto.SalaryCategoryMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/salary-categories/{key} [put]
func (h *SalaryCategoryHandler) Update(c *fiber.Ctx) error {
	key, err := pathKey(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_KEY", Message: "key es requerido"})
	}
	return h.save(c, key, fiber.StatusOK)
}

func (h *SalaryCategoryHandler) save(c *fiber.Ctx, key string, status int) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	var in dto.SaveSalaryCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.svc.Save(c.UserContext(), companyID, key, fromSaveRequest(in))
	if err != nil {
		return categoryError(c, err)
	}
	return c.Status(status).JSON(toMutationResponse(res))
}

// Delete godoc
// @Summary      Eliminar categoría salarial de ambos almacenes
// @Tags         salary-categories
// @Security     Bearer
// @Produce      json
// @Param        key  path  string  true  "ID o clave compuesta"
// @Success      200  {object}  dto.SalaryCategoryMutationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/salary-categories/{key} [delete]
func (h *SalaryCategoryHandler) Delete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	key, err := pathKey(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_KEY", Message: "key es requerido"})
	}
	res, err := h.svc.Delete(c.UserContext(), companyID, key)
	if err != nil {
		return categoryError(c, err)
	}
	return c.JSON(toMutationResponse(res))
}

// Move godoc
// @Summary      Mover categoría arriba o abajo dentro de su departamento
// @Tags         salary-categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        key   path  string  true  "ID o clave compuesta"
// @Param        body  body  dto.MoveSalaryCategoryRequest  true  "Dirección"
// @Success      200   {object}  dto.MoveSalaryCategoryResponse
// @Router       /api/salary-categories/{key}/move [post]
func (h *SalaryCategoryHandler) Move(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	key, err := pathKey(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_KEY", Message: "key es requerido"})
	}
	var in dto.MoveSalaryCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	dir, err := engine.ParseDirection(in.Direction)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "direction debe ser up o down"})
	}
	res, err := h.svc.Move(c.UserContext(), companyID, key, dir)
	if err != nil {
		return categoryError(c, err)
	}
	var counts engine.AssignmentCounts
	if res.View != nil {
		counts = res.View.Counts
	}
	return c.JSON(dto.MoveSalaryCategoryResponse{
		Moved:    res.Moved,
		Ordered:  toCategoryResponses(res.Ordered, counts),
		Degraded: res.Degraded,
	})
}

// Cleanup godoc
// @Summary      Limpiar huérfanas y duplicadas sin departamento (solo respaldo)
// @Tags         salary-categories
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CleanupResponse
// @Router       /api/salary-categories/cleanup [post]
func (h *SalaryCategoryHandler) Cleanup(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	rep, err := h.svc.Cleanup(c.UserContext(), companyID)
	if err != nil {
		return categoryError(c, err)
	}
	out := dto.CleanupResponse{
		BackupAt: rep.BackupAt,
		Removed:  make([]dto.RemovedSalaryCategoryResponse, 0, len(rep.Removed)),
		Kept:     rep.Kept,
	}
	for _, r := range rep.Removed {
		out.Removed = append(out.Removed, dto.RemovedSalaryCategoryResponse{
			Category: toCategoryResponse(r.Category, nil),
			Reason:   r.Reason,
		})
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar la copia de seguridad (unión, no reemplazo)
// @Tags         salary-categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestoreRequest  false  "Departamento seleccionado"
// @Success      200   {object}  dto.RestoreResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/salary-categories/restore [post]
func (h *SalaryCategoryHandler) Restore(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	var in dto.RestoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	rep, err := h.svc.Restore(c.UserContext(), companyID, in.SelectedDepartmentID)
	if err != nil {
		return categoryError(c, err)
	}
	return c.JSON(dto.RestoreResponse{
		BackupAt:          rep.BackupAt,
		Restored:          rep.Restored,
		DefaultAssigned:   rep.DefaultAssigned,
		Total:             rep.Total,
		MirroredToPrimary: rep.MirroredToPrimary,
		PrimaryFailures:   rep.PrimaryFailures,
		Degraded:          rep.Degraded,
	})
}

// BackupInfo godoc
// @Summary      Metadatos de la copia de seguridad vigente
// @Tags         salary-categories
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BackupInfoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/salary-categories/backup [get]
func (h *SalaryCategoryHandler) BackupInfo(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	info, err := h.svc.BackupInfo(c.UserContext(), companyID)
	if err != nil {
		return categoryError(c, err)
	}
	return c.JSON(dto.BackupInfoResponse{Timestamp: info.Timestamp, Size: info.Size})
}

// categoryError traduce errores de dominio a respuestas HTTP. El modo degradado nunca es un error.
func categoryError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error()})
	case errors.Is(err, domain.ErrNoBackupAvailable):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NO_BACKUP", Message: "no hay copia de seguridad para restaurar"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "categoría no encontrada"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrBackendUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORES_UNAVAILABLE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// pathKey las claves compuestas contienen "|" y espacios, llegan escapadas.
func pathKey(c *fiber.Ctx) (string, error) {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", domain.ErrInvalidInput
	}
	return key, nil
}

func fromSaveRequest(in dto.SaveSalaryCategoryRequest) *entity.SalaryCategory {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &entity.SalaryCategory{
		Name:         in.Name,
		Code:         in.Code,
		Level:        in.Level,
		Department:   in.Department,
		DepartmentID: in.DepartmentID,
		Description:  in.Description,
		SalaryRange: entity.SalaryRange{
			Min:    in.SalaryRange.Min,
			Target: in.SalaryRange.Target,
			Max:    in.SalaryRange.Max,
		},
		RequiredExperienceYears: in.RequiredExperienceYears,
		IsActive:                active,
		Order:                   in.Order,
	}
}

func toCategoryResponse(c *entity.SalaryCategory, counts engine.AssignmentCounts) dto.SalaryCategoryResponse {
	return dto.SalaryCategoryResponse{
		Key:                  engine.CompositeKey(c),
		ID:                   c.ID,
		Name:                 c.Name,
		Code:                 c.Code,
		Level:                c.Level,
		Department:           c.Department,
		DepartmentName:       c.DepartmentName,
		DepartmentNormalized: c.DepartmentNormalized,
		DepartmentID:         c.DepartmentID,
		Description:          c.Description,
		SalaryRange: dto.SalaryRangeDTO{
			Min:    c.SalaryRange.Min,
			Target: c.SalaryRange.Target,
			Max:    c.SalaryRange.Max,
		},
		RequiredExperienceYears: c.RequiredExperienceYears,
		IsActive:                c.IsActive,
		Order:                   c.Order,
		Assignments:             counts.For(c),
		Orphan:                  engine.IsOrphan(c, counts),
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

func toCategoryResponses(list []*entity.SalaryCategory, counts engine.AssignmentCounts) []dto.SalaryCategoryResponse {
	out := make([]dto.SalaryCategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryResponse(c, counts))
	}
	return out
}

func toListResponse(v *category.View) *dto.SalaryCategoryListResponse {
	if v == nil {
		return nil
	}
	out := &dto.SalaryCategoryListResponse{
		Items: toCategoryResponses(v.Categories, v.Counts),
		Merge: dto.MergeReportResponse{
			FromPrimary:    v.MergeReport.FromPrimary,
			FromFallback:   v.MergeReport.FromFallback,
			Overridden:     v.MergeReport.Overridden,
			StaleOverrides: v.MergeReport.StaleOverrides,
		},
		Degraded: v.Degraded,
	}
	if v.Department != nil {
		out.Department = &dto.DepartmentResponse{ID: v.Department.ID, Name: v.Department.Name}
	}
	return out
}

func toMutationResponse(res *category.MutationResult) dto.SalaryCategoryMutationResponse {
	out := dto.SalaryCategoryMutationResponse{
		Phase:    string(res.Phase),
		Degraded: res.Degraded,
		View:     toListResponse(res.View),
	}
	if res.Category != nil {
		var counts engine.AssignmentCounts
		if res.View != nil {
			counts = res.View.Counts
		}
		cr := toCategoryResponse(res.Category, counts)
		out.Category = &cr
	}
	return out
}
