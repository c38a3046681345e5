package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Talento-api/internal/application/category"
	"github.com/jhoicas/Talento-api/internal/application/dto"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
	"github.com/jhoicas/Talento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Talento-api/internal/infrastructure/redisstore"
	apphttp "github.com/jhoicas/Talento-api/internal/interfaces/http"
	"github.com/jhoicas/Talento-api/pkg/config"
	"github.com/jhoicas/Talento-api/pkg/logger"
)

// noAssignments contador sin empleados asignados.
type noAssignments struct{}

func (noAssignments) CountByCategory(context.Context, string) (map[string]int, error) {
	return map[string]int{}, nil
}

// buildCategoryApp API completa con respaldo en Redis (miniredis) y primario caído desde el arranque.
// counter nil reproduce el arranque sin base de datos: no hay conteo de asignaciones.
func buildCategoryApp(t *testing.T, counter repository.AssignmentCounter) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisstore.NewClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.Nop()
	fallback := category.NewFallbackStore(redisstore.NewConfigStore(client, time.Second), "", log)
	primary := postgres.NewUnavailableCategoryRepository(errors.New("dial tcp: connection refused"))
	svc := category.NewService(primary, fallback, nil, counter, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Categories: svc, JWTSecret: testJWTSecret})
	return app, mr
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", auth)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías salariales
// ──────────────────────────────────────────────────────────────────────────────

func TestSalaryCategories_CrearActualizarYListarSinPrimario(t *testing.T) {
	app, _ := buildCategoryApp(t, noAssignments{})
	auth := tokenForRole(t, apphttp.RoleHR)

	status, raw := doJSON(t, app, http.MethodPost, "/api/salary-categories", auth,
		map[string]any{"name": "Analista", "code": "a", "department": "Calidad"})
	require.Equal(t, http.StatusCreated, status, string(raw))

	var created dto.SalaryCategoryMutationResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "done_degraded", created.Phase)
	assert.True(t, created.Degraded)
	require.NotNil(t, created.Category)
	assert.Equal(t, "A", created.Category.Code)
	assert.Equal(t, "A|CALIDAD|ANALISTA", created.Category.Key)
	assert.True(t, created.Category.IsActive)

	status, raw = doJSON(t, app, http.MethodPut, "/api/salary-categories/A%7CCALIDAD%7CANALISTA", auth,
		map[string]any{"name": "Analista", "code": "A", "department": "Calidad", "level": 3})
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = doJSON(t, app, http.MethodGet, "/api/salary-categories", auth, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.SalaryCategoryListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 3, list.Items[0].Level)
	assert.True(t, list.Degraded)
	assert.Equal(t, 1, list.Merge.FromFallback)
}

func TestSalaryCategories_EmpleadoNoPuedeEscribir(t *testing.T) {
	app, _ := buildCategoryApp(t, noAssignments{})

	status, _ := doJSON(t, app, http.MethodPost, "/api/salary-categories", tokenForRole(t, apphttp.RoleEmployee),
		map[string]any{"name": "Analista", "code": "A", "department": "Calidad"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/salary-categories", tokenForRole(t, apphttp.RoleEmployee), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSalaryCategories_Errores(t *testing.T) {
	app, _ := buildCategoryApp(t, noAssignments{})
	auth := tokenForRole(t, apphttp.RoleAdmin)

	status, raw := doJSON(t, app, http.MethodPost, "/api/salary-categories", auth, map[string]any{"code": "X"})
	assert.Equal(t, http.StatusBadRequest, status)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/salary-categories/no-existe", auth, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = doJSON(t, app, http.MethodPost, "/api/salary-categories/restore", auth, nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NoError(t, json.Unmarshal(raw, &e))
	assert.Equal(t, "NO_BACKUP", e.Code)

	status, _ = doJSON(t, app, http.MethodPost, "/api/salary-categories/no-existe/move", auth, map[string]any{"direction": "left"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSalaryCategories_LimpiezaYRestauracion(t *testing.T) {
	app, mr := buildCategoryApp(t, noAssignments{})
	auth := tokenForRole(t, apphttp.RoleAdmin)
	require.NoError(t, mr.Set("salary_categories:"+testCompanyID,
		`[{"code":"A","name":"Analista","department":"Calidad"},{"code":"B","name":"Bodeguero","department":""}]`))

	status, raw := doJSON(t, app, http.MethodPost, "/api/salary-categories/cleanup", auth, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var cleanup dto.CleanupResponse
	require.NoError(t, json.Unmarshal(raw, &cleanup))
	require.Len(t, cleanup.Removed, 1)
	assert.Equal(t, "B", cleanup.Removed[0].Category.Code)
	assert.Equal(t, 1, cleanup.Kept)

	status, raw = doJSON(t, app, http.MethodGet, "/api/salary-categories/backup", auth, nil)
	require.Equal(t, http.StatusOK, status)
	var info dto.BackupInfoResponse
	require.NoError(t, json.Unmarshal(raw, &info))
	assert.Equal(t, 2, info.Size)

	status, raw = doJSON(t, app, http.MethodPost, "/api/salary-categories/restore", auth, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var restored dto.RestoreResponse
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, 2, restored.Total)
	assert.Equal(t, 2, restored.PrimaryFailures)
	assert.True(t, restored.Degraded)
}

func TestSalaryCategories_LimpiezaSinConteoNoElimina(t *testing.T) {
	app, mr := buildCategoryApp(t, nil)
	auth := tokenForRole(t, apphttp.RoleAdmin)
	live := `[{"code":"OP","name":"Operario","department":""}]`
	require.NoError(t, mr.Set("salary_categories:"+testCompanyID, live))

	status, raw := doJSON(t, app, http.MethodPost, "/api/salary-categories/cleanup", auth, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	assert.Equal(t, "STORES_UNAVAILABLE", e.Code)

	got, err := mr.Get("salary_categories:" + testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, live, got)
	assert.False(t, mr.Exists("salary_categories:"+testCompanyID+":backup"))
}
