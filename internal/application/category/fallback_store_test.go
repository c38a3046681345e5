package category

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Talento-api/internal/domain/entity"
	"github.com/jhoicas/Talento-api/pkg/logger"
)

func newTestFallback() (*FallbackStore, *memStore) {
	store := newMemStore()
	f := NewFallbackStore(store, "", logger.Nop())
	f.now = func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC) }
	return f, store
}

func TestFallbackStore_LeeFormatosAntiguos(t *testing.T) {
	cases := map[string]string{
		"arreglo":    `[{"code":"A","name":"Analista","department":"Calidad"}]`,
		"categories": `{"categories":[{"code":"A","name":"Analista","department":"Calidad"}]}`,
		"data":       `{"data":[{"code":"A","name":"Analista","department":"Calidad"}]}`,
		"value":      `{"value":"[{\"code\":\"A\",\"name\":\"Analista\",\"department\":\"Calidad\"}]"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f, store := newTestFallback()
			store.data["salary_categories:c1"] = raw

			list, err := f.ReadAll(context.Background(), testCompany)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "A", list[0].Code)
			assert.Equal(t, "Calidad", list[0].Department)
		})
	}
}

func TestFallbackStore_ColeccionCorruptaEsVacia(t *testing.T) {
	f, store := newTestFallback()
	store.data["salary_categories:c1"] = `{"categories": [ no es json`

	list, err := f.ReadAll(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFallbackStore_AusenteEsVacia(t *testing.T) {
	f, _ := newTestFallback()

	list, err := f.ReadAll(context.Background(), testCompany)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFallbackStore_FalloDelAlmacenEsError(t *testing.T) {
	f, store := newTestFallback()
	store.getDown = true

	_, err := f.ReadAll(context.Background(), testCompany)
	assert.Error(t, err)
}

func TestFallbackStore_WriteAllFormatoActual(t *testing.T) {
	f, store := newTestFallback()
	c := rec("", "A", "Analista", "Calidad")
	c.SalaryRange = entity.SalaryRange{
		Min:    decimal.NewFromInt(1500000),
		Target: decimal.NewFromInt(1800000),
		Max:    decimal.RequireFromString("2000000.50"),
	}

	require.NoError(t, f.WriteAll(context.Background(), testCompany, []*entity.SalaryCategory{c, nil}))

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(store.data["salary_categories:c1"]), &payload))
	assert.JSONEq(t, `1`, string(payload["version"]))
	assert.JSONEq(t, `"2026-05-04T09:00:00Z"`, string(payload["updated_at"]))

	list, err := f.ReadAll(context.Background(), testCompany)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, c.SalaryRange.Max.Equal(list[0].SalaryRange.Max))
}

func TestFallbackStore_BackupVacioNoSobrescribe(t *testing.T) {
	ctx := context.Background()
	f, store := newTestFallback()
	require.NoError(t, f.WriteAll(ctx, testCompany, []*entity.SalaryCategory{rec("", "A", "Analista", "Calidad")}))

	snap, err := f.Backup(ctx, testCompany)
	require.NoError(t, err)
	assert.Len(t, snap.Data, 1)
	before := store.data["salary_categories:c1:backup"]

	require.NoError(t, f.WriteAll(ctx, testCompany, nil))
	_, err = f.Backup(ctx, testCompany)
	require.NoError(t, err)
	assert.Equal(t, before, store.data["salary_categories:c1:backup"])

	prev, err := f.ReadBackup(ctx, testCompany)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Len(t, prev.Data, 1)
}

func TestFallbackStore_SinCopiaDeSeguridad(t *testing.T) {
	f, store := newTestFallback()

	snap, err := f.ReadBackup(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Nil(t, snap)

	store.data["salary_categories:c1:backup"] = "{roto"
	snap, err = f.ReadBackup(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFallbackStore_PrefijoPropio(t *testing.T) {
	store := newMemStore()
	f := NewFallbackStore(store, "talento", logger.Nop())

	require.NoError(t, f.WriteAll(context.Background(), "c9", nil))
	_, ok := store.data["talento:c9"]
	assert.True(t, ok)
}
