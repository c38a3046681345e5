package category_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/category"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

func ordered(id, name string, order int, dept string) *entity.SalaryCategory {
	c := cat(id, id, name, dept)
	c.Order = order
	return c
}

func ids(list []*entity.SalaryCategory) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestPlanMove_ExtremosSinCambios(t *testing.T) {
	all := []*entity.SalaryCategory{
		ordered("a", "Analista", 1, "CALIDAD"),
		ordered("b", "Bodeguero", 2, "CALIDAD"),
		ordered("c", "Coordinador", 3, "CALIDAD"),
	}

	up, err := category.PlanMove(all, "a", category.Up)
	require.NoError(t, err)
	assert.True(t, up.NoOp)
	assert.Empty(t, up.Changed)
	assert.Equal(t, []string{"a", "b", "c"}, ids(up.Ordered))

	down, err := category.PlanMove(all, "c", category.Down)
	require.NoError(t, err)
	assert.True(t, down.NoOp)
	assert.Equal(t, []string{"a", "b", "c"}, ids(down.Ordered))
}

func TestPlanMove_IntercambiaConVecino(t *testing.T) {
	all := []*entity.SalaryCategory{
		ordered("a", "Analista", 1, "CALIDAD"),
		ordered("b", "Bodeguero", 2, "CALIDAD"),
		ordered("c", "Coordinador", 3, "CALIDAD"),
		ordered("x", "Externo", 1, "VENTAS"),
	}

	plan, err := category.PlanMove(all, "a", category.Down)
	require.NoError(t, err)

	assert.False(t, plan.NoOp)
	assert.Equal(t, []string{"b", "a", "c"}, ids(plan.Ordered), "solo hermanos del mismo departamento")
	require.Len(t, plan.Changed, 2)
	assert.Equal(t, 1, all[0].Order, "no modifica la entrada")
}

func TestPlanMove_RenumeraEmpates(t *testing.T) {
	all := []*entity.SalaryCategory{
		ordered("a", "Analista", 0, "CALIDAD"),
		ordered("b", "Bodeguero", 0, "CALIDAD"),
		ordered("c", "Coordinador", 0, "CALIDAD"),
	}

	plan, err := category.PlanMove(all, "b", category.Up)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, ids(plan.Ordered))
	assert.Len(t, plan.Changed, 3)
	for i, c := range plan.Ordered {
		assert.Equal(t, i+1, c.Order)
	}
}

func TestPlanMove_ClaveInexistente(t *testing.T) {
	_, err := category.PlanMove(nil, "nada", category.Up)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestParseDirection(t *testing.T) {
	d, err := category.ParseDirection(" UP ")
	require.NoError(t, err)
	assert.Equal(t, category.Up, d)

	_, err = category.ParseDirection("left")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate_CamposObligatorios(t *testing.T) {
	err := category.Validate(&entity.SalaryCategory{RequiredExperienceYears: -1})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name", "code", "department", "required_experience_years"}, verr.Fields)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.NoError(t, category.Validate(cat("", "A", "Analista", "CALIDAD")))
}
