package category

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/Talento-api/internal/domain"
	"github.com/jhoicas/Talento-api/internal/domain/entity"
	"github.com/jhoicas/Talento-api/pkg/logger"
)

const testCompany = "c1"

// fakePrimary almacén primario en memoria; con down=true toda llamada falla como en producción.
type fakePrimary struct {
	mu     sync.Mutex
	rows   []*entity.SalaryCategory
	down   bool
	writes int
	lists  int
}

func (p *fakePrimary) setDown(v bool) {
	p.mu.Lock()
	p.down = v
	p.mu.Unlock()
}

func (p *fakePrimary) unavailable(op string) error {
	return fmt.Errorf("%w: %s: conexión rechazada", domain.ErrBackendUnavailable, op)
}

func (p *fakePrimary) List(_ context.Context, companyID, _ string) ([]*entity.SalaryCategory, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists++
	if p.down {
		return nil, p.unavailable("list")
	}
	var out []*entity.SalaryCategory
	for _, r := range p.rows {
		if r.CompanyID == companyID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (p *fakePrimary) Create(_ context.Context, c *entity.SalaryCategory) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes++
	if p.down {
		return p.unavailable("create")
	}
	p.rows = append(p.rows, c.Clone())
	return nil
}

func (p *fakePrimary) Update(_ context.Context, c *entity.SalaryCategory) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes++
	if p.down {
		return p.unavailable("update")
	}
	for i, r := range p.rows {
		if r.ID == c.ID {
			p.rows[i] = c.Clone()
			return nil
		}
	}
	p.rows = append(p.rows, c.Clone())
	return nil
}

func (p *fakePrimary) Delete(_ context.Context, companyID, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes++
	if p.down {
		return p.unavailable("delete")
	}
	for i, r := range p.rows {
		if r.ID == id && r.CompanyID == companyID {
			p.rows = append(p.rows[:i], p.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (p *fakePrimary) snapshot() []*entity.SalaryCategory {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*entity.SalaryCategory, 0, len(p.rows))
	for _, r := range p.rows {
		out = append(out, r.Clone())
	}
	return out
}

// memStore ConfigStore en memoria.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	getDown bool
	setDown bool
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getDown {
		return "", fmt.Errorf("config store caído")
	}
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setDown {
		return fmt.Errorf("config store caído")
	}
	m.data[key] = value
	return nil
}

type fakeDepartments []*entity.Department

func (d fakeDepartments) List(context.Context, string) ([]*entity.Department, error) {
	return d, nil
}

type fakeAssignments map[string]int

func (a fakeAssignments) CountByCategory(context.Context, string) (map[string]int, error) {
	return a, nil
}

var (
	deptCalidad    = &entity.Department{ID: "d1", CompanyID: testCompany, Name: "Calidad"}
	deptProduccion = &entity.Department{ID: "d2", CompanyID: testCompany, Name: "Producción"}
)

type fixture struct {
	svc      *Service
	primary  *fakePrimary
	store    *memStore
	fallback *FallbackStore
}

func newFixture(t *testing.T, counts fakeAssignments) *fixture {
	t.Helper()
	primary := &fakePrimary{}
	store := newMemStore()
	log := logger.Nop()
	fallback := NewFallbackStore(store, "", log)
	clock := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	fallback.now = func() time.Time { return clock }

	svc := NewService(primary, fallback, fakeDepartments{deptCalidad, deptProduccion}, counts, log)
	svc.now = func() time.Time { return clock }
	seq := 0
	svc.newID = func() string {
		seq++
		return "id-" + strconv.Itoa(seq)
	}
	return &fixture{svc: svc, primary: primary, store: store, fallback: fallback}
}

func (f *fixture) seedFallback(t *testing.T, records ...*entity.SalaryCategory) {
	t.Helper()
	if err := f.fallback.WriteAll(context.Background(), testCompany, records); err != nil {
		t.Fatalf("seed fallback: %v", err)
	}
}

func (f *fixture) fallbackRecords(t *testing.T) []*entity.SalaryCategory {
	t.Helper()
	list, err := f.fallback.ReadAll(context.Background(), testCompany)
	if err != nil {
		t.Fatalf("read fallback: %v", err)
	}
	return list
}

func rec(id, code, name, dept string) *entity.SalaryCategory {
	return &entity.SalaryCategory{ID: id, CompanyID: testCompany, Code: code, Name: name, Department: dept, Level: 1, IsActive: true}
}
