package category

import (
	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// Tier nivel de almacenamiento de origen de un registro.
type Tier string

const (
	TierPrimary  Tier = "primary"
	TierFallback Tier = "fallback"
)

// MergeReport resumen de una fusión.
type MergeReport struct {
	FromPrimary  int `json:"from_primary"`
	FromFallback int `json:"from_fallback"` // registros que solo existen en respaldo
	Overridden   int `json:"overridden"`    // copias de respaldo reemplazadas por el primario
	// StaleOverrides claves cuya copia de respaldo tenía UpdatedAt posterior a la del primario.
	// El primario gana igualmente; se reporta para que quede registro.
	StaleOverrides []string `json:"stale_overrides,omitempty"`
}

type slot struct {
	rec  *entity.SalaryCategory
	tier Tier
}

// orderedMap mapa por clave compuesta que conserva el orden de primera inserción.
type orderedMap struct {
	keys  []string
	slots map[string]*slot
}

func newOrderedMap(size int) *orderedMap {
	return &orderedMap{keys: make([]string, 0, size), slots: make(map[string]*slot, size)}
}

func (m *orderedMap) put(key string, rec *entity.SalaryCategory, tier Tier) {
	if s, ok := m.slots[key]; ok {
		s.rec, s.tier = rec, tier
		return
	}
	m.keys = append(m.keys, key)
	m.slots[key] = &slot{rec: rec, tier: tier}
}

// rekey sustituye la entrada de oldKey por newKey en la misma posición.
func (m *orderedMap) rekey(oldKey, newKey string, rec *entity.SalaryCategory, tier Tier) {
	for i, k := range m.keys {
		if k == oldKey {
			m.keys[i] = newKey
			break
		}
	}
	delete(m.slots, oldKey)
	m.slots[newKey] = &slot{rec: rec, tier: tier}
}

func (m *orderedMap) remove(key string) {
	if _, ok := m.slots[key]; !ok {
		return
	}
	delete(m.slots, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			return
		}
	}
}

func (m *orderedMap) values() []*entity.SalaryCategory {
	out := make([]*entity.SalaryCategory, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.slots[k].rec)
	}
	return out
}

// isGhostOf informa si g (sin ID) es una copia sin sincronizar de p: mismo contenido,
// o mismo código|nombre sin departamento.
func isGhostOf(g, p *entity.SalaryCategory) bool {
	if g.ID != "" {
		return false
	}
	return ContentKey(g) == ContentKey(p) || (!HasDepartment(g) && BaseKey(g) == BaseKey(p))
}

// ghostsOf claves de respaldo que son copias sin sincronizar de p.
func (m *orderedMap) ghostsOf(p *entity.SalaryCategory) []string {
	var ghosts []string
	for _, k := range m.keys {
		s := m.slots[k]
		if s.tier == TierFallback && isGhostOf(s.rec, p) {
			ghosts = append(ghosts, k)
		}
	}
	return ghosts
}

// Merge une ambos niveles por clave compuesta; el primario gana en colisión y los registros
// que solo están en respaldo se conservan.
func Merge(fallback, primary []*entity.SalaryCategory) []*entity.SalaryCategory {
	out, _ := MergeWithReport(fallback, primary)
	return out
}

// MergeWithReport igual que Merge, devolviendo además el resumen de la fusión.
func MergeWithReport(fallback, primary []*entity.SalaryCategory) ([]*entity.SalaryCategory, MergeReport) {
	m := newOrderedMap(len(fallback) + len(primary))
	for _, f := range fallback {
		if f == nil {
			continue
		}
		m.put(CompositeKey(f), f.Clone(), TierFallback)
	}

	var rep MergeReport
	for _, p := range primary {
		if p == nil {
			continue
		}
		rep.FromPrimary++
		key := CompositeKey(p)
		rec := p.Clone()
		ghosts := m.ghostsOf(p)
		switch s, ok := m.slots[key]; {
		case ok:
			if s.tier == TierFallback {
				rep.Overridden++
				if s.rec.UpdatedAt.After(p.UpdatedAt) {
					rep.StaleOverrides = append(rep.StaleOverrides, key)
				}
			}
			m.put(key, rec, TierPrimary)
		case len(ghosts) > 0:
			rep.Overridden++
			m.rekey(ghosts[0], key, rec, TierPrimary)
			ghosts = ghosts[1:]
		default:
			m.put(key, rec, TierPrimary)
		}
		for _, g := range ghosts {
			if g != key {
				rep.Overridden++
				m.remove(g)
			}
		}
	}

	for _, k := range m.keys {
		if m.slots[k].tier == TierFallback {
			rep.FromFallback++
		}
	}
	return m.values(), rep
}

// AdoptIDs devuelve copias de records en las que cada registro sin ID que es copia sin
// sincronizar de un registro de known toma su ID. Así una restauración repetida sobrescribe
// la categoría existente en lugar de duplicarla.
func AdoptIDs(records, known []*entity.SalaryCategory) []*entity.SalaryCategory {
	out := make([]*entity.SalaryCategory, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		c := r.Clone()
		if c.ID == "" {
			for _, k := range known {
				if k != nil && k.ID != "" && isGhostOf(c, k) {
					c.ID = k.ID
					break
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// UnionByKey une dos colecciones por clave compuesta; incoming sobrescribe a current.
func UnionByKey(current, incoming []*entity.SalaryCategory) []*entity.SalaryCategory {
	m := newOrderedMap(len(current) + len(incoming))
	for _, c := range current {
		if c != nil {
			m.put(CompositeKey(c), c.Clone(), TierFallback)
		}
	}
	for _, c := range incoming {
		if c != nil {
			m.put(CompositeKey(c), c.Clone(), TierFallback)
		}
	}
	return m.values()
}

// Upsert reemplaza en list el registro con la misma clave que rec (o cualquiera de aliases)
// conservando su posición; si no existe lo añade al final.
func Upsert(list []*entity.SalaryCategory, rec *entity.SalaryCategory, aliases ...string) []*entity.SalaryCategory {
	match := map[string]bool{CompositeKey(rec): true}
	for _, a := range aliases {
		if a != "" {
			match[a] = true
		}
	}
	out := make([]*entity.SalaryCategory, 0, len(list)+1)
	placed := false
	for _, c := range list {
		if c == nil {
			continue
		}
		if match[CompositeKey(c)] || (rec.ID != "" && c.ID == rec.ID) {
			if !placed {
				out = append(out, rec.Clone())
				placed = true
			}
			continue
		}
		out = append(out, c)
	}
	if !placed {
		out = append(out, rec.Clone())
	}
	return out
}

// RemoveByKey quita de list los registros cuya clave compuesta o ID coincide con key.
func RemoveByKey(list []*entity.SalaryCategory, key string) ([]*entity.SalaryCategory, int) {
	out := make([]*entity.SalaryCategory, 0, len(list))
	removed := 0
	for _, c := range list {
		if c == nil {
			continue
		}
		if CompositeKey(c) == key || (c.ID != "" && c.ID == key) {
			removed++
			continue
		}
		out = append(out, c)
	}
	return out, removed
}

// Find busca un registro por clave compuesta.
func Find(list []*entity.SalaryCategory, key string) *entity.SalaryCategory {
	for _, c := range list {
		if c != nil && CompositeKey(c) == key {
			return c
		}
	}
	return nil
}
