package cardcache

import (
	"maps"
	"slices"
	"strings"

	"cardcache/internal/logging"
)

// Reconstruct assembles the full entity for id from its basic records. It
// returns false unless both records are present. Cards of an unrecognized
// kind come back with no attribute block.
func (e *Engine) Reconstruct(id string) (Entity, bool) {
	id = strings.TrimSpace(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reconstructLocked(id)
}

// IDs returns the ids of every cached card in ascending order.
func (e *Engine) IDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.cardA.Keys()
}

// Entities reconstructs every cached card. Cards missing a basic record
// are left out.
func (e *Engine) Entities() map[string]Entity {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]Entity, e.t.cardA.Len())
	for _, id := range e.t.cardA.Keys() {
		if entity, ok := e.reconstructLocked(id); ok {
			out[id] = entity
		}
	}
	return out
}

func (e *Engine) reconstructLocked(id string) (Entity, bool) {
	a, okA := e.t.cardA.Get(id)
	b, okB := e.t.cardB.Get(id)
	if !okA || !okB {
		return Entity{}, false
	}

	entity := Entity{
		ID:         id,
		Lang:       a.Lang,
		Name:       a.Name(),
		Images:     slices.Clone(a.Images[a.Lang]),
		Kind:       b.Kind,
		Names:      maps.Clone(a.Names),
		LangImages: cloneLangImages(a.Images),
		FetchedAt:  a.FetchedAt,
	}
	switch b.Kind {
	case KindMonster:
		entity.Monster = cloneMonster(b.Monster)
		if entity.Monster == nil {
			entity.Monster = &MonsterFields{}
		}
	case KindSpell, KindTrap:
		entity.Effect = cloneEffect(b.Effect)
		if entity.Effect == nil {
			entity.Effect = &EffectFields{}
		}
	default:
		if _, seen := e.loggedKinds[b.Kind]; !seen {
			e.loggedKinds[b.Kind] = struct{}{}
			e.logger.Debug("unrecognized card kind; reconstructing without attributes",
				logging.String(logging.FieldEntityID, id),
				logging.String("kind", string(b.Kind)),
			)
		}
	}
	return entity, true
}
