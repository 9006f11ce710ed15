package cardcache

import (
	"maps"
	"slices"
	"strings"

	"cardcache/internal/language"
	"cardcache/internal/logging"
	"cardcache/internal/tier"
)

// SetEntity stores a freshly fetched card. The write is skipped, returning
// false, when a card record already exists, force is false, the record is
// younger than the TTL and the entity brings no image variant that the
// record lacks for the entity's language. Otherwise both basic records are
// rebuilt, names and images are merged per language, the card's search
// timestamp is stamped and true is returned.
//
// Only image variants bypass the TTL. Other corrections, such as a changed
// name, need force.
func (e *Engine) SetEntity(entity Entity, force bool) (bool, error) {
	id, err := normalizeID(entity.ID)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return false, ErrNotInitialized
	}

	now := e.nowMillis()
	lang := language.Normalize(entity.Lang)
	existing, exists := e.t.cardA.Get(id)

	if exists && !force && now-existing.FetchedAt < e.ttl.Milliseconds() &&
		!hasNewVariant(existing.Images[lang], entity.Images) {
		e.logger.Debug("card write skipped; cached record is fresh",
			logging.String(logging.FieldEntityID, id),
			logging.String("lang", lang),
		)
		return false, nil
	}

	var prev *CardA
	if exists {
		prev = &existing
	}
	e.t.cardA.Set(id, mergeCardA(prev, id, lang, entity, now))
	e.t.cardB.Set(id, e.buildCardB(id, entity, now))
	e.stampLocked(id, func(r *tier.Record) { r.LastSearched = now })

	e.logger.Debug("card stored",
		logging.String(logging.FieldEntityID, id),
		logging.String("lang", lang),
		logging.Bool("forced", force),
		logging.Int("images", len(entity.Images)),
	)
	return true, nil
}

// BasicInfo returns copies of the always-loaded records of a card.
func (e *Engine) BasicInfo(id string) BasicInfo {
	id = strings.TrimSpace(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	var info BasicInfo
	if a, ok := e.t.cardA.Get(id); ok {
		a = a.clone()
		info.A = &a
	}
	if b, ok := e.t.cardB.Get(id); ok {
		b = b.clone()
		info.B = &b
	}
	return info
}

func hasNewVariant(existing, incoming []Image) bool {
	known := make(map[string]struct{}, len(existing))
	for _, img := range existing {
		known[img.VariantID] = struct{}{}
	}
	for _, img := range incoming {
		if img.VariantID == "" {
			continue
		}
		if _, ok := known[img.VariantID]; !ok {
			return true
		}
	}
	return false
}

// mergeCardA adds the entity's language to prev. Other languages are kept
// untouched; within the entity's language images are unioned by variant id
// and an incoming hash replaces the stored one.
func mergeCardA(prev *CardA, id, lang string, entity Entity, now int64) CardA {
	a := CardA{
		ID:        id,
		Lang:      lang,
		Names:     make(map[string]string),
		Images:    make(map[string][]Image),
		FetchedAt: now,
	}
	if prev != nil {
		maps.Copy(a.Names, prev.Names)
		a.Images = cloneLangImages(prev.Images)
		if a.Images == nil {
			a.Images = make(map[string][]Image)
		}
	}
	a.Names[lang] = strings.TrimSpace(entity.Name)
	a.Images[lang] = unionImages(a.Images[lang], entity.Images)
	return a
}

func unionImages(existing, incoming []Image) []Image {
	out := make([]Image, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))
	for _, img := range slices.Concat(existing, incoming) {
		if img.VariantID == "" {
			continue
		}
		if i, ok := index[img.VariantID]; ok {
			if img.Hash != "" {
				out[i].Hash = img.Hash
			}
			continue
		}
		index[img.VariantID] = len(out)
		out = append(out, img)
	}
	return out
}

func (e *Engine) buildCardB(id string, entity Entity, now int64) CardB {
	kind := Kind(strings.ToLower(strings.TrimSpace(string(entity.Kind))))
	b := CardB{ID: id, Kind: kind, FetchedAt: now}
	switch kind {
	case KindMonster:
		if entity.Monster != nil {
			b.Monster = cloneMonster(entity.Monster)
		} else {
			b.Monster = &MonsterFields{}
		}
	case KindSpell, KindTrap:
		if entity.Effect != nil {
			b.Effect = cloneEffect(entity.Effect)
		} else {
			b.Effect = &EffectFields{}
		}
	default:
		e.logger.Debug("card kind not recognized; storing without attributes",
			logging.String(logging.FieldEntityID, id),
			logging.String("kind", string(kind)),
		)
	}
	return b
}
