package cardcache

import (
	"context"
	"maps"
	"strings"
	"time"

	"cardcache/internal/language"
	"cardcache/internal/logging"
	"cardcache/internal/tier"
)

// GetDetail returns the detail record of id, reading it from the store on
// first access. Absence is reported as ok=false with a nil error.
func (e *Engine) GetDetail(ctx context.Context, id string) (CardC, bool, error) {
	id = strings.TrimSpace(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" || !e.initialized {
		return CardC{}, false, nil
	}
	c, ok, err := e.t.cardC.Get(ctx, id)
	if err != nil || !ok {
		return CardC{}, false, err
	}
	return c.clone(), true, nil
}

// SetDetail stamps the record's fetch times, persists it and stamps the
// card's detail-view timestamp. The card must already have basic info.
func (e *Engine) SetDetail(ctx context.Context, detail CardC) error {
	id, err := normalizeID(detail.ID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if !e.t.cardA.Has(id) || !e.t.cardB.Has(id) {
		return ErrMissingBasicInfo
	}

	now := e.nowMillis()
	c := detail.clone()
	c.ID = id
	c.Lang = language.Normalize(detail.Lang)
	c.FetchedAt = now

	fresh := make(map[string]int64)
	if prev, ok, err := e.t.cardC.Get(ctx, id); err != nil {
		return err
	} else if ok {
		maps.Copy(fresh, prev.LangFetchedAt)
	}
	maps.Copy(fresh, c.LangFetchedAt)
	fresh[c.Lang] = now
	c.LangFetchedAt = fresh

	if err := e.t.cardC.Set(ctx, id, c); err != nil {
		return err
	}
	e.stampLocked(id, func(r *tier.Record) { r.LastShownDetail = now })
	e.logger.Debug("card detail stored",
		logging.String(logging.FieldEntityID, id),
		logging.String("lang", c.Lang),
	)
	return nil
}

// TouchDetail refreshes the fetch times of an existing detail record for
// lang (the record's own language when empty) without changing its content,
// and stamps the card's detail-view timestamp. A missing record is a no-op.
func (e *Engine) TouchDetail(ctx context.Context, id, lang string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}

	c, ok, err := e.t.cardC.Get(ctx, id)
	if err != nil || !ok {
		return err
	}
	now := e.nowMillis()
	c = c.clone()
	if strings.TrimSpace(lang) == "" {
		lang = c.Lang
	}
	lang = language.Normalize(lang)
	if c.LangFetchedAt == nil {
		c.LangFetchedAt = make(map[string]int64)
	}
	c.LangFetchedAt[lang] = now
	c.FetchedAt = now

	if err := e.t.cardC.Set(ctx, id, c); err != nil {
		return err
	}
	e.stampLocked(id, func(r *tier.Record) { r.LastShownDetail = now })
	return nil
}

// DetailFresh reports whether the detail record of id was fetched for lang
// within maxAge. It only consults records already in memory.
func (e *Engine) DetailFresh(id, lang string, maxAge time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.t.cardC.Peek(strings.TrimSpace(id))
	if !ok {
		return false
	}
	fetched, ok := c.LangFetchedAt[language.Normalize(lang)]
	if !ok {
		return false
	}
	return e.nowMillis()-fetched < maxAge.Milliseconds()
}
