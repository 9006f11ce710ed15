package cardcache

import (
	"context"
	"slices"
	"strings"

	"cardcache/internal/language"
)

// SetFAQ stores the summary record of an FAQ entry and marks it accessed.
func (e *Engine) SetFAQ(faq FAQA) error {
	id, err := normalizeID(faq.ID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	now := e.nowMillis()
	faq.ID = id
	faq.Lang = language.Normalize(faq.Lang)
	faq.CardIDs = cleanIDs(faq.CardIDs)
	faq.FetchedAt = now
	faq.LastAccessed = now
	e.t.faqA.Set(id, faq)
	return nil
}

// FAQ returns the summary record of an FAQ entry and marks it accessed.
func (e *Engine) FAQ(id string) (FAQA, bool) {
	id = strings.TrimSpace(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	faq, ok := e.touchFAQLocked(id)
	if !ok {
		return FAQA{}, false
	}
	faq.CardIDs = slices.Clone(faq.CardIDs)
	return faq, true
}

// FAQIDs returns every cached FAQ id in ascending order.
func (e *Engine) FAQIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.faqA.Keys()
}

// FAQDetail returns the answer of an FAQ entry, reading it from the store
// on first access. A hit marks the entry accessed.
func (e *Engine) FAQDetail(ctx context.Context, id string) (FAQB, bool, error) {
	id = strings.TrimSpace(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" || !e.initialized {
		return FAQB{}, false, nil
	}
	answer, ok, err := e.t.faqB.Get(ctx, id)
	if err != nil || !ok {
		return FAQB{}, false, err
	}
	e.touchFAQLocked(id)
	return answer, true, nil
}

// SetFAQDetail persists the answer of an FAQ entry. The summary record must
// exist.
func (e *Engine) SetFAQDetail(ctx context.Context, detail FAQB) error {
	id, err := normalizeID(detail.ID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if !e.t.faqA.Has(id) {
		return ErrMissingBasicInfo
	}
	detail.ID = id
	detail.Lang = language.Normalize(detail.Lang)
	detail.FetchedAt = e.nowMillis()
	if err := e.t.faqB.Set(ctx, id, detail); err != nil {
		return err
	}
	e.touchFAQLocked(id)
	return nil
}

func (e *Engine) touchFAQLocked(id string) (FAQA, bool) {
	faq, ok := e.t.faqA.Get(id)
	if !ok {
		return FAQA{}, false
	}
	faq.LastAccessed = e.nowMillis()
	e.t.faqA.Set(id, faq)
	return faq, true
}
