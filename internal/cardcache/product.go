package cardcache

import (
	"context"
	"slices"
	"strings"

	"cardcache/internal/language"
)

// SetProduct stores the summary record of a product pack.
func (e *Engine) SetProduct(product ProductA) error {
	id, err := normalizeID(product.ID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	product.ID = id
	product.Lang = language.Normalize(product.Lang)
	product.FetchedAt = e.nowMillis()
	e.t.productA.Set(id, product)
	return nil
}

// Product returns the summary record of a product pack.
func (e *Engine) Product(id string) (ProductA, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.productA.Get(strings.TrimSpace(id))
}

// ProductIDs returns every cached product id in ascending order.
func (e *Engine) ProductIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.productA.Keys()
}

// ProductDetail returns the card list of a product pack, reading it from
// the store on first access.
func (e *Engine) ProductDetail(ctx context.Context, id string) (ProductB, bool, error) {
	id = strings.TrimSpace(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" || !e.initialized {
		return ProductB{}, false, nil
	}
	p, ok, err := e.t.productB.Get(ctx, id)
	if err != nil || !ok {
		return ProductB{}, false, err
	}
	p.CardIDs = slices.Clone(p.CardIDs)
	return p, true, nil
}

// SetProductDetail persists the card list of a product pack. The summary
// record must exist.
func (e *Engine) SetProductDetail(ctx context.Context, detail ProductB) error {
	id, err := normalizeID(detail.ID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if !e.t.productA.Has(id) {
		return ErrMissingBasicInfo
	}
	detail.ID = id
	detail.Lang = language.Normalize(detail.Lang)
	detail.CardIDs = cleanIDs(detail.CardIDs)
	detail.FetchedAt = e.nowMillis()
	return e.t.productB.Set(ctx, id, detail)
}
