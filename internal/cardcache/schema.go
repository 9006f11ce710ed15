package cardcache

import (
	"cardcache/internal/tablestore"
	"cardcache/internal/tier"
)

// Persistence keys. Lazy tables append the entity id to their prefix.
const (
	keyRecency       = "cardcache/recency"
	keyRecent        = "cardcache/recent"
	keyCardA         = "cardcache/card_a"
	keyCardB         = "cardcache/card_b"
	prefixCardC      = "cardcache/card_c/"
	keyProductA      = "cardcache/product_a"
	prefixProductB   = "cardcache/product_b/"
	keyFAQA          = "cardcache/faq_a"
	prefixFAQB       = "cardcache/faq_b/"
	keyLastCleanup   = "cardcache/meta/last_cleanup"
	tableRecency     = "recency"
	tableRecent      = "recent_collections"
	tableCardA       = "card_a"
	tableCardB       = "card_b"
	tableCardC       = "card_c"
	tableProductA    = "product_a"
	tableProductB    = "product_b"
	tableFAQA        = "faq_a"
	tableFAQB        = "faq_b"
	tableLastCleanup = "last_cleanup"
)

type tables struct {
	recency     *tablestore.BulkTable[string, tier.Record]
	recent      *tablestore.Slot[tier.List]
	cardA       *tablestore.BulkTable[string, CardA]
	cardB       *tablestore.BulkTable[string, CardB]
	cardC       *tablestore.LazyTable[CardC]
	productA    *tablestore.BulkTable[string, ProductA]
	productB    *tablestore.LazyTable[ProductB]
	faqA        *tablestore.BulkTable[string, FAQA]
	faqB        *tablestore.LazyTable[FAQB]
	lastCleanup *tablestore.Slot[int64]
}

func (e *Engine) newTables() tables {
	return tables{
		recency:     tablestore.NewBulkTable[string, tier.Record](tableRecency, keyRecency),
		recent:      tablestore.NewSlot[tier.List](tableRecent, keyRecent),
		cardA:       tablestore.NewBulkTable[string, CardA](tableCardA, keyCardA),
		cardB:       tablestore.NewBulkTable[string, CardB](tableCardB, keyCardB),
		cardC:       tablestore.NewLazyTable[CardC](tableCardC, prefixCardC, e.store, e.logger),
		productA:    tablestore.NewBulkTable[string, ProductA](tableProductA, keyProductA),
		productB:    tablestore.NewLazyTable[ProductB](tableProductB, prefixProductB, e.store, e.logger),
		faqA:        tablestore.NewBulkTable[string, FAQA](tableFAQA, keyFAQA),
		faqB:        tablestore.NewLazyTable[FAQB](tableFAQB, prefixFAQB, e.store, e.logger),
		lastCleanup: tablestore.NewSlot[int64](tableLastCleanup, keyLastCleanup),
	}
}

// bulk lists every always-loaded table in a fixed order.
func (t tables) bulk() []tablestore.Bulk {
	return []tablestore.Bulk{
		t.recency,
		t.recent,
		t.cardA,
		t.cardB,
		t.productA,
		t.faqA,
		t.lastCleanup,
	}
}

func (t tables) resetLazy() {
	t.cardC.Reset()
	t.productB.Reset()
	t.faqB.Reset()
}
