package cardcache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cardcache/internal/kvstore"
	"cardcache/internal/logging"
	"cardcache/internal/tablestore"
	"cardcache/internal/tier"
)

// Defaults applied when no option overrides them.
const (
	DefaultTTL             = 24 * time.Hour
	DefaultCleanupInterval = 24 * time.Hour
	DefaultFAQExpiry       = tier.Month
)

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTTL sets the minimum age before an unforced SetEntity rewrites a card.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl >= 0 {
			e.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often Initialize runs the cleanup sweep.
func WithCleanupInterval(interval time.Duration) Option {
	return func(e *Engine) {
		if interval > 0 {
			e.cleanupInterval = interval
		}
	}
}

// WithFAQExpiry sets how long an unaccessed FAQ entry survives cleanup.
func WithFAQExpiry(expiry time.Duration) Option {
	return func(e *Engine) {
		if expiry > 0 {
			e.faqExpiry = expiry
		}
	}
}

// Engine is the tiered card cache. Every method is serialized behind one
// mutex, so a single Engine may be shared between goroutines.
type Engine struct {
	mu     sync.Mutex
	store  kvstore.Store
	logger *slog.Logger
	now    func() time.Time

	ttl             time.Duration
	cleanupInterval time.Duration
	faqExpiry       time.Duration

	initialized bool
	startSweep  *CleanupReport
	t           tables
	loggedKinds map[Kind]struct{}
}

// New constructs an engine on top of store. Call Initialize before use.
func New(store kvstore.Store, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		logger:          logging.NewComponentLogger(logger, "cardcache"),
		now:             time.Now,
		ttl:             DefaultTTL,
		cleanupInterval: DefaultCleanupInterval,
		faqExpiry:       DefaultFAQExpiry,
		loggedKinds:     make(map[Kind]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.t = e.newTables()
	return e
}

// Initialize loads every bulk table and runs the cleanup sweep when the last
// one is older than the cleanup interval. A second call is a no-op. Load
// failures are returned; a failed sweep is logged and does not fail
// initialization.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}
	started := e.now()
	if err := tablestore.LoadAll(ctx, e.store, e.logger, e.t.bulk()...); err != nil {
		return fmt.Errorf("initialize card cache: %w", err)
	}
	e.t.resetLazy()
	e.initialized = true

	e.logger.Info("card cache loaded",
		logging.Int("cards", e.t.cardA.Len()),
		logging.Int("recency_records", e.t.recency.Len()),
		logging.Int("products", e.t.productA.Len()),
		logging.Int("faqs", e.t.faqA.Len()),
		logging.Duration("elapsed", e.now().Sub(started)),
	)

	if !e.cleanupDue(e.now()) {
		return nil
	}
	report, err := e.cleanupLocked(ctx)
	if err != nil {
		logging.WarnWithContext(e.logger, "cleanup sweep failed during initialization", "cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the sweep is retried on the next start; run `cardcache cleanup --force` to retry now"),
			logging.String(logging.FieldImpact, "stale cache entries are kept until the next successful sweep"),
		)
		return nil
	}
	e.startSweep = &report
	return nil
}

// StartupSweep returns the report of the sweep Initialize ran, if any.
func (e *Engine) StartupSweep() (CleanupReport, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startSweep == nil {
		return CleanupReport{}, false
	}
	return *e.startSweep, true
}

// Initialized reports whether Initialize has completed.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// SaveAll writes every bulk table back to the store.
func (e *Engine) SaveAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	return e.saveLocked(ctx)
}

func (e *Engine) saveLocked(ctx context.Context) error {
	if err := tablestore.SaveAll(ctx, e.store, e.t.bulk()...); err != nil {
		return fmt.Errorf("save card cache: %w", err)
	}
	return nil
}

// ClearAll deletes every persisted key and empties every table.
func (e *Engine) ClearAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.RemoveAll(ctx); err != nil {
		return fmt.Errorf("clear card cache: %w", err)
	}
	for _, table := range e.t.bulk() {
		table.Reset()
	}
	e.t.resetLazy()
	e.logger.Info("card cache cleared")
	return nil
}

// Stats reports record counts per table. Lazy tables count only records
// currently held in memory.
type Stats struct {
	RecencyRecords    int
	RecentCollections int
	CardA             int
	CardB             int
	CardCLoaded       int
	ProductA          int
	ProductBLoaded    int
	FAQA              int
	FAQBLoaded        int
	LastCleanup       time.Time
	Initialized       bool
}

// TableCount is one row of Stats.Tables.
type TableCount struct {
	Name  string
	Count int
	Lazy  bool
}

// Tables returns the counts in schema order.
func (s Stats) Tables() []TableCount {
	return []TableCount{
		{Name: tableRecency, Count: s.RecencyRecords},
		{Name: tableRecent, Count: s.RecentCollections},
		{Name: tableCardA, Count: s.CardA},
		{Name: tableCardB, Count: s.CardB},
		{Name: tableCardC, Count: s.CardCLoaded, Lazy: true},
		{Name: tableProductA, Count: s.ProductA},
		{Name: tableProductB, Count: s.ProductBLoaded, Lazy: true},
		{Name: tableFAQA, Count: s.FAQA},
		{Name: tableFAQB, Count: s.FAQBLoaded, Lazy: true},
	}
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := Stats{
		RecencyRecords:    e.t.recency.Len(),
		RecentCollections: len(e.t.recent.Get()),
		CardA:             e.t.cardA.Len(),
		CardB:             e.t.cardB.Len(),
		CardCLoaded:       e.t.cardC.Loaded(),
		ProductA:          e.t.productA.Len(),
		ProductBLoaded:    e.t.productB.Loaded(),
		FAQA:              e.t.faqA.Len(),
		FAQBLoaded:        e.t.faqB.Loaded(),
		Initialized:       e.initialized,
	}
	if stamp := e.t.lastCleanup.Get(); stamp > 0 {
		stats.LastCleanup = time.UnixMilli(stamp)
	}
	return stats
}

func (e *Engine) nowMillis() int64 {
	return e.now().UnixMilli()
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidID
	}
	return id, nil
}
