package cardcache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cardcache/internal/logging"
)

// CleanupReport summarizes one sweep.
type CleanupReport struct {
	SweepID        string
	StartedAt      time.Time
	Duration       time.Duration
	RecencyDropped int
	DetailsDropped int
	FAQsDropped    int
}

// Cleanup runs the sweep now regardless of when the last one ran.
//
// Recency records at tier 0 are dropped. Detail records of cards at tier 2
// or below are dropped from memory and the store. FAQ entries not accessed
// within the FAQ expiry lose both records. Every bulk table and the sweep
// stamp are then persisted. On failure the stamp is not advanced, so the
// next Initialize retries.
func (e *Engine) Cleanup(ctx context.Context) (CleanupReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return CleanupReport{}, ErrNotInitialized
	}
	return e.cleanupLocked(ctx)
}

// CleanupDue reports whether Initialize would run the sweep now.
func (e *Engine) CleanupDue() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cleanupDue(e.now())
}

func (e *Engine) cleanupDue(now time.Time) bool {
	last := e.t.lastCleanup.Get()
	if last <= 0 {
		return true
	}
	return now.UnixMilli()-last >= e.cleanupInterval.Milliseconds()
}

func (e *Engine) cleanupLocked(ctx context.Context) (CleanupReport, error) {
	started := e.now()
	report := CleanupReport{SweepID: uuid.NewString(), StartedAt: started}
	logger := e.logger.With(logging.String(logging.FieldSweepID, report.SweepID))
	logger.Info("cleanup sweep started", logging.Int("recency_records", e.t.recency.Len()))

	var dropRecency, dropDetail []string
	for _, id := range e.t.recency.Keys() {
		t := e.tierLocked(id)
		if t == 0 {
			dropRecency = append(dropRecency, id)
		}
		if t <= 2 {
			dropDetail = append(dropDetail, id)
		}
	}

	detailsDropped, err := e.t.cardC.Remove(ctx, dropDetail...)
	if err != nil {
		return report, fmt.Errorf("cleanup card details: %w", err)
	}
	report.DetailsDropped = detailsDropped
	report.RecencyDropped = e.t.recency.Delete(dropRecency...)

	nowMs := started.UnixMilli()
	var expiredFAQs []string
	e.t.faqA.Range(func(id string, faq FAQA) bool {
		if nowMs-faq.LastAccessed > e.faqExpiry.Milliseconds() {
			expiredFAQs = append(expiredFAQs, id)
		}
		return true
	})
	if _, err := e.t.faqB.Remove(ctx, expiredFAQs...); err != nil {
		return report, fmt.Errorf("cleanup faq answers: %w", err)
	}
	report.FAQsDropped = e.t.faqA.Delete(expiredFAQs...)

	previous := e.t.lastCleanup.Get()
	e.t.lastCleanup.Set(nowMs)
	if err := e.saveLocked(ctx); err != nil {
		e.t.lastCleanup.Set(previous)
		return report, err
	}

	report.Duration = e.now().Sub(started)
	logger.Info("cleanup sweep complete",
		logging.Int("recency_dropped", report.RecencyDropped),
		logging.Int("details_dropped", report.DetailsDropped),
		logging.Int("faqs_dropped", report.FAQsDropped),
		logging.Duration("elapsed", report.Duration),
	)
	return report, nil
}
