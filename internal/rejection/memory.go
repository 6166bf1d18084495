package rejection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/draft-guard/internal/fingerprint"
	"github.com/ignite/draft-guard/internal/pkg/logger"
	"github.com/ignite/draft-guard/internal/storage"
)

// Config bounds rejection memory growth and visibility.
type Config struct {
	Retention       time.Duration // record visibility window
	MaxRejections   int           // rejections before a recipient is blocked
	MaxSubjects     int           // rejected subjects kept per recipient
	MaxFingerprints int           // body fingerprints kept per recipient
	MaxFeedback     int           // feedback texts kept per recipient
}

// DefaultConfig mirrors the documented defaults: 30-day retention, block
// after 2 rejections, 5-10 stored items per list.
func DefaultConfig() Config {
	return Config{
		Retention:       30 * 24 * time.Hour,
		MaxRejections:   2,
		MaxSubjects:     5,
		MaxFingerprints: 10,
		MaxFeedback:     5,
	}
}

// Memory is the rejection memory store. It is a plain constructible object:
// all state lives in the injected storage backend, partitioned by recipient
// key, so independent recipients never contend.
type Memory struct {
	store storage.Store
	cfg   Config
	now   func() time.Time
}

// Option customizes a Memory.
type Option func(*Memory)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// New creates a rejection memory backed by store.
func New(store storage.Store, cfg Config, opts ...Option) *Memory {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultConfig().Retention
	}
	if cfg.MaxRejections <= 0 {
		cfg.MaxRejections = DefaultConfig().MaxRejections
	}
	m := &Memory{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordRejection loads-or-creates the recipient's record, folds the
// rejection in, and persists best-effort. The updated record is returned
// even when persistence fails; a storage outage must not lose the review
// decision for the caller holding it.
//
// The raw record is loaded here without the TTL check: expiry affects
// visibility on reads, not the logical count, so a rejection arriving after
// the window continues the count rather than restarting it.
func (m *Memory) RecordRejection(ctx context.Context, rej Rejection) *Record {
	key := NormalizeRecipient(rej.Recipient)
	now := m.now().UTC()

	rec := m.loadRaw(ctx, key)
	if rec == nil {
		rec = &Record{ID: uuid.NewString(), RecipientKey: key}
	}

	rec.RejectionCount++
	rec.LastRejectedAt = now
	rec.UpdatedAt = now
	if rej.Tag != "" {
		rec.RejectionTags = append(rec.RejectionTags, rej.Tag)
	}
	if rej.Subject != "" {
		rec.RejectedSubjects = appendDeduped(rec.RejectedSubjects, rej.Subject, m.cfg.MaxSubjects)
	}
	fp := fingerprint.Fingerprint(rej.Subject, rej.Body)
	rec.RejectedBodyFingerprints = appendBounded(rec.RejectedBodyFingerprints, fp, m.cfg.MaxFingerprints)
	if rej.FeedbackText != "" {
		rec.FeedbackTexts = appendBounded(rec.FeedbackTexts, rej.FeedbackText, m.cfg.MaxFeedback)
	}
	if rej.TemplateID != "" && !rec.HasTemplate(rej.TemplateID) {
		rec.RejectedTemplateIDs = append(rec.RejectedTemplateIDs, rej.TemplateID)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		logger.Error("rejection record marshal failed", "recipient", key, "error", err.Error())
		return rec
	}
	if err := m.store.Put(ctx, storageKey(key), data); err != nil {
		logger.Error("rejection record persist failed", "recipient", key, "error", err.Error())
	}

	logger.Info("rejection recorded",
		"recipient", key,
		"tag", string(rej.Tag),
		"count", fmt.Sprintf("%d", rec.RejectionCount))
	return rec
}

// GetRejectionHistory returns the recipient's record, or nil when none
// exists, the record has aged past the retention window, or storage is
// unavailable. Stale bytes left in a backend are invisible, not deleted.
func (m *Memory) GetRejectionHistory(ctx context.Context, recipient string) *Record {
	rec := m.loadRaw(ctx, NormalizeRecipient(recipient))
	if rec == nil {
		return nil
	}
	if m.now().UTC().Sub(rec.LastRejectedAt) > m.cfg.Retention {
		return nil
	}
	return rec
}

// IsRepeatDraft reports whether (subject, body) fingerprints to a draft the
// recipient already saw rejected.
func (m *Memory) IsRepeatDraft(ctx context.Context, recipient, subject, body string) bool {
	rec := m.GetRejectionHistory(ctx, recipient)
	if rec == nil {
		return false
	}
	return rec.HasFingerprint(fingerprint.Fingerprint(subject, body))
}

// ShouldBlockLead is the core admission-control rule: a recipient at or past
// the rejection threshold is frozen out of further attempts. Fresh
// personalization evidence overrides the block, the escape hatch that keeps
// transient evidence gaps from locking a lead out permanently.
func (m *Memory) ShouldBlockLead(ctx context.Context, recipient string, hasNewEvidence bool) (bool, string) {
	rec := m.GetRejectionHistory(ctx, recipient)
	if rec == nil {
		return false, ""
	}
	if rec.RejectionCount >= m.cfg.MaxRejections && !hasNewEvidence {
		return true, fmt.Sprintf("recipient has %d prior rejections (threshold %d) and no new evidence",
			rec.RejectionCount, m.cfg.MaxRejections)
	}
	return false, ""
}

// RejectedTemplateIDs returns the set of template IDs previously rejected
// for the recipient. Never nil.
func (m *Memory) RejectedTemplateIDs(ctx context.Context, recipient string) map[string]bool {
	set := make(map[string]bool)
	if rec := m.GetRejectionHistory(ctx, recipient); rec != nil {
		for _, id := range rec.RejectedTemplateIDs {
			set[id] = true
		}
	}
	return set
}

// BannedSubjects returns subject lines previously rejected for the recipient.
func (m *Memory) BannedSubjects(ctx context.Context, recipient string) []string {
	rec := m.GetRejectionHistory(ctx, recipient)
	if rec == nil {
		return nil
	}
	return rec.RejectedSubjects
}

// FeedbackContext packages the recipient's history as generation context for
// the next drafting attempt. Never nil.
func (m *Memory) FeedbackContext(ctx context.Context, recipient string) *Context {
	rec := m.GetRejectionHistory(ctx, recipient)
	if rec == nil {
		return &Context{}
	}
	return &Context{
		RejectionCount:      rec.RejectionCount,
		RejectionTags:       rec.RejectionTags,
		FeedbackTexts:       rec.FeedbackTexts,
		RejectedSubjects:    rec.RejectedSubjects,
		RejectedTemplateIDs: rec.RejectedTemplateIDs,
	}
}

// loadRaw fetches and decodes a record without applying the TTL check.
// Storage failures and malformed payloads both read as "no record".
func (m *Memory) loadRaw(ctx context.Context, key string) *Record {
	data, err := m.store.Get(ctx, storageKey(key))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("rejection record read failed, treating as absent", "recipient", key, "error", err.Error())
		}
		return nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logger.Warn("rejection record malformed, treating as absent", "recipient", key, "error", err.Error())
		return nil
	}
	return &rec
}
