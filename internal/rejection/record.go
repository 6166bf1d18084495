// Package rejection implements per-recipient rejection memory: an append-
// mostly history of reviewer rejections used for admission control over
// generated drafts. Records are keyed solely by the normalized recipient
// email address and age out of visibility after a retention window.
package rejection

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Tag categorizes why a reviewer rejected a draft.
type Tag string

// Known rejection tags. The set is open (reviewers can supply ad-hoc tags)
// but these cover the recurring categories.
const (
	TagPersonalizationMismatch Tag = "personalization_mismatch"
	TagToneMismatch            Tag = "tone_mismatch"
	TagFactualError            Tag = "factual_error"
	TagTooGeneric              Tag = "too_generic"
	TagWrongPersona            Tag = "wrong_persona"
)

// Record is the per-recipient rejection history.
type Record struct {
	ID                       string    `json:"id"`
	RecipientKey             string    `json:"recipient_key"`
	RejectionCount           int       `json:"rejection_count"`
	LastRejectedAt           time.Time `json:"last_rejected_at"`
	RejectionTags            []Tag     `json:"rejection_tags"`
	RejectedSubjects         []string  `json:"rejected_subjects"`
	RejectedBodyFingerprints []string  `json:"rejected_body_fingerprints"`
	FeedbackTexts            []string  `json:"feedback_texts"`
	RejectedTemplateIDs      []string  `json:"rejected_template_ids"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// HasTemplate reports whether templateID was previously rejected.
func (r *Record) HasTemplate(templateID string) bool {
	for _, id := range r.RejectedTemplateIDs {
		if id == templateID {
			return true
		}
	}
	return false
}

// HasFingerprint reports whether fp matches a previously rejected draft.
func (r *Record) HasFingerprint(fp string) bool {
	for _, f := range r.RejectedBodyFingerprints {
		if f == fp {
			return true
		}
	}
	return false
}

// Rejection is one human review decision fed into the memory.
// Subject, Body, FeedbackText and TemplateID are optional.
type Rejection struct {
	Recipient    string `json:"recipient"`
	Tag          Tag    `json:"tag"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	FeedbackText string `json:"feedback_text"`
	TemplateID   string `json:"template_id"`
}

// Context is the generation context handed back to the drafting stage so the
// next attempt can steer away from what reviewers already rejected.
type Context struct {
	RejectionCount      int      `json:"rejection_count"`
	RejectionTags       []Tag    `json:"rejection_tags"`
	FeedbackTexts       []string `json:"feedback_texts"`
	RejectedSubjects    []string `json:"rejected_subjects"`
	RejectedTemplateIDs []string `json:"rejected_template_ids"`
}

// NormalizeRecipient reduces an email address to the identity key: trimmed
// and lowercased. No other recipient attribute participates in identity.
func NormalizeRecipient(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// storageKey hashes the normalized recipient so storage keys are fixed-width
// and free of characters any backend would need to escape.
func storageKey(recipient string) string {
	sum := md5.Sum([]byte(NormalizeRecipient(recipient)))
	return hex.EncodeToString(sum[:])
}

// appendBounded appends v and keeps the newest max entries.
func appendBounded(list []string, v string, max int) []string {
	list = append(list, v)
	if max > 0 && len(list) > max {
		list = list[len(list)-max:]
	}
	return list
}

// appendDeduped removes any existing occurrence of v before appending, so
// the list stays ordered by recency with no duplicates.
func appendDeduped(list []string, v string, max int) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return appendBounded(out, v, max)
}
