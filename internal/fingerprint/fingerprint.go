// Package fingerprint produces stable content hashes for drafted emails.
//
// The fingerprint is the identity used for repeat-draft detection: two drafts
// with the same normalized subject and the same first 500 body characters are
// treated as the same draft. The 500-character cutoff is intentional: it
// bounds hashing cost and catches template-level repetition even when merge
// fields diverge further down the body.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// bodyPrefixLen is the number of leading body characters that participate in
// the hash. Drafts diverging only after this point fingerprint identically.
const bodyPrefixLen = 500

// hexLen is the length of the returned hex digest (truncated sha256).
const hexLen = 32

var whitespaceRun = regexp.MustCompile(`\s+`)

// Fingerprint returns a deterministic 32-hex-char content hash of a draft.
// Subject and body are normalized (whitespace collapsed, trimmed, lowercased)
// before hashing; the body is truncated to its first 500 characters prior to
// normalization. Empty inputs are valid and produce a valid fingerprint.
func Fingerprint(subject, body string) string {
	runes := []rune(body)
	if len(runes) > bodyPrefixLen {
		body = string(runes[:bodyPrefixLen])
	}
	content := normalize(subject) + "|" + normalize(body)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:hexLen]
}

func normalize(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
