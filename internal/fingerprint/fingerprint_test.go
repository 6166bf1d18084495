package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterminism(t *testing.T) {
	fp1 := Fingerprint("Quick question", "Hi Andrew, saw your team is hiring.")
	fp2 := Fingerprint("Quick question", "Hi Andrew, saw your team is hiring.")
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 32)
}

func TestFingerprintNormalization(t *testing.T) {
	base := Fingerprint("Quick question", "Hi Andrew, saw your team is hiring.")

	tests := []struct {
		name    string
		subject string
		body    string
	}{
		{"leading/trailing whitespace", "  Quick question  ", "  Hi Andrew, saw your team is hiring.  "},
		{"case changes", "QUICK Question", "hi andrew, SAW your team is hiring."},
		{"collapsed whitespace runs", "Quick   question", "Hi Andrew,\n\nsaw  your\tteam is hiring."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, base, Fingerprint(tt.subject, tt.body))
		})
	}
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	fp1 := Fingerprint("Quick question", "body one")
	fp2 := Fingerprint("Quick question", "body two")
	fp3 := Fingerprint("Other subject", "body one")
	assert.NotEqual(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
}

func TestFingerprintBodyTruncation(t *testing.T) {
	prefix := strings.Repeat("a", 500)
	fp1 := Fingerprint("s", prefix+" divergent tail one")
	fp2 := Fingerprint("s", prefix+" completely different ending")
	assert.Equal(t, fp1, fp2, "drafts diverging after 500 chars should fingerprint identically")

	fp3 := Fingerprint("s", "b"+prefix[1:])
	assert.NotEqual(t, fp1, fp3, "divergence inside the first 500 chars must change the fingerprint")
}

func TestFingerprintEmptyInput(t *testing.T) {
	fp := Fingerprint("", "")
	assert.Len(t, fp, 32)
	assert.Equal(t, fp, Fingerprint("", ""))
}
