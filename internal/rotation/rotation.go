// Package rotation selects the next outreach template for a recipient,
// steering around templates their reviewers already rejected.
package rotation

import (
	"context"

	"github.com/osteele/liquid"

	"github.com/ignite/draft-guard/internal/pkg/logger"
	"github.com/ignite/draft-guard/internal/rejection"
)

// Template is one candidate in a tier's rotation. Subject and Body are
// liquid sources with recipient merge fields ({{ first_name }},
// {{ company }}, ...).
type Template struct {
	ID      string `json:"id" yaml:"id"`
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
}

var engine = liquid.NewEngine()

// Render fills the template's merge fields from recipient variables.
func (t Template) Render(vars map[string]interface{}) (subject, body string, err error) {
	subject, err = engine.ParseAndRenderString(t.Subject, vars)
	if err != nil {
		return "", "", err
	}
	body, err = engine.ParseAndRenderString(t.Body, vars)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

// Selector chooses templates using rejection memory. Selection for one
// recipient is never influenced by another's history; the memory is
// partitioned by recipient key.
type Selector struct {
	memory *rejection.Memory
}

// NewSelector creates a selector over the given rejection memory.
func NewSelector(memory *rejection.Memory) *Selector {
	return &Selector{memory: memory}
}

// Select returns the first candidate not yet rejected for the recipient.
// When every candidate is exhausted it falls back to the tier's default
// (the first candidate), so selection always yields a usable template.
func (s *Selector) Select(ctx context.Context, recipient, tier string, candidates []Template) Template {
	if len(candidates) == 0 {
		logger.Warn("template selection with empty candidate list", "tier", tier)
		return Template{}
	}

	rejected := s.memory.RejectedTemplateIDs(ctx, recipient)
	for _, c := range candidates {
		if !rejected[c.ID] {
			return c
		}
	}

	logger.Info("all candidate templates rejected, falling back to tier default",
		"recipient", recipient, "tier", tier, "template", candidates[0].ID)
	return candidates[0]
}
