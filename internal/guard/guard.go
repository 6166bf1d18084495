// Package guard implements the draft quality gate that sits between the
// email generator and the human review queue. A check runs five ordered,
// deterministic rules against a draft; none short-circuits, so the caller
// always sees every failure reason, and the first failure becomes the
// blocking reason.
package guard

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ignite/draft-guard/internal/evidence"
	"github.com/ignite/draft-guard/internal/fingerprint"
	"github.com/ignite/draft-guard/internal/pkg/logger"
	"github.com/ignite/draft-guard/internal/rejection"
)

// Mode selects blocking behavior.
type Mode string

const (
	// ModeHard blocks drafts on any rule failure.
	ModeHard Mode = "hard"
	// ModeSoft evaluates and records failures but always passes; used for
	// shadow-testing new rules against live traffic.
	ModeSoft Mode = "soft"
)

// ParseMode maps a config string to a Mode, defaulting to hard.
func ParseMode(s string) Mode {
	if Mode(s) == ModeSoft {
		return ModeSoft
	}
	return ModeHard
}

// Draft is the generated artifact under evaluation.
type Draft struct {
	To        string                 `json:"to"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Recipient evidence.RecipientMeta `json:"recipient_data"`
	Lead      evidence.Lead          `json:"lead_data,omitempty"`
	Tier      string                 `json:"tier,omitempty"`

	// HasNewEvidence is the caller's assertion that fresh personalization
	// evidence justifies one more attempt for an otherwise-blocked lead.
	HasNewEvidence bool `json:"has_new_evidence,omitempty"`
}

// RuleFailure is one failed rule with its human-readable message.
type RuleFailure struct {
	RuleID  RuleID `json:"rule_id"`
	Message string `json:"message"`
}

// CheckResult is the verdict for one draft. It is constructed fresh per
// check and never persisted.
type CheckResult struct {
	Passed                  bool            `json:"passed"`
	BlockedReason           string          `json:"blocked_reason,omitempty"`
	RuleFailures            []RuleFailure   `json:"rule_failures"`
	DraftFingerprint        string          `json:"draft_fingerprint"`
	PersonalizationEvidence []evidence.Item `json:"personalization_evidence"`
	RejectionMemoryHit      bool            `json:"rejection_memory_hit"`
	SubAgentTrace           []string        `json:"sub_agent_trace,omitempty"`
}

// Stats are cumulative check counters.
type Stats struct {
	ChecksTotal   uint64            `json:"checks_total"`
	ChecksPassed  uint64            `json:"checks_passed"`
	ChecksBlocked uint64            `json:"checks_blocked"`
	RuleFailures  map[RuleID]uint64 `json:"rule_failures"`
}

// Guard is the stateless rule evaluator. It holds no per-draft state; the
// only mutable fields are monotonic counters.
type Guard struct {
	memory  *rejection.Memory
	enabled bool
	mode    Mode

	checksTotal   atomic.Uint64
	checksPassed  atomic.Uint64
	checksBlocked atomic.Uint64
	ruleFailures  [numRules]atomic.Uint64
}

// New creates a guard over the given rejection memory.
func New(memory *rejection.Memory, enabled bool, mode Mode) *Guard {
	if mode != ModeSoft {
		mode = ModeHard
	}
	return &Guard{memory: memory, enabled: enabled, mode: mode}
}

// Check evaluates all five rules against the draft in fixed order.
// When the guard is disabled the draft passes without evaluation.
func (g *Guard) Check(ctx context.Context, draft Draft) CheckResult {
	result := CheckResult{
		Passed:           true,
		DraftFingerprint: fingerprint.Fingerprint(draft.Subject, draft.Body),
	}

	if !g.enabled {
		return result
	}
	g.checksTotal.Add(1)

	fail := func(id RuleID, msg string) {
		result.RuleFailures = append(result.RuleFailures, RuleFailure{RuleID: id, Message: msg})
		for i, rid := range RuleOrder {
			if rid == id {
				g.ruleFailures[i].Add(1)
			}
		}
	}

	// 1. Block rule: recipients past the rejection threshold are frozen out.
	if blocked, reason := g.memory.ShouldBlockLead(ctx, draft.To, draft.HasNewEvidence); blocked {
		result.RejectionMemoryHit = true
		fail(RuleBlockedLead, reason)
	}

	// 2. Repeat-draft rule: content the recipient already saw rejected.
	if g.memory.IsRepeatDraft(ctx, draft.To, draft.Subject, draft.Body) {
		result.RejectionMemoryHit = true
		fail(RuleRepeatDraft, "draft fingerprint matches a previously rejected draft for this recipient")
	}

	// 3. Minimum-evidence rule: at least one company-specific and one
	// role-impact item in the draft itself; if the draft is thin, the
	// signal sub-agents get a chance to waive the rule from enrichment data.
	result.PersonalizationEvidence = evidence.ExtractEvidence(draft.Body, draft.Recipient)
	companyCount, roleCount := evidence.CountFamilies(result.PersonalizationEvidence)
	if companyCount < 1 || roleCount < 1 {
		merged := evidence.ExtractAllSignals(draft.Lead)
		if merged.MeetsMinimumEvidence {
			result.SubAgentTrace = merged.Trace
			logger.Debug("minimum-evidence rule waived by sub-agent signals",
				"recipient", draft.To, "trace_id", merged.TraceID)
		} else {
			fail(RuleMinimumEvidence, evidence.MissingFamilies(companyCount, roleCount))
		}
	}

	// 4. Banned-opener rule: the first substantive line must not be a
	// generic opener.
	if opener := matchBannedOpener(firstSubstantiveLine(draft.Body)); opener != "" {
		fail(RuleBannedOpener, fmt.Sprintf("draft opens with a generic phrase: %q", opener))
	}

	// 5. Generic-phrase-density rule: too much filler per sentence.
	if count, sentences, ratio := genericPhraseDensity(draft.Body); ratio > genericDensityThreshold {
		fail(RuleGenericDensity, fmt.Sprintf(
			"generic phrase density %.2f exceeds %.2f (%d occurrences over %d sentences)",
			ratio, genericDensityThreshold, count, sentences))
	}

	if len(result.RuleFailures) > 0 {
		result.BlockedReason = result.RuleFailures[0].Message
		if g.mode == ModeSoft {
			logger.Info("soft mode: draft passes despite rule failures",
				"recipient", draft.To,
				"failures", fmt.Sprintf("%d", len(result.RuleFailures)),
				"first_rule", string(result.RuleFailures[0].RuleID))
		} else {
			result.Passed = false
		}
	}

	if result.Passed {
		g.checksPassed.Add(1)
	} else {
		g.checksBlocked.Add(1)
	}
	return result
}

// Stats returns cumulative counters for the status endpoint.
func (g *Guard) Stats() Stats {
	s := Stats{
		ChecksTotal:   g.checksTotal.Load(),
		ChecksPassed:  g.checksPassed.Load(),
		ChecksBlocked: g.checksBlocked.Load(),
		RuleFailures:  make(map[RuleID]uint64, len(RuleOrder)),
	}
	for i, id := range RuleOrder {
		s.RuleFailures[id] = g.ruleFailures[i].Load()
	}
	return s
}

// Enabled reports whether checks are being evaluated.
func (g *Guard) Enabled() bool { return g.enabled }

// Mode returns the current operating mode.
func (g *Guard) Mode() Mode { return g.mode }
