package evidence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/draft-guard/internal/pkg/logger"
)

// SignalType classifies a mined enrichment signal.
type SignalType string

const (
	SignalCompanyIntel SignalType = "company_intel"
	SignalHiring       SignalType = "hiring"
	SignalTechStack    SignalType = "tech_stack"
	SignalContent      SignalType = "content"
	SignalRoleImpact   SignalType = "role_impact"
)

// companyFamilyTypes are the signal types that count toward the
// company-specific evidence family.
var companyFamilyTypes = map[SignalType]bool{
	SignalCompanyIntel: true,
	SignalTechStack:    true,
	SignalContent:      true,
	SignalHiring:       true,
}

// Signal is one fact mined from enrichment data.
type Signal struct {
	Type           SignalType `json:"signal_type"`
	Value          string     `json:"value"`
	Confidence     float64    `json:"confidence"`
	Source         string     `json:"source"`
	UsableInOpener bool       `json:"usable_in_opener"`
}

// Lead is the raw enrichment payload for one recipient. It arrives from the
// enrichment stage as loosely-typed JSON; every accessor tolerates missing
// or mistyped keys.
type Lead map[string]interface{}

func (l Lead) str(key string) string {
	if v, ok := l[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func (l Lead) strs(key string) []string {
	v, ok := l[key]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// MergedContext aggregates the output of all sub-extractors.
type MergedContext struct {
	TraceID                 string   `json:"trace_id"`
	Signals                 []Signal `json:"signals"`
	CompanySpecificCount    int      `json:"company_specific_count"`
	RoleImpactCount         int      `json:"role_impact_count"`
	OverallConfidence       float64  `json:"overall_confidence"`
	RecommendedOpenerSignal *Signal  `json:"recommended_opener_signal,omitempty"`
	MeetsMinimumEvidence    bool     `json:"meets_minimum_evidence"`
	Trace                   []string `json:"trace"`
}

// subExtractor mines one family of signals from a lead. Extractors are pure
// and independent of one another.
type subExtractor struct {
	name string
	fn   func(Lead) []Signal
}

// Run order is fixed; the trace records it.
var subExtractors = []subExtractor{
	{"company_intel", extractCompanyIntel},
	{"hiring_signals", extractHiringSignals},
	{"tech_stack", extractTechStack},
	{"content_engagement", extractContentEngagement},
	{"role_pain_points", extractRolePainPoints},
}

// ExtractAllSignals runs every sub-extractor against the lead. A failing
// extractor is recorded as an ERROR trace entry and the rest still run;
// extraction as a whole never fails.
func ExtractAllSignals(lead Lead) *MergedContext {
	merged := &MergedContext{TraceID: uuid.NewString()}

	for _, ext := range subExtractors {
		signals, err := runIsolated(ext, lead)
		if err != nil {
			merged.Trace = append(merged.Trace, fmt.Sprintf("ERROR %s: %v", ext.name, err))
			logger.Warn("signal sub-extractor failed", "extractor", ext.name, "trace_id", merged.TraceID, "error", err.Error())
			continue
		}
		merged.Trace = append(merged.Trace, fmt.Sprintf("%s: %d signals", ext.name, len(signals)))
		merged.Signals = append(merged.Signals, signals...)
	}

	for _, s := range merged.Signals {
		if companyFamilyTypes[s.Type] {
			merged.CompanySpecificCount++
		}
		if s.Type == SignalRoleImpact {
			merged.RoleImpactCount++
		}
	}
	merged.OverallConfidence = topConfidenceMean(merged.Signals, 5)
	merged.RecommendedOpenerSignal = bestOpenerSignal(merged.Signals)
	merged.MeetsMinimumEvidence = merged.CompanySpecificCount >= 1 && merged.RoleImpactCount >= 1

	return merged
}

// runIsolated converts a sub-extractor panic into an error so one bad
// enrichment payload cannot take down the others.
func runIsolated(ext subExtractor, lead Lead) (signals []Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			signals = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ext.fn(lead), nil
}

func extractCompanyIntel(lead Lead) []Signal {
	var signals []Signal
	company := lead.str("company")
	if company == "" {
		return nil
	}

	if industry := lead.str("industry"); industry != "" {
		signals = append(signals, Signal{
			Type:           SignalCompanyIntel,
			Value:          fmt.Sprintf("%s operates in %s", company, industry),
			Confidence:     0.7,
			Source:         "enrichment:industry",
			UsableInOpener: false,
		})
	}
	if count := lead.str("employee_count"); count != "" {
		signals = append(signals, Signal{
			Type:           SignalCompanyIntel,
			Value:          fmt.Sprintf("%s has ~%s employees", company, count),
			Confidence:     0.6,
			Source:         "enrichment:employee_count",
			UsableInOpener: false,
		})
	}
	return signals
}

func extractHiringSignals(lead Lead) []Signal {
	hiring := lead.str("hiring_signal")
	if hiring == "" {
		return nil
	}
	return []Signal{{
		Type:           SignalHiring,
		Value:          hiring,
		Confidence:     0.9,
		Source:         "enrichment:hiring_signal",
		UsableInOpener: true,
	}}
}

var techKeywords = []string{
	"kubernetes", "terraform", "aws", "gcp", "azure", "snowflake", "kafka",
	"react", "golang", "python", "salesforce", "hubspot", "databricks",
}

func extractTechStack(lead Lead) []Signal {
	var signals []Signal
	hooks := lead.strs("personalization_hooks")
	for _, hook := range hooks {
		lower := strings.ToLower(hook)
		for _, kw := range techKeywords {
			if strings.Contains(lower, kw) {
				signals = append(signals, Signal{
					Type:           SignalTechStack,
					Value:          hook,
					Confidence:     0.8,
					Source:         "enrichment:personalization_hooks",
					UsableInOpener: true,
				})
				break
			}
		}
	}
	return signals
}

func extractContentEngagement(lead Lead) []Signal {
	content := lead.str("engagement_content")
	if content == "" {
		return nil
	}
	source := "enrichment:engagement"
	if name := lead.str("source_name"); name != "" {
		source = "enrichment:" + name
	} else if st := lead.str("source_type"); st != "" {
		source = "enrichment:" + st
	}
	return []Signal{{
		Type:           SignalContent,
		Value:          content,
		Confidence:     0.85,
		Source:         source,
		UsableInOpener: true,
	}}
}

// rolePainPoints maps title keywords to the pain point most likely to land
// with that persona. Lookup is ordered so the first keyword hit wins.
var rolePainPoints = []struct {
	keyword   string
	painPoint string
}{
	{"engineering", "shipping velocity and on-call load"},
	{"developer", "shipping velocity and on-call load"},
	{"cto", "build-vs-buy tradeoffs and platform cost"},
	{"sales", "pipeline coverage and quota attainment"},
	{"revenue", "pipeline coverage and quota attainment"},
	{"marketing", "lead quality and attribution"},
	{"growth", "lead quality and attribution"},
	{"operations", "manual process toil"},
	{"finance", "forecast accuracy and spend visibility"},
	{"people", "hiring funnel throughput"},
	{"recruit", "hiring funnel throughput"},
}

func extractRolePainPoints(lead Lead) []Signal {
	title := strings.ToLower(lead.str("title"))
	if title == "" {
		return nil
	}
	for _, rp := range rolePainPoints {
		if strings.Contains(title, rp.keyword) {
			return []Signal{{
				Type:           SignalRoleImpact,
				Value:          rp.painPoint,
				Confidence:     0.65,
				Source:         "lookup:role_pain_points",
				UsableInOpener: false,
			}}
		}
	}
	return nil
}

// topConfidenceMean averages the n highest-confidence signals, 0 if none.
func topConfidenceMean(signals []Signal, n int) float64 {
	if len(signals) == 0 {
		return 0
	}
	conf := make([]float64, len(signals))
	for i, s := range signals {
		conf[i] = s.Confidence
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(conf)))
	if len(conf) > n {
		conf = conf[:n]
	}
	var sum float64
	for _, c := range conf {
		sum += c
	}
	return sum / float64(len(conf))
}

func bestOpenerSignal(signals []Signal) *Signal {
	var best *Signal
	for i := range signals {
		s := &signals[i]
		if !s.UsableInOpener {
			continue
		}
		if best == nil || s.Confidence > best.Confidence {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}
