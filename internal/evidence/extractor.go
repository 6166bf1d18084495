// Package evidence scans drafted emails for personalization evidence and,
// when the draft itself is thin, mines pre-collected enrichment data for
// company and role signals through a set of independent sub-extractors.
package evidence

import (
	"fmt"
	"regexp"
	"strings"
)

// Family classifies an evidence item. A draft needs at least one item from
// each family to clear the minimum-evidence bar.
type Family string

const (
	FamilyCompanySpecific Family = "company_specific"
	FamilyRoleImpact      Family = "role_impact"
)

// Item is one classified, sourced fact found in a draft body.
type Item struct {
	Type   Family `json:"type"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// RecipientMeta is the slice of recipient data the extractor consults.
type RecipientMeta struct {
	Company string `json:"company"`
	Title   string `json:"title"`
}

// genericCompanyPlaceholders are phrases that look like a company reference
// but carry no personalization.
var genericCompanyPlaceholders = map[string]bool{
	"your company": true,
	"the company":  true,
	"your team":    true,
}

// companyPatterns are checked in order; the first match satisfies the
// company_specific family. Order is part of the contract; reason strings
// must be reproducible across runs.
var companyPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"hiring_initiative", regexp.MustCompile(`(?i)\b(hiring|scaling|growing|expanding|headcount|new roles?|open positions?)\b`)},
	{"tech_stack", regexp.MustCompile(`(?i)\b(migrat(e|ing|ion)|stack|infrastructure|platform|kubernetes|microservices|pipeline|deploy(ment)?s?)\b`)},
	{"event_reference", regexp.MustCompile(`(?i)\b(conference|summit|webinar|keynote|panel|meetup|booth|saw you at|your talk)\b`)},
	{"content_reference", regexp.MustCompile(`(?i)\b(your (post|article|blog|podcast|interview|whitepaper)|recently (wrote|published|shared)|linkedin post)\b`)},
}

// rolePatterns satisfy the role_impact family when the title itself never
// appears in the body. Checked in order, first match wins.
var rolePatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"operational_language", regexp.MustCompile(`(?i)\b(on-call|incident|uptime|latency|throughput|reliability|toil|backlog|sprint)\b`)},
	{"strategic_language", regexp.MustCompile(`(?i)\b(roadmap|strategy|initiative|priorit(y|ies)|quarter|okrs?|budget)\b`)},
	{"impact_language", regexp.MustCompile(`(?i)\b(revenue|cost sav(e|ing)s?|efficiency|conversion|churn|pipeline coverage|time.to.market)\b`)},
}

// titleStopwords are title words too generic to count as role evidence.
var titleStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "head": true, "chief": true,
	"senior": true, "junior": true, "lead": true, "vice": true, "president": true,
	"director": true, "manager": true, "officer": true,
}

// ExtractEvidence scans body for personalization markers. The two families
// are independent: one match satisfies a family, and both families are
// always scanned so the caller sees everything found.
func ExtractEvidence(body string, meta RecipientMeta) []Item {
	var items []Item

	if item, ok := findCompanyEvidence(body, meta); ok {
		items = append(items, item)
	}
	if item, ok := findRoleEvidence(body, meta); ok {
		items = append(items, item)
	}
	return items
}

func findCompanyEvidence(body string, meta RecipientMeta) (Item, bool) {
	company := strings.TrimSpace(meta.Company)
	if company != "" && !genericCompanyPlaceholders[strings.ToLower(company)] {
		if strings.Contains(strings.ToLower(body), strings.ToLower(company)) {
			return Item{Type: FamilyCompanySpecific, Value: company, Source: "company_name_match"}, true
		}
	}

	for _, p := range companyPatterns {
		if match := p.pattern.FindString(body); match != "" {
			return Item{Type: FamilyCompanySpecific, Value: match, Source: p.name}, true
		}
	}
	return Item{}, false
}

func findRoleEvidence(body string, meta RecipientMeta) (Item, bool) {
	lowerBody := strings.ToLower(body)
	bodyWords := make(map[string]bool)
	for _, w := range strings.Fields(lowerBody) {
		bodyWords[strings.Trim(w, ".,!?;:()\"'")] = true
	}

	for _, w := range strings.Fields(strings.ToLower(meta.Title)) {
		w = strings.Trim(w, ".,&/")
		if len(w) < 3 || titleStopwords[w] {
			continue
		}
		if bodyWords[w] {
			return Item{Type: FamilyRoleImpact, Value: w, Source: "title_word_match"}, true
		}
	}

	for _, p := range rolePatterns {
		if match := p.pattern.FindString(body); match != "" {
			return Item{Type: FamilyRoleImpact, Value: match, Source: p.name}, true
		}
	}
	return Item{}, false
}

// CountFamilies tallies items per family.
func CountFamilies(items []Item) (companySpecific, roleImpact int) {
	for _, it := range items {
		switch it.Type {
		case FamilyCompanySpecific:
			companySpecific++
		case FamilyRoleImpact:
			roleImpact++
		}
	}
	return
}

// MissingFamilies renders a human-readable account of what was found versus
// required, used in guard failure messages.
func MissingFamilies(companySpecific, roleImpact int) string {
	return fmt.Sprintf("found %d company-specific and %d role-impact evidence items, need at least 1 of each",
		companySpecific, roleImpact)
}
