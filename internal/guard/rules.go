package guard

import (
	"regexp"
	"strings"
)

// RuleID identifies one of the five guard rules. The set is closed and the
// evaluation order is part of the contract: BlockedReason is defined as the
// first failing rule's message, so reordering would change output.
type RuleID string

const (
	RuleBlockedLead     RuleID = "GUARD-001"
	RuleRepeatDraft     RuleID = "GUARD-002"
	RuleMinimumEvidence RuleID = "GUARD-003"
	RuleBannedOpener    RuleID = "GUARD-004"
	RuleGenericDensity  RuleID = "GUARD-005"
)

// numRules is the size of the closed rule set.
const numRules = 5

// RuleOrder is the fixed evaluation order.
var RuleOrder = [numRules]RuleID{
	RuleBlockedLead,
	RuleRepeatDraft,
	RuleMinimumEvidence,
	RuleBannedOpener,
	RuleGenericDensity,
}

// greetingLine matches a short salutation line ("Hi Sam," / "Hello,") that
// the banned-opener rule skips before judging the first substantive line.
var greetingLine = regexp.MustCompile(`(?i)^(hi|hello|hey|dear|good (morning|afternoon|evening))\b.{0,30}[,!]?\s*$`)

// greetingMaxLen caps how long a line can be and still count as a greeting.
const greetingMaxLen = 40

// bannedOpeners are generic opener patterns that read as mail-merge filler.
// Checked in order against the first substantive line; first match fails the
// rule.
var bannedOpeners = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^given your role as`),
	regexp.MustCompile(`(?i)^i hope this (email |message )?finds you`),
	regexp.MustCompile(`(?i)^as (someone|a leader|the) (who|in|of)`),
	regexp.MustCompile(`(?i)^i know you('re| are) busy`),
	regexp.MustCompile(`(?i)^i wanted to (reach out|touch base|connect)`),
	regexp.MustCompile(`(?i)^my name is`),
	regexp.MustCompile(`(?i)^i('m| am) reaching out (to|because)`),
	regexp.MustCompile(`(?i)^hope (you('re| are)|all is) (doing )?well`),
}

// genericPhrases are filler and AI-tell phrases counted by the density rule.
var genericPhrases = []string{
	"i hope this finds you well",
	"touch base",
	"circle back",
	"reach out",
	"quick question",
	"synergy",
	"leverage",
	"cutting-edge",
	"best-in-class",
	"game-changer",
	"game changer",
	"in today's fast-paced",
	"take your business to the next level",
	"i'd love to pick your brain",
	"revolutionize",
	"unlock the potential",
	"seamlessly",
	"delve",
}

// genericDensityThreshold is the maximum tolerated ratio of generic-phrase
// occurrences to sentences.
const genericDensityThreshold = 0.4

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// firstSubstantiveLine returns the first non-empty body line, skipping one
// short greeting line if present.
func firstSubstantiveLine(body string) string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	if len(lines[0]) < greetingMaxLen && greetingLine.MatchString(lines[0]) {
		if len(lines) == 1 {
			return ""
		}
		return lines[1]
	}
	return lines[0]
}

// matchBannedOpener returns the matched opener text, or "" when clean.
func matchBannedOpener(line string) string {
	for _, p := range bannedOpeners {
		if m := p.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

// genericPhraseDensity counts generic-phrase occurrences per sentence.
func genericPhraseDensity(body string) (count int, sentences int, ratio float64) {
	lower := strings.ToLower(body)
	for _, phrase := range genericPhrases {
		count += strings.Count(lower, phrase)
	}

	for _, s := range sentenceSplit.Split(body, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences < 1 {
		sentences = 1
	}
	return count, sentences, float64(count) / float64(sentences)
}
