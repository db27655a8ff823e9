package extract

import (
	"regexp"
	"strings"

	"github.com/clinicore/intake/internal/model"
)

// severityWords escalate a symptom match when present in its raw span
var severityWords = `(?:severe|unbearable|excruciating|intense|terrible|crushing|worst)`

// span tracks where a safety-critical rule matched so that later, broader
// rules do not swallow the same stretch of text
type span struct{ start, end int }

func (s span) overlaps(o span) bool { return s.start < o.end && o.start < s.end }

// captureRule matches a phrase with one captured topic group
type captureRule struct {
	kind   model.Kind
	re     *regexp.Regexp
	render func(topic string) string
}

// termRule matches any term from a fixed lexicon
type termRule struct {
	kind   model.Kind
	re     *regexp.Regexp
	render func(term string) string
}

// PatternExtractor is the deterministic, lexicon-based candidate source.
// It never touches the network and never fails: empty or unrecognizable
// input yields an empty candidate set.
type PatternExtractor struct {
	allergyRules    []captureRule
	emergencyRule   termRule
	criticalMedRule termRule
	conditionRule   termRule
	medicationRule  captureRule
	medLexiconRule  termRule
	familyRules     []captureRule
	symptomRule     termRule
	painLevelRe     *regexp.Regexp
	behavioralRules []captureRule
	preferenceRules []captureRule
}

// topic captures a noun phrase up to a clause boundary
const topic = `([a-z][a-z ]*?)(?:\band\b|[.,;:!?]|$)`

// NewPatternExtractor builds the ordered rule set. Allergy and emergency
// rules are evaluated first and their matches are never suppressed by the
// broader symptom rule.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{
		// Most specific first: a negated phrase must claim its span before
		// the positive rules can match inside it ("not allergic to X"
		// contains "allergic to X").
		allergyRules: []captureRule{
			{
				kind: model.KindAllergy,
				re:   regexp.MustCompile(`(?i)\b(?:not allergic to|no allerg(?:y|ies) to|never been allergic to)\s+` + topic),
				render: func(t string) string { return "no " + t + " allergy" },
			},
			{
				kind: model.KindAllergy,
				re:   regexp.MustCompile(`(?i)\bno (?:known )?allerg(?:y|ies)\b`),
				render: func(string) string { return "no known allergies" },
			},
			{
				kind: model.KindAllergy,
				re:   regexp.MustCompile(`(?i)\b(?:allergic to|allerg(?:y|ies) to|bad reaction to)\s+` + topic),
				render: func(t string) string { return t + " allergy" },
			},
			{
				kind: model.KindAllergy,
				re:   regexp.MustCompile(`(?i)\b(no (?:dust|pollen|shellfish|peanut|nut|penicillin|latex|bee sting|egg|dairy)s?|(?:dust|pollen|shellfish|peanut|nut|penicillin|latex|bee sting|egg|dairy)s?)\s+allerg(?:y|ies)\b`),
				render: func(t string) string { return t + " allergy" },
			},
		},
		emergencyRule: termRule{
			kind: model.KindEmergencySymptom,
			re: regexp.MustCompile(`(?i)\b(chest pain|chest tightness|can't breathe|cannot breathe|difficulty breathing|shortness of breath|severe bleeding|coughing up blood|passed out|unconscious|seizure|stroke|heart attack|suicidal)\b`),
			render: func(t string) string { return strings.ToLower(t) },
		},
		criticalMedRule: termRule{
			kind: model.KindCriticalMedication,
			re: regexp.MustCompile(`(?i)\b(insulin|warfarin|blood thinners?|nitroglycerin|epipen|epinephrine|chemotherapy|immunosuppressants?|digoxin)\b`),
			render: func(t string) string { return "takes " + strings.ToLower(t) },
		},
		conditionRule: termRule{
			kind: model.KindCondition,
			re: regexp.MustCompile(`(?i)\b(diabetes|hypertension|high blood pressure|asthma|arthritis|epilepsy|depression|anxiety|heart disease|kidney disease|copd|cancer)\b`),
			render: func(t string) string { return strings.ToLower(t) },
		},
		medicationRule: captureRule{
			kind: model.KindMedication,
			re:   regexp.MustCompile(`(?i)\b(?:i take|i'm taking|i am taking|i've been taking|prescribed|i'm on|i am on)\s+` + topic),
			render: func(t string) string { return "takes " + t },
		},
		medLexiconRule: termRule{
			kind: model.KindMedication,
			re: regexp.MustCompile(`(?i)\b(metformin|lisinopril|aspirin|ibuprofen|paracetamol|acetaminophen|antibiotics|statins?|antihistamines?|omeprazole|amoxicillin)\b`),
			render: func(t string) string { return "takes " + strings.ToLower(t) },
		},
		familyRules: []captureRule{
			{
				kind: model.KindFamilyHistory,
				re:   regexp.MustCompile(`(?i)\bmy (?:mother|father|mom|dad|sister|brother|grandmother|grandfather|aunt|uncle)\s+(?:has|had|died of|suffers from|suffered from)\s+` + topic),
				render: func(t string) string { return "family history of " + t },
			},
			{
				kind: model.KindFamilyHistory,
				re:   regexp.MustCompile(`(?i)\b([a-z][a-z ]*?)\s+runs in (?:my|our|the) family\b`),
				render: func(t string) string { return "family history of " + t },
			},
		},
		symptomRule: termRule{
			kind: model.KindSymptom,
			re: regexp.MustCompile(`(?i)\b((?:` + severityWords + `\s+)?(?:headaches?|migraines?|nausea|fever|coughs?|dizziness|dizzy|fatigue|sore throat|vomiting|rash|back pain|stomach pain|stomach ache|joint pain|insomnia|pain))\b`),
			render: func(t string) string { return strings.ToLower(t) },
		},
		painLevelRe: regexp.MustCompile(`(\d{1,2})\s*(?:out of|/)\s*10`),
		behavioralRules: []captureRule{
			{
				kind: model.KindBehavioralPattern,
				re:   regexp.MustCompile(`(?i)\bi (?:usually|always|often|rarely)\s+` + topic),
				render: func(t string) string { return "usually " + t },
			},
			{
				kind: model.KindBehavioralPattern,
				re:   regexp.MustCompile(`(?i)\b(?:missed|misses|keep missing|skipped?)\s+(?:my |an |the |several )?appointments?\b`),
				render: func(string) string { return "misses appointments" },
			},
			{
				kind: model.KindBehavioralPattern,
				re:   regexp.MustCompile(`(?i)\bi (smoke|drink|vape|exercise)\b`),
				render: func(t string) string { return strings.ToLower(t) + "s regularly" },
			},
		},
		preferenceRules: []captureRule{
			{
				kind: model.KindPreference,
				re:   regexp.MustCompile(`(?i)\bi(?:'d| would)? (?:prefer|rather have|rather)\s+` + topic),
				render: func(t string) string { return "prefers " + t },
			},
			{
				kind: model.KindPreference,
				re:   regexp.MustCompile(`(?i)\b(teleconsult(?:ation)?s?|video (?:calls?|consults?)|(?:morning|afternoon|evening) appointments?)\b`),
				render: func(t string) string { return "prefers " + strings.ToLower(t) },
			},
		},
	}
}

// Extract scans the utterance and returns pattern-sourced candidates.
// Deterministic and side-effect-free; whitespace-only input yields nil.
func (e *PatternExtractor) Extract(text string, conv model.ConversationContext) []model.FactCandidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var candidates []model.FactCandidate
	var safetySpans []span

	add := func(kind model.Kind, factText, rawSpan string) {
		candidates = append(candidates, model.FactCandidate{
			Kind:      kind,
			Text:      strings.TrimSpace(factText),
			Source:    model.SourcePattern,
			RawSpan:   rawSpan,
			Timestamp: conv.TurnTime,
		})
	}

	// Safety-critical rules run first. Their spans are recorded so the
	// generic symptom rule cannot swallow the same mention. Within the
	// allergy rules an earlier (more specific) match also claims its span,
	// so a positive rule cannot re-match inside a negated phrase.
	var allergySpans []span
	for _, r := range e.allergyRules {
		for _, m := range r.re.FindAllStringSubmatchIndex(text, -1) {
			s := span{m[0], m[1]}
			claimed := false
			for _, as := range allergySpans {
				if s.overlaps(as) {
					claimed = true
					break
				}
			}
			if claimed {
				continue
			}
			raw := text[m[0]:m[1]]
			t := ""
			if len(m) > 2 && m[2] >= 0 {
				t = strings.ToLower(strings.TrimSpace(text[m[2]:m[3]]))
			}
			add(r.kind, r.render(t), raw)
			allergySpans = append(allergySpans, s)
			safetySpans = append(safetySpans, s)
		}
	}
	for _, m := range e.emergencyRule.re.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[0]:m[1]]
		add(e.emergencyRule.kind, e.emergencyRule.render(text[m[2]:m[3]]), raw)
		safetySpans = append(safetySpans, span{m[0], m[1]})
	}

	matchTerms := func(r termRule) {
		for _, m := range r.re.FindAllStringSubmatchIndex(text, -1) {
			add(r.kind, r.render(text[m[2]:m[3]]), text[m[0]:m[1]])
		}
	}
	matchCaptures := func(r captureRule) {
		for _, m := range r.re.FindAllStringSubmatchIndex(text, -1) {
			t := ""
			if len(m) > 2 && m[2] >= 0 {
				t = strings.ToLower(strings.TrimSpace(text[m[2]:m[3]]))
			}
			if r.render == nil || (t == "" && len(m) > 2 && m[2] >= 0) {
				continue
			}
			add(r.kind, r.render(t), text[m[0]:m[1]])
		}
	}

	matchTerms(e.criticalMedRule)
	matchTerms(e.conditionRule)

	// Generic medication capture skips phrases already claimed as critical
	for _, m := range e.medicationRule.re.FindAllStringSubmatchIndex(text, -1) {
		t := strings.ToLower(strings.TrimSpace(text[m[2]:m[3]]))
		if t == "" || e.criticalMedRule.re.MatchString(t) {
			continue
		}
		add(model.KindMedication, e.medicationRule.render(t), text[m[0]:m[1]])
	}
	matchTerms(e.medLexiconRule)

	for _, r := range e.familyRules {
		matchCaptures(r)
	}

	// Symptom matches overlapping an allergy or emergency span are dropped:
	// the safety candidate already covers that mention.
	for _, m := range e.symptomRule.re.FindAllStringSubmatchIndex(text, -1) {
		s := span{m[0], m[1]}
		suppressed := false
		for _, ss := range safetySpans {
			if s.overlaps(ss) {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}
		add(model.KindSymptom, e.symptomRule.render(text[m[2]:m[3]]), text[m[0]:m[1]])
	}
	if m := e.painLevelRe.FindStringSubmatch(text); m != nil {
		add(model.KindSymptom, "pain level "+m[1]+"/10", m[0])
	}

	for _, r := range e.behavioralRules {
		matchCaptures(r)
	}
	for _, r := range e.preferenceRules {
		matchCaptures(r)
	}

	return dedupeCandidates(candidates)
}

// dedupeCandidates drops repeats of the same kind+normalized text,
// keeping the first occurrence
func dedupeCandidates(candidates []model.FactCandidate) []model.FactCandidate {
	seen := make(map[string]bool)
	var unique []model.FactCandidate
	for _, c := range candidates {
		key := string(c.Kind) + "|" + NormalizeText(c.Text)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, c)
		}
	}
	return unique
}
