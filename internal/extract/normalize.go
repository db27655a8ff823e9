package extract

import "strings"

// stopwords excluded from token comparison so that phrasing differences
// ("allergy to penicillin" vs "penicillin allergy") do not defeat matching
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "of": true,
	"is": true, "am": true, "are": true, "was": true, "has": true,
	"have": true, "had": true, "my": true, "i": true, "in": true,
	"and": true, "that": true, "i'm": true, "been": true, "for": true,
}

// negationMarkers signal that a statement denies rather than asserts a fact
var negationMarkers = []string{
	"no ", "not ", "never ", "denies ", "without ", "don't ", "doesn't ",
	"isn't ", "aren't ", "stopped ", "no known",
}

// NormalizeText lowercases, strips punctuation and collapses whitespace.
func NormalizeText(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '\'', r == '/':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the normalized comparison tokens of a text, singular-ized
// and with stopwords and negation words removed.
func Tokens(text string) []string {
	var tokens []string
	for _, tok := range strings.Fields(NormalizeText(text)) {
		if stopwords[tok] || tok == "no" || tok == "not" || tok == "never" || tok == "known" {
			continue
		}
		// crude singularization keeps "allergies"/"allergy" comparable
		if strings.HasSuffix(tok, "ies") {
			tok = strings.TrimSuffix(tok, "ies") + "y"
		} else if strings.HasSuffix(tok, "s") && len(tok) > 3 {
			tok = strings.TrimSuffix(tok, "s")
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Similarity computes the token-overlap (Jaccard) ratio of two texts in
// [0,1]. Containment of one normalized text in the other counts as 1.
func Similarity(a, b string) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 1
	}

	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	union := len(set)
	overlap := 0
	for _, t := range tb {
		if set[t] {
			overlap++
			set[t] = false // count each shared token once
		} else {
			union++
		}
	}
	return float64(overlap) / float64(union)
}

// Negated reports whether a statement denies the fact it mentions
// ("no known allergies", "not allergic to penicillin").
func Negated(text string) bool {
	lower := " " + strings.ToLower(strings.TrimSpace(text))
	for _, marker := range negationMarkers {
		if strings.Contains(lower, " "+marker) {
			return true
		}
	}
	return false
}
