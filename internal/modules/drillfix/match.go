package drillfix

type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchOverlap MatchKind = "overlap"
)

// PickBest chooses the candidate whose response best matches response.
// An exact normalized match wins outright. Otherwise the highest token overlap
// wins, earliest first on ties, and the first candidate is the default when
// nothing can be scored. candidates must be non-empty; an empty list yields the
// zero Candidate.
func PickBest(candidates []Candidate, response string) (Candidate, MatchKind) {
	if len(candidates) == 0 {
		return Candidate{}, MatchOverlap
	}
	respNorm := Normalize(response)
	for _, c := range candidates {
		if c.ResponseNorm == respNorm {
			return c, MatchExact
		}
	}

	respSet := tokenSet(Tokenize(respNorm))
	best := candidates[0]
	bestScore := -1.0
	for _, c := range candidates {
		candSet := tokenSet(Tokenize(c.ResponseNorm))
		if len(candSet) == 0 || len(respSet) == 0 {
			continue
		}
		if score := overlapScore(candSet, respSet); score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best, MatchOverlap
}

// overlapScore is |a ∩ b| / max(|a|, |b|).
func overlapScore(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	return float64(inter) / float64(max(1, len(b)))
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
