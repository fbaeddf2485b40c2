package drillfix

import "unicode/utf8"

const DefaultMaxCueRunes = 120

// ExtractCue returns the fragment of response that differs from model, trimmed of
// their common leading and trailing tokens. It returns "" when no safe, informative
// cue exists.
func ExtractCue(model, response string) string {
	return extractCue(model, response, DefaultMaxCueRunes)
}

func (r Rules) ExtractCue(model, response string) string {
	return extractCue(model, response, r.MaxCueRunes)
}

func extractCue(model, response string, maxRunes int) string {
	modelNorm := Normalize(model)
	responseNorm := Normalize(response)

	modelToks := Tokenize(modelNorm)
	respToks := Tokenize(responseNorm)
	rawToks := Tokenize(response)
	if len(modelToks) == 0 || len(respToks) == 0 || len(rawToks) == 0 {
		return ""
	}
	// raw tokens are sliced by normalized positions, so the two must line up
	if len(respToks) != len(rawToks) {
		return ""
	}

	start := 0
	for start < len(modelToks) && start < len(respToks) && modelToks[start] == respToks[start] {
		start++
	}
	end := 0
	for end < len(modelToks)-start && end < len(respToks)-start &&
		modelToks[len(modelToks)-1-end] == respToks[len(respToks)-1-end] {
		end++
	}

	cue := JoinTokens(rawToks[start : len(rawToks)-end])
	cueNorm := Normalize(cue)
	if cueNorm == "" || cueNorm == modelNorm || cueNorm == responseNorm {
		return ""
	}
	if utf8.RuneCountInString(cue) > maxRunes {
		return ""
	}
	return cue
}
