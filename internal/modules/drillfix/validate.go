package drillfix

import "strings"

type SkipReason string

const (
	SkipNotDomainDrill  SkipReason = "not_domain_drill"
	SkipUnitOutOfRange  SkipReason = "unit_out_of_range"
	SkipBadLegacyID     SkipReason = "bad_legacy_id"
	SkipMissingID       SkipReason = "missing_id"
	SkipNoResponse      SkipReason = "no_response"
	SkipNoCandidates    SkipReason = "no_candidates"
	SkipNoModelSentence SkipReason = "no_model_sentence"
)

// drillInput is a drill that passed validation and will be counted as considered.
type drillInput struct {
	ID       string
	Unit     int
	LegacyID string
	Key      LegacyKey
	Response string
}

// validateDrill returns either a usable input or the reason the drill is out of scope.
func (r Rules) validateDrill(d Drill) (drillInput, SkipReason) {
	if !d.Type.Valid || !strings.HasPrefix(d.Type.Value, r.DomainPrefix) {
		return drillInput{}, SkipNotDomainDrill
	}
	if !d.Unit.Valid || d.Unit.Value < r.MinUnit {
		return drillInput{}, SkipUnitOutOfRange
	}
	if !d.LegacyID.Valid {
		return drillInput{}, SkipBadLegacyID
	}
	key, ok := ParseLegacyID(d.LegacyID.Value)
	if !ok {
		return drillInput{}, SkipBadLegacyID
	}
	if !d.ID.Valid {
		return drillInput{}, SkipMissingID
	}
	resp := responseSentence(d)
	if !HasLetters(resp) {
		return drillInput{}, SkipNoResponse
	}
	return drillInput{
		ID:       d.ID.Value,
		Unit:     d.Unit.Value,
		LegacyID: d.LegacyID.Value,
		Key:      key,
		Response: resp,
	}, ""
}

// responseSentence is the first non-blank expected response, else french_formal.
func responseSentence(d Drill) string {
	if d.ExpectedResponses.Valid {
		for _, s := range d.ExpectedResponses.Value {
			if !s.Valid {
				continue
			}
			if t := strings.TrimSpace(s.Value); t != "" {
				return t
			}
		}
	}
	if d.FrenchFormal.Valid {
		return strings.TrimSpace(d.FrenchFormal.Value)
	}
	return ""
}
