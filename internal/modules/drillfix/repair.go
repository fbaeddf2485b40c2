package drillfix

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/neurobridge-drillfix/internal/observability"
	"github.com/yungbote/neurobridge-drillfix/internal/platform/logger"
)

type Source string

const (
	SourceByKey      Source = "byKey"
	SourceByExercise Source = "byExercise"
)

// Report accounts for every input drill: each one is patched, replaced by a later
// drill with the same id, or skipped for exactly one reason.
type Report struct {
	Drills     int
	Considered int
	Patched    int
	Fallback   int
	Replaced   int
	Skipped    map[SkipReason]int
}

func (r Report) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

type Repairer struct {
	log     *logger.Logger
	rules   Rules
	metrics *observability.RunMetrics
}

func NewRepairer(log *logger.Logger, rules Rules) *Repairer {
	if log == nil {
		log = logger.Nop()
	}
	return &Repairer{
		log:     log.With("component", "Repairer"),
		rules:   rules,
		metrics: observability.NewRunMetrics(),
	}
}

// WithMetrics records run counters into m instead of a private set.
func (r *Repairer) WithMetrics(m *observability.RunMetrics) *Repairer {
	if m != nil {
		r.metrics = m
	}
	return r
}

func (r *Repairer) Metrics() *observability.RunMetrics {
	return r.metrics
}

// Run builds a patch entry for every in-scope drill that can be matched against idx.
func (r *Repairer) Run(ctx context.Context, drills []Drill, idx *Index) (PatchFile, Report) {
	_, span := observability.StartSpan(ctx, "drillfix.repair", attribute.Int("drillfix.drills", len(drills)))
	defer span.End()

	pf := PatchFile{
		GeneratedBy: r.rules.GeneratedBy,
		Patch:       map[string]PatchEntry{},
	}
	rep := Report{Drills: len(drills), Skipped: map[SkipReason]int{}}
	skip := func(d Drill, reason SkipReason) {
		rep.Skipped[reason]++
		r.log.Debug("drill skipped", "drill_id", d.ID.Value, "legacy_id", d.LegacyID.Value, "reason", reason)
	}

	for _, d := range drills {
		in, reason := r.rules.validateDrill(d)
		if reason != "" {
			skip(d, reason)
			continue
		}
		rep.Considered++

		source := SourceByKey
		candidates := idx.ByKey(in.Unit, in.Key.ExerciseID, in.Key.DrillNumber)
		if len(candidates) == 0 {
			source = SourceByExercise
			candidates = idx.ByExercise(in.Unit, in.Key.ExerciseID)
		}
		if len(candidates) == 0 {
			skip(d, SkipNoCandidates)
			continue
		}

		cand, match := PickBest(candidates, in.Response)
		// BuildIndex only admits letter-bearing models; this guards hand-built indices.
		model := strings.TrimSpace(cand.ModelSentence)
		if !HasLetters(model) {
			skip(d, SkipNoModelSentence)
			continue
		}

		cues := []string{}
		if cue := r.rules.ExtractCue(model, in.Response); cue != "" {
			cues = append(cues, cue)
		}
		entry := PatchEntry{
			ModelSentence: model,
			Cues:          cues,
			Meta: PatchMeta{
				Unit:        in.Unit,
				ExerciceID:  in.Key.ExerciseID,
				DrillNumber: in.Key.DrillNumber,
				Source:      source,
				Match:       match,
				LegacyID:    in.LegacyID,
			},
		}

		// a later drill with the same id replaces the earlier entry
		if prev, ok := pf.Patch[in.ID]; ok {
			rep.Replaced++
			rep.Patched--
			if prev.Meta.Source == SourceByExercise {
				rep.Fallback--
			}
			r.log.Warn("duplicate drill id; keeping the later drill", "drill_id", in.ID)
		}
		pf.Patch[in.ID] = entry
		rep.Patched++
		if source == SourceByExercise {
			rep.Fallback++
		}
	}

	pf.DrillsTotalConsidered = rep.Considered
	pf.DrillsPatched = rep.Patched
	pf.PatchedViaExerciseFallback = rep.Fallback

	r.record(pf, rep)
	span.SetAttributes(
		attribute.Int("drillfix.considered", rep.Considered),
		attribute.Int("drillfix.patched", rep.Patched),
		attribute.Int("drillfix.fallback", rep.Fallback),
	)
	kvs := []interface{}{
		"drills", rep.Drills,
		"considered", rep.Considered,
		"patched", rep.Patched,
		"fallback", rep.Fallback,
		"replaced", rep.Replaced,
	}
	for reason, n := range rep.Skipped {
		kvs = append(kvs, "skipped_"+string(reason), n)
	}
	r.log.Info("repair finished", kvs...)
	return pf, rep
}

// record adds the outcome of a run to the metrics; counters only see final entries,
// so replaced duplicates are not counted as patched.
func (r *Repairer) record(pf PatchFile, rep Report) {
	m := r.metrics
	m.Drills.Add(float64(rep.Drills))
	m.Considered.Add(float64(rep.Considered))
	m.Patched.Add(float64(rep.Patched))
	m.Fallback.Add(float64(rep.Fallback))
	for reason, n := range rep.Skipped {
		m.Skipped.Add(float64(n), string(reason))
	}
	for _, e := range pf.Patch {
		m.Matches.Inc(string(e.Meta.Source), string(e.Meta.Match))
	}
}
