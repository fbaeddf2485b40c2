package drillfix

import (
	"errors"
	"fmt"
	"strings"
)

// Candidate pairs an exercise's model sentence with one of its drill responses.
type Candidate struct {
	ModelSentence string
	Response      string
	ResponseNorm  string
}

type exerciseKey struct {
	Unit       int
	ExerciseID string
}

type drillKey struct {
	exerciseKey
	Number int
}

type IndexStats struct {
	Exercises        int
	ExercisesSkipped int
	Candidates       int
}

// Index maps reference drills to candidates by full drill key and by exercise.
// It is read-only once built; returned slices must not be modified.
type Index struct {
	byKey      map[drillKey][]Candidate
	byExercise map[exerciseKey][]Candidate
	stats      IndexStats
}

// ErrMalformedExercise reports an indexable exercise whose drill list holds a
// value that is not an object.
var ErrMalformedExercise = errors.New("malformed exercise")

// BuildIndex indexes every exercise with a unit, an id and a non-empty drill
// list. Such an exercise with a non-object drill entry fails the whole build.
func BuildIndex(structure ExerciseStructure) (*Index, error) {
	idx := &Index{
		byKey:      map[drillKey][]Candidate{},
		byExercise: map[exerciseKey][]Candidate{},
	}
	for i, ex := range structure.Exercices {
		if !ex.Unit.Valid || !ex.ExerciceID.Valid || !ex.Drills.Valid || ex.Drills.Len() == 0 {
			idx.stats.ExercisesSkipped++
			continue
		}
		if len(ex.Drills.NonObjects) > 0 {
			return nil, fmt.Errorf("%w: exercices[%d] (unit %d, %s): drills[%d] is not an object",
				ErrMalformedExercise, i, ex.Unit.Value, ex.ExerciceID.Value, ex.Drills.NonObjects[0])
		}
		model := canonicalModel(ex.Drills.Value)
		if !HasLetters(model) {
			idx.stats.ExercisesSkipped++
			continue
		}
		exKey := exerciseKey{Unit: ex.Unit.Value, ExerciseID: ex.ExerciceID.Value}
		for _, d := range ex.Drills.Value {
			if !d.Number.Valid || !d.French.Valid {
				continue
			}
			resp := strings.TrimSpace(d.French.Value)
			if resp == "" {
				continue
			}
			c := Candidate{ModelSentence: model, Response: resp, ResponseNorm: Normalize(resp)}
			k := drillKey{exerciseKey: exKey, Number: d.Number.Value}
			idx.byKey[k] = append(idx.byKey[k], c)
			idx.byExercise[exKey] = append(idx.byExercise[exKey], c)
			idx.stats.Candidates++
		}
		idx.stats.Exercises++
	}
	return idx, nil
}

// canonicalModel picks the first canonical drill with text, else the first drill with text.
func canonicalModel(drills []StructureDrill) string {
	for _, d := range drills {
		if d.IsCanonical.Valid && d.IsCanonical.Value && hasText(d) {
			return strings.TrimSpace(d.French.Value)
		}
	}
	for _, d := range drills {
		if hasText(d) {
			return strings.TrimSpace(d.French.Value)
		}
	}
	return ""
}

func hasText(d StructureDrill) bool {
	return d.French.Valid && strings.TrimSpace(d.French.Value) != ""
}

func (idx *Index) ByKey(unit int, exerciseID string, number int) []Candidate {
	return idx.byKey[drillKey{exerciseKey: exerciseKey{Unit: unit, ExerciseID: exerciseID}, Number: number}]
}

func (idx *Index) ByExercise(unit int, exerciseID string) []Candidate {
	return idx.byExercise[exerciseKey{Unit: unit, ExerciseID: exerciseID}]
}

func (idx *Index) Stats() IndexStats {
	return idx.stats
}
