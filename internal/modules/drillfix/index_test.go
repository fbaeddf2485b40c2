package drillfix

import (
	"errors"
	"strings"
	"testing"
)

const indexFixture = `{"exercices": [
  {"unit": 14, "exercice_id": "B2", "drills": [
    {"number": 1, "french": "  Il est arrivé hier soir "},
    {"number": 2, "french": "Il est arrivé hier matin", "is_canonical": true},
    {"number": "3", "french": "bad number"},
    {"number": 4, "french": "   "},
    {"number": 5, "french": 42},
    {"number": 6, "french": "Il est arrivé ce matin"}
  ]},
  {"unit": "14", "exercice_id": "B3", "drills": [{"number": 1, "french": "x"}]},
  {"unit": 14, "exercice_id": "B4", "drills": []},
  {"unit": 14, "exercice_id": "B5", "drills": [{"number": 1, "french": "123 ..."}]},
  {"unit": 15, "exercice_id": "A1", "drills": [
    {"number": 1, "french": "Bonjour"},
    {"number": 1, "french": "Salut"}
  ]},
  {"unit": 16, "exercice_id": "C1", "drills": [
    {"number": 1, "french": "Premier"},
    {"number": 2, "french": "Second", "is_canonical": "yes"}
  ]}
]}`

func mustBuildIndex(t *testing.T, doc string) *Index {
	t.Helper()
	structure, err := DecodeExerciseStructure(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeExerciseStructure: %v", err)
	}
	idx, err := BuildIndex(structure)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return idx
}

func TestBuildIndex_CanonicalModelAndBuckets(t *testing.T) {
	idx := mustBuildIndex(t, indexFixture)

	got := idx.ByKey(14, "B2", 1)
	if len(got) != 1 {
		t.Fatalf("expected one candidate for 14|B2|1, got %d", len(got))
	}
	if got[0].ModelSentence != "Il est arrivé hier matin" {
		t.Fatalf("unexpected model sentence %q", got[0].ModelSentence)
	}
	if got[0].Response != "Il est arrivé hier soir" || got[0].ResponseNorm != "il est arrivé hier soir" {
		t.Fatalf("unexpected response %+v", got[0])
	}
	for _, n := range []int{3, 4, 5} {
		if c := idx.ByKey(14, "B2", n); len(c) != 0 {
			t.Fatalf("expected no candidate for drill %d, got %+v", n, c)
		}
	}

	ex := idx.ByExercise(14, "B2")
	if len(ex) != 3 {
		t.Fatalf("expected 3 exercise candidates, got %d", len(ex))
	}
	wantOrder := []string{"Il est arrivé hier soir", "Il est arrivé hier matin", "Il est arrivé ce matin"}
	for i, c := range ex {
		if c.Response != wantOrder[i] {
			t.Fatalf("exercise candidate %d = %q, want %q", i, c.Response, wantOrder[i])
		}
	}
}

func TestBuildIndex_SkipsInvalidExercises(t *testing.T) {
	idx := mustBuildIndex(t, indexFixture)
	for _, id := range []string{"B3", "B4", "B5"} {
		if c := idx.ByExercise(14, id); len(c) != 0 {
			t.Fatalf("expected exercise %s skipped, got %+v", id, c)
		}
	}
	stats := idx.Stats()
	if stats.Exercises != 3 || stats.ExercisesSkipped != 3 || stats.Candidates != 7 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestBuildIndex_FallsBackToFirstTextAndKeepsDuplicates(t *testing.T) {
	idx := mustBuildIndex(t, indexFixture)

	dup := idx.ByKey(15, "A1", 1)
	if len(dup) != 2 || dup[0].Response != "Bonjour" || dup[1].Response != "Salut" {
		t.Fatalf("unexpected duplicate bucket %+v", dup)
	}
	if dup[0].ModelSentence != "Bonjour" {
		t.Fatalf("expected first drill as model, got %q", dup[0].ModelSentence)
	}

	// is_canonical must be a JSON bool
	c := idx.ByKey(16, "C1", 2)
	if len(c) != 1 || c[0].ModelSentence != "Premier" {
		t.Fatalf("unexpected model for C1: %+v", c)
	}
}

func TestBuildIndex_EveryValidDrillInExactlyOneBucketEach(t *testing.T) {
	structure, err := DecodeExerciseStructure(strings.NewReader(indexFixture))
	if err != nil {
		t.Fatalf("DecodeExerciseStructure: %v", err)
	}
	idx, err := BuildIndex(structure)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	keyTotal := 0
	for _, c := range idx.byKey {
		keyTotal += len(c)
	}
	exTotal := 0
	for _, c := range idx.byExercise {
		exTotal += len(c)
	}
	if keyTotal != idx.Stats().Candidates || exTotal != idx.Stats().Candidates {
		t.Fatalf("bucket totals %d/%d, candidates %d", keyTotal, exTotal, idx.Stats().Candidates)
	}
}

func TestBuildIndex_Empty(t *testing.T) {
	idx, err := BuildIndex(ExerciseStructure{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.ByExercise(14, "B2") != nil || idx.Stats() != (IndexStats{}) {
		t.Fatalf("expected empty index")
	}
}

func TestBuildIndex_NonObjectDrillFailsBuild(t *testing.T) {
	doc := `{"exercices": [
	  {"unit": 14, "exercice_id": "B2", "drills": ["junk",
	    {"number": 3, "french": "Il est arrivé hier matin", "is_canonical": true}]}
	]}`
	structure, err := DecodeExerciseStructure(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeExerciseStructure: %v", err)
	}
	idx, err := BuildIndex(structure)
	if !errors.Is(err, ErrMalformedExercise) || idx != nil {
		t.Fatalf("expected ErrMalformedExercise, got %v", err)
	}
	if !strings.Contains(err.Error(), "drills[0]") {
		t.Fatalf("error should name the entry: %v", err)
	}
}

func TestBuildIndex_NonObjectDrillInSkippedExerciseIsIgnored(t *testing.T) {
	idx := mustBuildIndex(t, `{"exercices": [
	  {"unit": "14", "exercice_id": "B2", "drills": ["junk"]},
	  {"unit": 14, "exercice_id": "B3", "drills": [{"number": 1, "french": "Bonjour"}]}
	]}`)
	if st := idx.Stats(); st.Exercises != 1 || st.ExercisesSkipped != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}
