package drillfix

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Loose holds a JSON field that may be absent, null, or of the wrong type.
// Any of those leave Valid false instead of failing the whole document.
type Loose[T any] struct {
	Value T
	Valid bool
}

func (l *Loose[T]) UnmarshalJSON(b []byte) error {
	*l = Loose[T]{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	l.Value, l.Valid = v, true
	return nil
}

func (l Loose[T]) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.Value)
}

func Valid[T any](v T) Loose[T] {
	return Loose[T]{Value: v, Valid: true}
}

// DrillID is a drill's id as written under "patch": strings as-is, numbers and
// booleans as their text. Absent, null, object and array ids leave Valid false.
type DrillID struct {
	Value string
	Valid bool
}

func (id *DrillID) UnmarshalJSON(b []byte) error {
	*id = DrillID{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		id.Value, id.Valid = s, true
	case c == 't' || c == 'f':
		id.Value, id.Valid = string(b), true
	case c == '-' || (c >= '0' && c <= '9'):
		v, ok := numberKey(string(b))
		id.Value, id.Valid = v, ok
	}
	return nil
}

func (id DrillID) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(id.Value)
}

// numberKey renders a JSON number the way it reads back as a key: integers in
// plain decimal, other numbers in shortest round-trip form with a ".0" on
// integral values and an exponent outside [1e-4, 1e16).
func numberKey(lit string) (string, bool) {
	if !strings.ContainsAny(lit, ".eE") {
		if lit == "-0" {
			return "0", true
		}
		return lit, true
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !math.IsInf(f, 0) {
		return "", false
	}
	switch {
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64), true
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, true
}

// Drill is one record of the drills dataset. Only the fields the repair reads are kept.
type Drill struct {
	ID                DrillID                `json:"id"`
	Type              Loose[string]          `json:"type"`
	Unit              Loose[int]             `json:"unit"`
	LegacyID          Loose[string]          `json:"legacy_id"`
	ExpectedResponses Loose[[]Loose[string]] `json:"expected_responses"`
	FrenchFormal      Loose[string]          `json:"french_formal"`
}

type ExerciseStructure struct {
	Exercices []Exercise `json:"exercices"`
}

type Exercise struct {
	Unit       Loose[int]     `json:"unit"`
	ExerciceID Loose[string]  `json:"exercice_id"`
	Drills     ExerciseDrills `json:"drills"`
}

// ExerciseDrills is an exercise's drill list. A value that is not a list leaves
// Valid false. Elements that are not objects are recorded by position in
// NonObjects instead of being decoded.
type ExerciseDrills struct {
	Value      []StructureDrill
	NonObjects []int
	Valid      bool
}

func (l *ExerciseDrills) UnmarshalJSON(b []byte) error {
	*l = ExerciseDrills{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	l.Value = make([]StructureDrill, 0, len(raw))
	for i, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) == 0 || r[0] != '{' {
			l.NonObjects = append(l.NonObjects, i)
			continue
		}
		var d StructureDrill
		if err := json.Unmarshal(r, &d); err != nil {
			return fmt.Errorf("drills[%d]: %w", i, err)
		}
		l.Value = append(l.Value, d)
	}
	l.Valid = true
	return nil
}

func (l ExerciseDrills) Len() int {
	return len(l.Value) + len(l.NonObjects)
}

type StructureDrill struct {
	Number      Loose[int]    `json:"number"`
	French      Loose[string] `json:"french"`
	IsCanonical Loose[bool]   `json:"is_canonical"`
}

type PatchMeta struct {
	Unit        int       `json:"unit"`
	ExerciceID  string    `json:"exercice_id"`
	DrillNumber int       `json:"drill_number"`
	Source      Source    `json:"source"`
	Match       MatchKind `json:"match"`
	LegacyID    string    `json:"legacy_id"`
}

type PatchEntry struct {
	ModelSentence string    `json:"model_sentence"`
	Cues          []string  `json:"cues"`
	Meta          PatchMeta `json:"meta"`
}

type PatchFile struct {
	GeneratedBy                string                `json:"generated_by"`
	DrillsTotalConsidered      int                   `json:"drills_total_considered"`
	DrillsPatched              int                   `json:"drills_patched"`
	PatchedViaExerciseFallback int                   `json:"patched_via_exercise_fallback"`
	Patch                      map[string]PatchEntry `json:"patch"`
}

var ErrNullDocument = errors.New("document is null")

type drillsDocument struct {
	Drills []Drill `json:"drills"`
}

// DecodeDrills reads a {"drills": [...]} document. A missing list yields no drills.
func DecodeDrills(r io.Reader) ([]Drill, error) {
	var doc *drillsDocument
	if err := decodeDocument(r, &doc); err != nil {
		return nil, fmt.Errorf("decode drills: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode drills: %w", ErrNullDocument)
	}
	return doc.Drills, nil
}

func DecodeExerciseStructure(r io.Reader) (ExerciseStructure, error) {
	var doc *ExerciseStructure
	if err := decodeDocument(r, &doc); err != nil {
		return ExerciseStructure{}, fmt.Errorf("decode exercice structure: %w", err)
	}
	if doc == nil {
		return ExerciseStructure{}, fmt.Errorf("decode exercice structure: %w", ErrNullDocument)
	}
	return *doc, nil
}

func decodeDocument(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data after document")
	}
	return nil
}

// EncodePatchFile writes pf as indented UTF-8 JSON with non-ASCII kept literal.
// Patch keys come out sorted, so identical inputs give identical bytes.
func EncodePatchFile(w io.Writer, pf PatchFile) error {
	patch := make(map[string]PatchEntry, len(pf.Patch))
	for id, e := range pf.Patch {
		if e.Cues == nil {
			e.Cues = []string{}
		}
		patch[id] = e
	}
	pf.Patch = patch
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pf); err != nil {
		return fmt.Errorf("encode patch file: %w", err)
	}
	return nil
}
