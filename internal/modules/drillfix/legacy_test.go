package drillfix

import "testing"

func TestParseLegacyID_Valid(t *testing.T) {
	cases := map[string]LegacyKey{
		"fsi_x_B-2_03":       {ExerciseID: "B2", DrillNumber: 3},
		"fsi_vol2_C-010_007": {ExerciseID: "C10", DrillNumber: 7},
		"fsi_x_A-0_000":      {ExerciseID: "A0", DrillNumber: 0},
		"fsi_u-14_Z-12_40":   {ExerciseID: "Z12", DrillNumber: 40},
	}
	for in, want := range cases {
		got, ok := ParseLegacyID(in)
		if !ok {
			t.Fatalf("ParseLegacyID(%q) rejected", in)
		}
		if got != want {
			t.Fatalf("ParseLegacyID(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestParseLegacyID_Rejects(t *testing.T) {
	bad := []string{
		"",
		"fsi__B-2_03",
		"fsi_x_b-2_03",
		"fsi_x_B2_03",
		"fsi_x_B-2_",
		"fsi_x_B-_3",
		"fsi_x_B-2_3a",
		"fsi_x_y_B-2_3",
		"xfsi_x_B-2_3",
		"fsi_x_B-2_03_1",
		"fsi_x_BB-2_3",
		"fsi_x_B-99999999999999999999_1",
		"fsi_x_B-٢_3",
		"fsi_x_B-2_03\n",
	}
	for _, in := range bad {
		if got, ok := ParseLegacyID(in); ok {
			t.Fatalf("ParseLegacyID(%q) accepted as %+v", in, got)
		}
	}
}
