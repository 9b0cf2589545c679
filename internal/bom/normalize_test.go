package bom

import "testing"

func TestFindDesignatorColumn(t *testing.T) {
	profile := &ImportProfile{
		DesignatorColumn:           "Designator",
		AlternateDesignatorColumns: []string{"Reference", "RefDes"},
	}

	tests := []struct {
		name     string
		headers  []string
		profile  *ImportProfile
		want     string
		wantOK   bool
	}{
		{
			name:    "primary present",
			headers: []string{"Designator", "Value"},
			profile: profile,
			want:    "Designator",
			wantOK:  true,
		},
		{
			name:    "primary wins over alternate",
			headers: []string{"Reference", "Designator"},
			profile: profile,
			want:    "Designator",
			wantOK:  true,
		},
		{
			name:    "first alternate wins",
			headers: []string{"RefDes", "Reference", "Value"},
			profile: profile,
			want:    "Reference",
			wantOK:  true,
		},
		{
			name:    "second alternate",
			headers: []string{"RefDes", "Value"},
			profile: profile,
			want:    "RefDes",
			wantOK:  true,
		},
		{
			name:    "nothing matches",
			headers: []string{"Part", "Value"},
			profile: profile,
			wantOK:  false,
		},
		{
			name:    "nil headers",
			headers: nil,
			profile: profile,
			wantOK:  false,
		},
		{
			name:    "nil profile",
			headers: []string{"Designator"},
			profile: nil,
			wantOK:  false,
		},
		{
			name:    "profile without alternates",
			headers: []string{"Reference"},
			profile: &ImportProfile{DesignatorColumn: "Designator"},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDesignatorColumn(tt.headers, tt.profile)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("column = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	profile := &ImportProfile{
		FieldMappings: []FieldMapping{
			{From: "Qty", To: "Quantity"},
			{From: "QTY", To: "Quantity"},
			{From: "MPN", To: "Mfr. Part #"},
		},
	}

	t.Run("alias rewritten to canonical", func(t *testing.T) {
		headers := []string{"Reference", "Qty", "MPN"}
		row := RawRow{"Reference": "R1, R2", "Qty": "2", "MPN": "RC0603FR-0710KL"}

		got := NormalizeRow(row, headers, profile, "Reference")

		if got["Quantity"] != "2" {
			t.Errorf("Quantity = %q, want %q", got["Quantity"], "2")
		}
		if got["Mfr. Part #"] != "RC0603FR-0710KL" {
			t.Errorf("Mfr. Part # = %q", got["Mfr. Part #"])
		}
		if got["Designator"] != "R1, R2" {
			t.Errorf("Designator = %q, want %q", got["Designator"], "R1, R2")
		}
		if _, ok := got["Qty"]; ok {
			t.Error("alias key Qty should not pass through")
		}
	})

	t.Run("alias never clobbers populated canonical", func(t *testing.T) {
		headers := []string{"Quantity", "Qty"}
		row := RawRow{"Quantity": "5", "Qty": "99"}

		got := NormalizeRow(row, headers, profile, "")

		if got["Quantity"] != "5" {
			t.Errorf("Quantity = %q, want direct column value %q", got["Quantity"], "5")
		}
	})

	t.Run("existing designator not overwritten", func(t *testing.T) {
		headers := []string{"Designator", "Reference"}
		row := RawRow{"Designator": "R1", "Reference": "R99"}

		got := NormalizeRow(row, headers, profile, "Reference")

		if got["Designator"] != "R1" {
			t.Errorf("Designator = %q, want %q", got["Designator"], "R1")
		}
	})

	t.Run("nil profile degrades to pass-through plus copy", func(t *testing.T) {
		headers := []string{"Reference", "Qty"}
		row := RawRow{"Reference": "C4", "Qty": "1"}

		got := NormalizeRow(row, headers, nil, "Reference")

		if got["Designator"] != "C4" {
			t.Errorf("Designator = %q, want %q", got["Designator"], "C4")
		}
		if got["Qty"] != "1" {
			t.Errorf("Qty = %q, want pass-through %q", got["Qty"], "1")
		}
	})

	t.Run("unmapped fields pass through", func(t *testing.T) {
		headers := []string{"Designator", "Footprint"}
		row := RawRow{"Designator": "U1", "Footprint": "SOIC-8"}

		got := NormalizeRow(row, headers, profile, "Designator")

		if got["Footprint"] != "SOIC-8" {
			t.Errorf("Footprint = %q", got["Footprint"])
		}
	})
}

func TestNormalizedHeaders(t *testing.T) {
	profile := &ImportProfile{
		FieldMappings: []FieldMapping{
			{From: "Qty", To: "Quantity"},
			{From: "QTY", To: "Quantity"},
		},
	}

	got := NormalizedHeaders([]string{"Reference", "Qty", "QTY", "Value"}, profile, "Reference")
	want := []string{"Reference", "Quantity", "Value", "Designator"}

	if len(got) != len(want) {
		t.Fatalf("headers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
