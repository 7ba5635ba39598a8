package hsp

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestVector_Total(t *testing.T) {
	if got := (Vector{2, 3, 6}).Total(); math.Abs(got-7) > 1e-12 {
		t.Errorf("Total = %v, want 7", got)
	}
}

func TestOptionalVector_Complete(t *testing.T) {
	d, h := 17.0, 7.0
	partial := OptionalVector{D: &d, H: &h}
	if _, ok := partial.Complete(); ok {
		t.Error("partial vector reported complete")
	}
	if got := partial.Missing(); !reflect.DeepEqual(got, []string{AxisP}) {
		t.Errorf("Missing = %v", got)
	}
	v, ok := Known(Vector{17, 8, 7}).Complete()
	if !ok || v != (Vector{17, 8, 7}) {
		t.Errorf("Complete = %v, %v", v, ok)
	}
}

func TestOptionalVector_JSONNulls(t *testing.T) {
	var o OptionalVector
	if err := json.Unmarshal([]byte(`{"delta_d": 15.5, "delta_p": null}`), &o); err != nil {
		t.Fatal(err)
	}
	if got := o.Missing(); !reflect.DeepEqual(got, []string{AxisP, AxisH}) {
		t.Errorf("Missing = %v", got)
	}
}

func TestTarget_Validate(t *testing.T) {
	if err := (Target{Radius: 4}).Validate(); err != nil {
		t.Errorf("valid target: %v", err)
	}
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := (Target{Radius: r}).Validate(); err == nil {
			t.Errorf("radius %v accepted", r)
		}
	}
}

func TestClassifySolubility(t *testing.T) {
	tests := []struct {
		score float64
		want  Solubility
	}{
		{1, SolubilitySoluble},
		{0.7, SolubilitySoluble},
		{0.69, SolubilityPartial},
		{0.3, SolubilityPartial},
		{0.29, SolubilityInsoluble},
		{0, SolubilityInsoluble},
	}
	for _, tt := range tests {
		if got := ClassifySolubility(tt.score); got != tt.want {
			t.Errorf("ClassifySolubility(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestSolubility_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Solubility
		wantErr bool
	}{
		{`"soluble"`, SolubilitySoluble, false},
		{`"Partial"`, SolubilityPartial, false},
		{`0.1`, SolubilityInsoluble, false},
		{`0.8`, SolubilitySoluble, false},
		{`null`, SolubilityUnknown, false},
		{`1.5`, SolubilityUnknown, true},
		{`"maybe"`, SolubilityUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var s Solubility
			err := json.Unmarshal([]byte(tt.in), &s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && s != tt.want {
				t.Errorf("got %q, want %q", s, tt.want)
			}
		})
	}
}

func TestWarning_String(t *testing.T) {
	d := 1.0
	w := IncompletePoint(SolventPoint{Name: "mystery", HSP: OptionalVector{D: &d}})
	if got := w.String(); got != "incomplete-point: mystery (missing delta_p, delta_h)" {
		t.Errorf("String = %q", got)
	}
}
