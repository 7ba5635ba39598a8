package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/mixingcompass/internal/hsp"
)

const sampleCSV = "\ufeffSolvent,CAS,delta_D,delta_P,delta_H,MVol,source_url\n" +
	"  Acetone ,67-64-1,15.5,10.4,7.0,74.0,https://example.org/acetone\n" +
	"Toluene,108-88-3,18.0,1.4,2.0,106.8,\n" +
	",,1,1,1,,\n" +
	"acetone,,1,1,1,,\n" +
	"Broken,,-1,2,3,,\n" +
	"Typo,,abc,2,3,,\n" +
	"Mystery,,16.0,,,,\n" +
	",,,,,,\n"

func TestParseCSV(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(sampleCSV), "/data/solvents.csv")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	var names []string
	for _, s := range table.Solvents {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"Acetone", "Toluene", "Mystery"}, names); diff != "" {
		t.Errorf("kept solvents mismatch (-want +got):\n%s", diff)
	}
	if len(table.Skipped) != 4 {
		t.Errorf("skipped = %v, want 4 entries (empty name, duplicate, negative, malformed)", table.Skipped)
	}

	acetone := table.Solvents[0]
	v, ok := acetone.HSP.Complete()
	if !ok || v != (hsp.Vector{D: 15.5, P: 10.4, H: 7}) {
		t.Errorf("acetone HSP = %+v, %v", v, ok)
	}
	if acetone.CAS != "67-64-1" || acetone.SourceURL != "https://example.org/acetone" || acetone.SourceFile != "/data/solvents.csv" {
		t.Errorf("acetone metadata = %+v", acetone)
	}
	if acetone.MolarVolume == nil || *acetone.MolarVolume != 74 {
		t.Errorf("acetone molar volume = %v", acetone.MolarVolume)
	}
	if acetone.ID == "" {
		t.Error("ID should be derived from the name")
	}

	mystery := table.Solvents[2]
	if diff := cmp.Diff([]string{hsp.AxisP, hsp.AxisH}, mystery.HSP.Missing()); diff != "" {
		t.Errorf("blank components should stay unknown:\n%s", diff)
	}
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Solvent,delta_D,delta_P\nWater,15.5,16\n"), "x.csv")
	if err == nil || !strings.Contains(err.Error(), "delta_h") {
		t.Errorf("expected missing delta_h column error, got %v", err)
	}
	if _, err := ParseCSV(strings.NewReader(""), "empty.csv"); err == nil {
		t.Error("expected error for an empty table")
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Notes")
	idx, _ := f.NewSheet("HSP")
	f.SetActiveSheet(idx)
	f.SetSheetRow("HSP", "A1", &[]interface{}{"Solvent", "delta_D", "delta_P", "delta_H", "Smiles"})
	f.SetSheetRow("HSP", "A2", &[]interface{}{"Water", 15.5, 16, 42.3, "O"})
	f.SetSheetRow("HSP", "A3", &[]interface{}{"Ethanol", 15.8, 8.8, 19.4})
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	table, err := ParseXLSX(&buf, "solvents.xlsx")
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if len(table.Solvents) != 2 {
		t.Fatalf("solvents = %d, want 2", len(table.Solvents))
	}
	water := table.Solvents[0]
	if v, ok := water.HSP.Complete(); !ok || v != (hsp.Vector{D: 15.5, P: 16, H: 42.3}) {
		t.Errorf("water HSP = %+v, %v", v, ok)
	}
	if water.SMILES != "O" {
		t.Errorf("water SMILES = %q", water.SMILES)
	}
}

func TestParseXLSX_NoSolventSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Polymer")
	var buf bytes.Buffer
	_, _ = f.WriteTo(&buf)
	if _, err := ParseXLSX(&buf, "polymers.xlsx"); err == nil {
		t.Error("expected error when no sheet has a Solvent column")
	}
}

func TestParseComponent(t *testing.T) {
	tests := []struct {
		in      string
		want    *float64
		wantErr bool
	}{
		{"", nil, false},
		{"NaN", nil, false},
		{"17.5", fptr(17.5), false},
		{"0", fptr(0), false},
		{"-0.1", nil, true},
		{"abc", nil, true},
		{"Inf", nil, true},
	}
	for _, tt := range tests {
		got, err := parseComponent(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseComponent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("parseComponent(%q) mismatch:\n%s", tt.in, diff)
		}
	}
}

func fptr(v float64) *float64 { return &v }
