package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperjump/mixingcompass/internal/hsp"
	"github.com/hyperjump/mixingcompass/internal/models"
)

func vec(d, p, h float64) *hsp.Vector { return &hsp.Vector{D: d, P: p, H: h} }

func TestParseComponents(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []models.ComponentInput
		wantErr bool
	}{
		{
			name: "names with volumes",
			args: []string{"water:1", "ethanol:3"},
			want: []models.ComponentInput{{Solvent: "water", VolumeFraction: 1}, {Solvent: "ethanol", VolumeFraction: 3}},
		},
		{
			name: "default volume",
			args: []string{"ethyl acetate"},
			want: []models.ComponentInput{{Solvent: "ethyl acetate", VolumeFraction: 1}},
		},
		{
			name: "inline vector joined with plus",
			args: []string{"18,1.4,2:2+acetone"},
			want: []models.ComponentInput{{HSP: vec(18, 1.4, 2), VolumeFraction: 2}, {Solvent: "acetone", VolumeFraction: 1}},
		},
		{name: "bad volume", args: []string{"water:lots"}, wantErr: true},
		{name: "bad vector", args: []string{"18,x,2"}, wantErr: true},
		{name: "empty name", args: []string{":2"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseComponents(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseComponents(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseVector(t *testing.T) {
	got, err := parseVector(" 17, 9 ,11")
	if err != nil || got != (hsp.Vector{D: 17, P: 9, H: 11}) {
		t.Errorf("parseVector = %v, %v", got, err)
	}
	if _, err := parseVector("17,9"); err == nil {
		t.Error("two components should fail")
	}
}

func TestParseSolventRef(t *testing.T) {
	tests := []struct {
		in      string
		want    models.SolventRef
		wantErr bool
	}{
		{"Toluene", models.SolventRef{Name: "Toluene"}, false},
		{"Toluene=insoluble", models.SolventRef{Name: "Toluene", Solubility: hsp.SolubilityInsoluble}, false},
		{"Acetone=0.5", models.SolventRef{Name: "Acetone", Solubility: hsp.SolubilityPartial}, false},
		{"=soluble", models.SolventRef{}, true},
		{"Water=maybe", models.SolventRef{}, true},
	}
	for _, tt := range tests {
		got, err := parseSolventRef(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSolventRef(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseSolventRef(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestTargetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	t1 := newTargetFlags(fs, "1")
	t2 := newTargetFlags(fs, "2")
	if err := fs.Parse([]string{"-hsp1", "17,9,11", "-radius1", "5", "-name1", "Resin"}); err != nil {
		t.Fatal(err)
	}
	in, err := t1.input()
	if err != nil {
		t.Fatal(err)
	}
	want := &models.TargetInput{Name: "Resin", HSP: vec(17, 9, 11), Radius: func() *float64 { r := 5.0; return &r }()}
	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("target1 mismatch (-want +got):\n%s", diff)
	}
	if in2, err := t2.input(); err != nil || in2 != nil {
		t.Errorf("unset target2 = %+v, %v; want nil", in2, err)
	}
}

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"flags after positionals move first", []string{"water:1", "-output", "json"}, []string{"-output", "json", "water:1"}},
		{"flags first unchanged", []string{"-all", "toluene"}, []string{"-all", "toluene"}},
		{"negative vector stays positional", []string{"-1,2,3", "water"}, []string{"-1,2,3", "water"}},
		{"empty", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reorderArgs(tt.args); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("reorderArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"toluene"}, "toluene"},
		{[]string{"ethyl", "acetate"}, "ethyl acetate"},
		{[]string{"  "}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := buildQuery(tt.args); got != tt.expected {
			t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
		}
	}
}

func TestCallAPI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"zero-total-volume: mixture total_volume=0"}`))
		}
	}))
	defer ts.Close()

	var out map[string]string
	if err := callAPI(ts.URL, http.MethodGet, "/ok", nil, &out); err != nil || out["status"] != "ok" {
		t.Errorf("ok call = %v, %v", out, err)
	}
	err := callAPI(ts.URL, http.MethodPost, "/api/v1/mixture", map[string]int{"x": 1}, nil)
	if err == nil || errors.Is(err, errUnreachable) || err.Error() != "server returned 400: zero-total-volume: mixture total_volume=0" {
		t.Errorf("error call = %v", err)
	}

	addr := ts.URL
	ts.Close()
	if err := callAPI(addr, http.MethodGet, "/ok", nil, nil); !errors.Is(err, errUnreachable) {
		t.Errorf("closed server error = %v, want unreachable", err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8300
storage:
  database_path: "./solvents.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug || cfg.Server.Port != 8300 {
		t.Errorf("unexpected config: debug=%v port=%d", cfg.Debug, cfg.Server.Port)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
analysis:
  default_radius: 6
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" || cfg.Analysis.DefaultRadius != 6 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfig_missingExplicitPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestWithComponents_directMode(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./db/solvents.db"
  catalog_index_path: "./indices/catalog"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	table := filepath.Join(dir, "solvents.csv")
	if err := os.WriteFile(table, []byte("Solvent,delta_D,delta_P,delta_H\nWater,15.5,16.0,42.3\nEthanol,15.8,8.8,19.4\n"), 0600); err != nil {
		t.Fatal(err)
	}

	output, server, debug := "text", "", false
	cf := &commonFlags{config: &configPath, server: &server, output: &output, debug: &debug}
	summary, err := serverOrDirect(cf, http.MethodPost, "/api/v1/import", nil,
		func(ctx context.Context, c *Components) (*models.ImportSummary, error) {
			return c.Importer.ImportPaths(ctx, []string{table}, false)
		})
	if err != nil || summary.Imported != 2 {
		t.Fatalf("import = %+v, %v", summary, err)
	}

	req := &models.MixtureRequest{Components: []models.ComponentInput{{Solvent: "water", VolumeFraction: 1}, {Solvent: "ethanol", VolumeFraction: 1}}}
	result, err := serverOrDirect(cf, http.MethodPost, "/api/v1/mixture", req,
		func(ctx context.Context, c *Components) (*models.MixtureResult, error) {
			return c.Engine.Mix(ctx, req)
		})
	if err != nil {
		t.Fatal(err)
	}
	if result.Name != "Water + Ethanol" {
		t.Errorf("mixture name = %q", result.Name)
	}
}
