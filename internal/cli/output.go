// Package cli formats mixingcompass results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/mixingcompass/internal/hsp"
	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/scene"
	"github.com/hyperjump/mixingcompass/pkg/utils"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one tab-separated line per result, for shell pipelines.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts text, compact or json.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

const rule = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteMixture writes a mixture result.
func WriteMixture(w io.Writer, m *models.MixtureResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, m)
	case OutputCompact:
		_, err := fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\n", m.Name, m.HSP.D, m.HSP.P, m.HSP.H)
		return err
	}
	fmt.Fprintf(w, "\nMixture: %s\n", m.Name)
	fmt.Fprintf(w, "  δD %.2f  δP %.2f  δH %.2f  (δT %.2f)\n\n", m.HSP.D, m.HSP.P, m.HSP.H, m.HSP.Total())
	fmt.Fprintf(w, "  %-28s %8s %7s %7s %7s\n", "Solvent", "Fraction", "δD", "δP", "δH")
	for _, c := range m.Components {
		fmt.Fprintf(w, "  %-28s %7.1f%% %7.2f %7.2f %7.2f\n",
			utils.Truncate(c.Solvent, 28), c.Normalized*100, c.HSP.D, c.HSP.P, c.HSP.H)
	}
	fmt.Fprintln(w)
	return nil
}

// WriteRED writes solvents ranked by RED against the target.
func WriteRED(w io.Writer, r *models.REDResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, r)
	case OutputCompact:
		for _, e := range r.Results {
			fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%s\n", e.Solvent, e.RED, e.Distance, yesNo(e.Compatible))
		}
		return nil
	}
	t := r.Target
	fmt.Fprintf(w, "\nTarget: %s  δD %.2f  δP %.2f  δH %.2f  R0 %.2f\n\n", targetName(t), t.Center.D, t.Center.P, t.Center.H, t.Radius)
	fmt.Fprintf(w, "  %4s  %-28s %7s %8s  %s\n", "Rank", "Solvent", "RED", "Ra", "Inside")
	for i, e := range r.Results {
		fmt.Fprintf(w, "  %4d  %-28s %7.3f %8.3f  %s\n", i+1, utils.Truncate(e.Solvent, 28), e.RED, e.Distance, yesNo(e.Compatible))
	}
	writeWarnings(w, r.Warnings)
	fmt.Fprintln(w)
	return nil
}

// WriteScene writes a scene. Text output summarizes the traces and ranges;
// json output is the full scene for a renderer.
func WriteScene(w io.Writer, s *scene.Scene, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, s)
	case OutputCompact:
		for _, a := range s.Solvents {
			fmt.Fprint(w, a.Name)
			for _, r := range a.RED {
				fmt.Fprintf(w, "\t%.3f", r.RED)
			}
			fmt.Fprintln(w)
		}
		return nil
	}
	l := s.Layout
	fmt.Fprintf(w, "\n%s\n%s\n", l.Title, rule)
	for _, tr := range s.Traces {
		switch tr.Kind {
		case scene.KindSurface:
			rows, cols := 0, 0
			if tr.Surface != nil && len(tr.Surface.X) > 0 {
				rows, cols = len(tr.Surface.X), len(tr.Surface.X[0])
			}
			fmt.Fprintf(w, "surface  %-24s %dx%d grid  %s\n", tr.Name, rows, cols, tr.Style.Color)
		case scene.KindMarker:
			fmt.Fprintf(w, "marker   %-24s (%.2f, %.2f, %.2f)\n", tr.Name, tr.X[0], tr.Y[0], tr.Z[0])
		case scene.KindPoints:
			fmt.Fprintf(w, "points   %-24s %d solvents\n", tr.Name, len(tr.X))
		}
	}
	fmt.Fprintf(w, "\n%s: [%.1f, %.1f]\n", l.XAxis.Title, l.XAxis.Range[0], l.XAxis.Range[1])
	fmt.Fprintf(w, "%s: [%.1f, %.1f]\n", l.YAxis.Title, l.YAxis.Range[0], l.YAxis.Range[1])
	fmt.Fprintf(w, "%s: [%.1f, %.1f]\n", l.ZAxis.Title, l.ZAxis.Range[0], l.ZAxis.Range[1])
	writeWarnings(w, s.Warnings)
	fmt.Fprintln(w)
	return nil
}

// WriteSearchResults writes catalog search results.
func WriteSearchResults(w io.Writer, r *models.SolventSearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, r)
	case OutputCompact:
		for _, h := range r.Results {
			fmt.Fprintf(w, "%s\t%s\t%s\n", h.Solvent.Name, h.Solvent.CAS, formatHSP(h.Solvent.HSP))
		}
		return nil
	}
	fmt.Fprintf(w, "\nFound %d solvents in %dms", r.Total, r.QueryTime)
	if r.AutoFuzzy {
		fmt.Fprint(w, " (fuzzy)")
	}
	fmt.Fprintln(w)
	if r.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean %q?\n", r.Suggestion)
	}
	fmt.Fprintln(w)
	for _, h := range r.Results {
		s := h.Solvent
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%s", s.Name)
		if s.CAS != "" {
			fmt.Fprintf(w, "  [CAS %s]", s.CAS)
		}
		if h.Score > 0 {
			fmt.Fprintf(w, "  score %.3f", h.Score)
		}
		fmt.Fprintf(w, "\nHSP: %s\n", formatHSP(s.HSP))
		if s.SMILES != "" {
			fmt.Fprintf(w, "SMILES: %s\n", utils.Truncate(s.SMILES, 60))
		}
		if s.SourceURL != "" {
			fmt.Fprintf(w, "Source: %s\n", utils.Truncate(s.SourceURL, 80))
		}
	}
	fmt.Fprintln(w)
	return nil
}

// WriteStatus writes database status.
func WriteStatus(w io.Writer, st *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "solvents:           %d   # rows in the solvent database\n", st.Solvents)
	fmt.Fprintf(w, "complete:           %d   # solvents with all three HSP components\n", st.Complete)
	fmt.Fprintf(w, "indexed:            %d   # entries in the search catalog\n", st.Indexed)
	fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + catalog on disk\n", st.DiskUsageBytes)
	fmt.Fprintf(w, "watching:           %t\n", st.Watching)
	if len(st.DataDirectories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# data directories")
		for _, d := range st.DataDirectories {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	return nil
}

// WriteImportSummary writes what an import added.
func WriteImportSummary(w io.Writer, s *models.ImportSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "Imported %d solvents from %d files (%d rows skipped)\n", s.Imported, s.Files, s.Skipped)
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	return nil
}

func writeWarnings(w io.Writer, warnings []hsp.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped %d solvents with incomplete HSP:\n", len(warnings))
	for _, warn := range warnings {
		fmt.Fprintf(w, "  %s (missing %s)\n", warn.Entity, strings.Join(warn.Missing, ", "))
	}
}

func formatHSP(o hsp.OptionalVector) string {
	parts := make([]string, 3)
	for i, v := range []*float64{o.D, o.P, o.H} {
		if v == nil {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprintf("%.1f", *v)
		}
	}
	return fmt.Sprintf("δD %s  δP %s  δH %s", parts[0], parts[1], parts[2])
}

func targetName(t hsp.Target) string {
	if t.Name == "" {
		return "target"
	}
	return t.Name
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
