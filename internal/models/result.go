package models

import "github.com/hyperjump/mixingcompass/internal/hsp"

// ResolvedComponent is a mixture component after lookup and normalization.
type ResolvedComponent struct {
	Solvent        string     `json:"solvent"`
	HSP            hsp.Vector `json:"hsp"`
	VolumeFraction float64    `json:"volume_fraction"`
	Normalized     float64    `json:"normalized_fraction"`
}

// MixtureResult is the blended HSP.
type MixtureResult struct {
	Name       string              `json:"name,omitempty"`
	HSP        hsp.Vector          `json:"hsp"`
	Total      float64             `json:"total"`
	Components []ResolvedComponent `json:"components"`
}

// REDEntry is one solvent evaluated against a target.
type REDEntry struct {
	Solvent    string         `json:"solvent"`
	HSP        hsp.Vector     `json:"hsp"`
	Distance   float64        `json:"distance"`
	RED        float64        `json:"red"`
	Compatible bool           `json:"compatible"`
	Solubility hsp.Solubility `json:"solubility,omitempty"`
}

// REDResult lists entries by ascending RED.
type REDResult struct {
	Target   hsp.Target    `json:"target"`
	Results  []REDEntry    `json:"results"`
	Warnings []hsp.Warning `json:"warnings,omitempty"`
}

// SolventHit is one catalog match.
type SolventHit struct {
	Solvent *Solvent `json:"solvent"`
	Score   float64  `json:"score"`
}

// SolventSearchResponse is the response of a catalog search or listing.
type SolventSearchResponse struct {
	Results   []*SolventHit `json:"results"`
	Total     int           `json:"total"`
	Query     string        `json:"query"`
	QueryTime int64         `json:"query_time_ms"`
	// AutoFuzzy is set when an exact search found nothing and was retried fuzzily.
	AutoFuzzy bool `json:"auto_fuzzy,omitempty"`
	// Suggestion is a corrected query offered when nothing matched at all.
	Suggestion string `json:"suggestion,omitempty"`
}

// ImportSummary reports what an import added.
type ImportSummary struct {
	Files    int      `json:"files"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Status summarizes the solvent database.
type Status struct {
	Solvents        int      `json:"solvents"`
	Complete        int      `json:"complete"`
	Indexed         uint64   `json:"indexed"`
	DiskUsageBytes  int64    `json:"disk_usage_bytes"`
	DataDirectories []string `json:"data_directories"`
	Watching        bool     `json:"watching"`
}
