package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8200
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/mixingcompass/data/db/solvents.db"
	}
	if cfg.Storage.CatalogIndexPath == "" {
		cfg.Storage.CatalogIndexPath = "/usr/local/var/mixingcompass/data/indices/catalog"
	}
	if cfg.Data.Extensions == nil {
		cfg.Data.Extensions = []string{".csv", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Data.Directories) > 0 && cfg.Data.Recursive == nil {
		t := true
		cfg.Data.Recursive = &t
	}
	if cfg.Scene.Resolution == 0 {
		cfg.Scene.Resolution = 20
	}
	if cfg.Scene.Opacity == 0 {
		cfg.Scene.Opacity = 0.35
	}
	if cfg.Scene.Margin == 0 {
		cfg.Scene.Margin = 2
	}
	if cfg.Scene.MaxDeltaD == 0 {
		cfg.Scene.MaxDeltaD = 25
	}
	if cfg.Scene.MaxDeltaP == 0 {
		cfg.Scene.MaxDeltaP = 30
	}
	if cfg.Scene.MaxDeltaH == 0 {
		cfg.Scene.MaxDeltaH = 30
	}
	if cfg.Analysis.DefaultRadius == 0 {
		cfg.Analysis.DefaultRadius = 4.0
	}
}
