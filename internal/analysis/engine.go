// Package analysis resolves solvent references against the database and runs
// mixture, RED and scene computations on the result.
package analysis

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/mixingcompass/internal/catalog"
	"github.com/hyperjump/mixingcompass/internal/config"
	"github.com/hyperjump/mixingcompass/internal/hsp"
	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/scene"
	"github.com/hyperjump/mixingcompass/internal/storage"
)

// DirectoryWatcher reports the watched data directories.
type DirectoryWatcher interface {
	Directories() []string
	Running() bool
}

// Engine runs HSP computations over solvents from storage.
type Engine struct {
	storage storage.Storage
	catalog catalog.Catalog
	config  *config.Config
	watcher DirectoryWatcher
	logger  *zap.Logger // optional; when set, logs debug events
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for debug output (skipped solvents, search retries, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithWatcher lets Status report the live watched directories.
func WithWatcher(w DirectoryWatcher) Option {
	return func(e *Engine) { e.watcher = w }
}

// New creates an engine with the given dependencies.
func New(store storage.Storage, cat catalog.Catalog, cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{storage: store, catalog: cat, config: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mix computes the HSP of a volume-weighted blend.
func (e *Engine) Mix(ctx context.Context, req *models.MixtureRequest) (*models.MixtureResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	components, err := e.resolveComponents(ctx, req.Components)
	if err != nil {
		return nil, err
	}
	v, err := hsp.Mix(components)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, c := range components {
		total += c.VolumeFraction
	}
	result := &models.MixtureResult{
		Name:       req.Name,
		HSP:        v,
		Total:      total,
		Components: make([]models.ResolvedComponent, len(components)),
	}
	if result.Name == "" {
		result.Name = mixtureName(components)
	}
	for i, c := range components {
		result.Components[i] = models.ResolvedComponent{
			Solvent:        c.SolventRef,
			HSP:            c.HSP,
			VolumeFraction: c.VolumeFraction,
			Normalized:     c.VolumeFraction / total,
		}
	}
	return result, nil
}

// RED evaluates solvents against one target, lowest RED first. Solvents with
// an incomplete HSP are listed as warnings.
func (e *Engine) RED(ctx context.Context, req *models.REDRequest) (*models.REDResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	target, err := e.resolveTarget(ctx, &req.Target, "target")
	if err != nil {
		return nil, err
	}
	points, err := e.resolveSolvents(ctx, req.Solvents, req.All)
	if err != nil {
		return nil, err
	}
	result := &models.REDResult{Target: target, Results: make([]models.REDEntry, 0, len(points))}
	for _, p := range points {
		red, ok := hsp.PointRED(p, target)
		if !ok {
			result.Warnings = append(result.Warnings, hsp.IncompletePoint(p))
			continue
		}
		v, _ := p.HSP.Complete()
		result.Results = append(result.Results, models.REDEntry{
			Solvent:    p.Name,
			HSP:        v,
			Distance:   hsp.Distance(v, target.Center),
			RED:        red,
			Compatible: red < 1,
			Solubility: p.Solubility,
		})
	}
	slices.SortStableFunc(result.Results, func(a, b models.REDEntry) int {
		return cmp.Compare(a.RED, b.RED)
	})
	e.logWarnings("red", result.Warnings)
	return result, nil
}

// Scene builds the 3D scene for one or two targets and the selected solvents.
func (e *Engine) Scene(ctx context.Context, req *models.SceneRequest) (*scene.Scene, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t1, err := e.resolveTarget(ctx, &req.Target1, "target1")
	if err != nil {
		return nil, err
	}
	in := scene.Input{Target1: t1}
	if req.Target2 != nil {
		t2, err := e.resolveTarget(ctx, req.Target2, "target2")
		if err != nil {
			return nil, err
		}
		in.Target2 = &t2
	}
	if in.Solvents, err = e.resolveSolvents(ctx, req.Solvents, req.AllSolvents); err != nil {
		return nil, err
	}
	s, err := scene.Build(in, e.sceneOptions(req))
	if err != nil {
		return nil, err
	}
	e.logWarnings("scene", s.Warnings)
	return s, nil
}

// Lookup returns the solvent matching key: an ID, a name or a CAS number.
func (e *Engine) Lookup(ctx context.Context, key string) (*models.Solvent, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: solvent key cannot be empty", models.ErrInvalidRequest)
	}
	if s, err := e.storage.GetSolvent(ctx, key); err == nil {
		return s, nil
	}
	return e.storage.FindSolvent(ctx, key)
}

// Status summarizes the database, the catalog and the watched directories.
func (e *Engine) Status(ctx context.Context) (*models.Status, error) {
	total, err := e.storage.CountSolvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count solvents: %w", err)
	}
	complete, err := e.storage.CountComplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count complete solvents: %w", err)
	}
	indexed, err := e.catalog.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog entries: %w", err)
	}
	paths := storage.DatabaseFiles(e.config.Storage.DatabasePath)
	paths = append(paths, e.config.Storage.CatalogIndexPath)
	usage, err := storage.DiskUsageBytes(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to measure disk usage: %w", err)
	}
	st := &models.Status{
		Solvents:        int(total),
		Complete:        int(complete),
		Indexed:         indexed,
		DiskUsageBytes:  usage,
		DataDirectories: e.config.Data.Directories,
	}
	if e.watcher != nil && e.watcher.Running() {
		st.DataDirectories = e.watcher.Directories()
		st.Watching = true
	}
	if st.DataDirectories == nil {
		st.DataDirectories = []string{}
	}
	return st, nil
}

func (e *Engine) sceneOptions(req *models.SceneRequest) scene.Options {
	sc := e.config.Scene
	opts := scene.DefaultOptions()
	if req.Resolution > 0 {
		opts.Resolution = req.Resolution
	} else if sc.Resolution > 0 {
		opts.Resolution = sc.Resolution
	}
	if sc.Opacity > 0 {
		for i := range opts.Themes {
			opts.Themes[i].Opacity = sc.Opacity
		}
	}
	opts.Range = scene.RangeConfig{
		Margin: sc.Margin,
		MaxD:   sc.MaxDeltaD,
		MaxP:   sc.MaxDeltaP,
		MaxH:   sc.MaxDeltaH,
	}
	opts.Width, opts.Height = sc.Width, sc.Height
	opts.ColorBySolubility = req.ColorBySolubility
	return opts
}

func (e *Engine) logWarnings(op string, warnings []hsp.Warning) {
	if e.logger == nil {
		return
	}
	for _, w := range warnings {
		e.logger.Debug("skipped solvent",
			zap.String("op", op),
			zap.String("solvent", w.Entity),
			zap.Strings("missing", w.Missing))
	}
}

func mixtureName(components []hsp.MixtureComponent) string {
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.SolventRef
	}
	return strings.Join(names, " + ")
}
