package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/mixingcompass/internal/catalog"
	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/solventid"
	"github.com/hyperjump/mixingcompass/internal/storage"
)

// Importer writes solvent records to storage and keeps the catalog in step.
type Importer struct {
	storage    storage.Storage
	catalog    catalog.Catalog
	extensions []string
	parallel   int
	logger     *zap.Logger // optional; when set, logs debug events
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets a logger for debug output (file imported, solvent deleted, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// WithExtensions restricts directory imports to the given extensions.
func WithExtensions(exts []string) Option {
	return func(im *Importer) {
		if len(exts) > 0 {
			im.extensions = exts
		}
	}
}

// WithParallelism bounds how many files are parsed at once.
func WithParallelism(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.parallel = n
		}
	}
}

// New creates an importer over store and cat.
func New(store storage.Storage, cat catalog.Catalog, opts ...Option) *Importer {
	im := &Importer{
		storage:    store,
		catalog:    cat,
		extensions: []string{".csv", ".xlsx"},
		parallel:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Extensions returns the file extensions this importer accepts.
func (im *Importer) Extensions() []string {
	return im.extensions
}

// Accepts reports whether path has an importable extension.
func (im *Importer) Accepts(path string) bool {
	return extensionAllowed(filepath.Ext(path), im.extensions)
}

// ImportPaths imports every solvent table found in paths. Directories are
// walked (recursively when recursive is set) for files with an accepted
// extension. Files are parsed in parallel and stored in path order; a solvent
// name that already appeared in an earlier file is skipped. A file that fails
// to parse is reported in the summary and does not stop the others.
func (im *Importer) ImportPaths(ctx context.Context, paths []string, recursive bool) (*models.ImportSummary, error) {
	files, err := im.collect(paths, recursive)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, len(files))
	parseErrs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.parallel)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables[i], parseErrs[i] = ParseFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &models.ImportSummary{Files: len(files)}
	seen := make(map[string]struct{})
	for i, t := range tables {
		if parseErrs[i] != nil {
			summary.Errors = append(summary.Errors, parseErrs[i].Error())
			continue
		}
		kept := t.Solvents[:0:0]
		for _, s := range t.Solvents {
			if _, dup := seen[s.ID]; dup {
				t.Skipped = append(t.Skipped, fmt.Sprintf("duplicate solvent %q", s.Name))
				continue
			}
			seen[s.ID] = struct{}{}
			kept = append(kept, s)
		}
		if err := im.replaceSource(ctx, t.Source, kept); err != nil {
			return summary, err
		}
		summary.Imported += len(kept)
		summary.Skipped += len(t.Skipped)
		if im.logger != nil {
			im.logger.Debug("importer file imported",
				zap.String("path", t.Source),
				zap.Int("solvents", len(kept)),
				zap.Strings("skipped", t.Skipped))
		}
	}
	return summary, nil
}

// ImportFile imports (or re-imports) a single solvent table.
func (im *Importer) ImportFile(ctx context.Context, path string) (*models.ImportSummary, error) {
	return im.ImportPaths(ctx, []string{path}, false)
}

// RemoveFile deletes every solvent imported from path.
func (im *Importer) RemoveFile(ctx context.Context, path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	ids, err := im.storage.DeleteBySource(ctx, absPath)
	if err != nil {
		return 0, fmt.Errorf("failed to delete solvents from %s: %w", absPath, err)
	}
	for _, id := range ids {
		if err := im.catalog.Delete(ctx, id); err != nil {
			return 0, fmt.Errorf("failed to delete from catalog: %w", err)
		}
	}
	if im.logger != nil {
		im.logger.Debug("importer file removed", zap.String("path", absPath), zap.Int("solvents", len(ids)))
	}
	return len(ids), nil
}

// Upsert validates and stores a single solvent. Its ID derives from the name.
func (im *Importer) Upsert(ctx context.Context, s *models.Solvent) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.ID = solventid.FromName(s.Name)
	if existing, err := im.storage.GetSolvent(ctx, s.ID); err == nil {
		s.CreatedAt = existing.CreatedAt
	}
	if err := im.storage.UpsertSolvent(ctx, s); err != nil {
		return fmt.Errorf("failed to store solvent: %w", err)
	}
	if err := im.catalog.Index(ctx, s.ID, entry(s)); err != nil {
		return fmt.Errorf("failed to index solvent: %w", err)
	}
	return nil
}

// Delete removes the solvent matching key (ID, name or CAS number).
func (im *Importer) Delete(ctx context.Context, key string) error {
	s, err := im.resolve(ctx, key)
	if err != nil {
		return err
	}
	if err := im.storage.DeleteSolvent(ctx, s.ID); err != nil {
		return err
	}
	if err := im.catalog.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("failed to delete from catalog: %w", err)
	}
	if im.logger != nil {
		im.logger.Debug("importer solvent deleted", zap.String("id", s.ID), zap.String("name", s.Name))
	}
	return nil
}

// Reindex rebuilds the catalog from storage and returns the number of solvents indexed.
func (im *Importer) Reindex(ctx context.Context) (int, error) {
	const page = 500
	n := 0
	for offset := 0; ; offset += page {
		batch, err := im.storage.ListSolvents(ctx, offset, page)
		if err != nil {
			return n, fmt.Errorf("failed to list solvents: %w", err)
		}
		if len(batch) == 0 {
			return n, nil
		}
		entries := make(map[string]catalog.Entry, len(batch))
		for _, s := range batch {
			entries[s.ID] = entry(s)
		}
		if err := im.catalog.IndexBatch(ctx, entries); err != nil {
			return n, err
		}
		n += len(batch)
	}
}

func (im *Importer) resolve(ctx context.Context, key string) (*models.Solvent, error) {
	if solventid.IsValid(key) {
		if s, err := im.storage.GetSolvent(ctx, key); err == nil {
			return s, nil
		}
	}
	return im.storage.FindSolvent(ctx, key)
}

// replaceSource swaps the solvents previously imported from source for solvents.
func (im *Importer) replaceSource(ctx context.Context, source string, solvents []*models.Solvent) error {
	removed, err := im.storage.DeleteBySource(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", source, err)
	}
	keep := make(map[string]struct{}, len(solvents))
	entries := make(map[string]catalog.Entry, len(solvents))
	for _, s := range solvents {
		keep[s.ID] = struct{}{}
		entries[s.ID] = entry(s)
	}
	for _, id := range removed {
		if _, ok := keep[id]; ok {
			continue
		}
		if err := im.catalog.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete from catalog: %w", err)
		}
	}
	if err := im.storage.BatchUpsertSolvents(ctx, solvents); err != nil {
		return fmt.Errorf("failed to store solvents from %s: %w", source, err)
	}
	if err := im.catalog.IndexBatch(ctx, entries); err != nil {
		return fmt.Errorf("failed to index solvents from %s: %w", source, err)
	}
	return nil
}

// collect expands paths into a sorted list of absolute file paths.
func (im *Importer) collect(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", absPath, err)
		}
		if !info.IsDir() {
			if !info.Mode().IsRegular() {
				return nil, fmt.Errorf("not a regular file: %s", absPath)
			}
			if !im.Accepts(absPath) {
				return nil, fmt.Errorf("extension %q not in allowed list", filepath.Ext(absPath))
			}
			files = append(files, absPath)
			continue
		}
		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != absPath && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if !im.Accepts(path) || strings.HasPrefix(d.Name(), "~$") {
				return nil
			}
			// Resolve symlinks so only regular files are imported.
			if finfo, statErr := os.Stat(path); statErr != nil || !finfo.Mode().IsRegular() {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func entry(s *models.Solvent) catalog.Entry {
	return catalog.Entry{Name: s.Name, CAS: s.CAS, SMILES: s.SMILES}
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
