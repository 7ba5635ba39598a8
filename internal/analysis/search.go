package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/mixingcompass/internal/catalog"
	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/storage"
)

// SearchSolvents searches the catalog by name, CAS number or SMILES. An empty
// query lists the database by name. An exact search that finds nothing is
// retried fuzzily; if that misses too, a corrected query is suggested.
func (e *Engine) SearchSolvents(ctx context.Context, q *models.SolventQuery) (*models.SolventSearchResponse, error) {
	start := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	resp := &models.SolventSearchResponse{Query: q.Query, Results: []*models.SolventHit{}}
	if q.Query == "" {
		if err := e.listAll(ctx, q, resp); err != nil {
			return nil, err
		}
		resp.QueryTime = time.Since(start).Milliseconds()
		return resp, nil
	}

	window := q.Offset + q.Limit
	hits, err := e.catalog.Search(ctx, q.Query, window, &catalog.SearchOptions{Fuzzy: q.Fuzzy})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 && !q.Fuzzy {
		if hits, err = e.catalog.Search(ctx, q.Query, window, &catalog.SearchOptions{Fuzzy: true}); err != nil {
			return nil, err
		}
		resp.AutoFuzzy = len(hits) > 0
		if e.logger != nil {
			e.logger.Debug("search retried fuzzily", zap.String("query", q.Query), zap.Int("hits", len(hits)))
		}
	}
	if len(hits) == 0 {
		if suggestion, changed, err := e.catalog.Suggest(q.Query); err == nil && changed {
			resp.Suggestion = suggestion
		}
	}

	resp.Total = len(hits)
	if q.Offset < len(hits) {
		hits = hits[q.Offset:]
	} else {
		hits = nil
	}
	for _, h := range hits {
		s, err := e.storage.GetSolvent(ctx, h.ID)
		if errors.Is(err, storage.ErrNotFound) {
			// Stale catalog entry.
			if e.logger != nil {
				e.logger.Debug("catalog hit without solvent", zap.String("id", h.ID))
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load solvent %s: %w", h.ID, err)
		}
		resp.Results = append(resp.Results, &models.SolventHit{Solvent: s, Score: h.Score})
	}
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp, nil
}

func (e *Engine) listAll(ctx context.Context, q *models.SolventQuery, resp *models.SolventSearchResponse) error {
	total, err := e.storage.CountSolvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to count solvents: %w", err)
	}
	solvents, err := e.storage.ListSolvents(ctx, q.Offset, q.Limit)
	if err != nil {
		return fmt.Errorf("failed to list solvents: %w", err)
	}
	resp.Total = int(total)
	for _, s := range solvents {
		resp.Results = append(resp.Results, &models.SolventHit{Solvent: s})
	}
	return nil
}
