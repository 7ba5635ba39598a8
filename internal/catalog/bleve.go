package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/mixingcompass/internal/solventid"
)

const (
	defaultFuzziness = 2 // also the most bleve accepts
	exactNameBoost   = 5.0
	nameBoost        = 2.0
)

// indexed is the document stored in bleve. NameKey holds the normalized full
// name so exact lookups outrank partial ones.
type indexed struct {
	Name    string `json:"name"`
	NameKey string `json:"name_key"`
	CAS     string `json:"cas"`
	SMILES  string `json:"smiles"`
}

// BleveCatalog implements Catalog using Bleve.
type BleveCatalog struct {
	index bleve.Index
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt("name", text)
	keyword := bleve.NewKeywordFieldMapping()
	doc.AddFieldMappingsAt("name_key", keyword)
	doc.AddFieldMappingsAt("cas", keyword)
	doc.AddFieldMappingsAt("smiles", keyword)

	im.AddDocumentMapping("solvent", doc)
	im.DefaultType = "solvent"
	im.DefaultMapping = doc
	return im
}

// NewBleveCatalog creates or opens a Bleve index at path. An empty path keeps
// the index in memory.
func NewBleveCatalog(path string) (*BleveCatalog, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory catalog: %w", err)
		}
		return &BleveCatalog{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open catalog index: %w", openErr)
		}
		return &BleveCatalog{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog index: %w", err)
	}
	return &BleveCatalog{index: index}, nil
}

func toIndexed(e Entry) indexed {
	return indexed{
		Name:    e.Name,
		NameKey: solventid.Normalize(e.Name),
		CAS:     strings.TrimSpace(e.CAS),
		SMILES:  strings.TrimSpace(e.SMILES),
	}
}

// Index indexes a solvent by id.
func (c *BleveCatalog) Index(ctx context.Context, id string, e Entry) error {
	return c.index.Index(id, toIndexed(e))
}

// IndexBatch indexes many solvents in one batch.
func (c *BleveCatalog) IndexBatch(ctx context.Context, entries map[string]Entry) error {
	batch := c.index.NewBatch()
	for id, e := range entries {
		if err := batch.Index(id, toIndexed(e)); err != nil {
			return fmt.Errorf("failed to batch %s: %w", id, err)
		}
	}
	if err := c.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index batch: %w", err)
	}
	return nil
}

// Search matches query against names (whole, per term and by prefix), CAS
// numbers and SMILES. With opts.Fuzzy the name terms tolerate typos.
func (c *BleveCatalog) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	fuzzy := opts != nil && opts.Fuzzy
	fuzziness := defaultFuzziness
	if opts != nil && opts.Fuzziness > 0 && opts.Fuzziness < defaultFuzziness {
		fuzziness = opts.Fuzziness
	}

	exact := bleve.NewTermQuery(solventid.Normalize(query))
	exact.SetField("name_key")
	exact.SetBoost(exactNameBoost)
	cas := bleve.NewTermQuery(query)
	cas.SetField("cas")
	smiles := bleve.NewTermQuery(query)
	smiles.SetField("smiles")
	queries := []blevequery.Query{exact, cas, smiles}

	terms := tokenize(query)
	if fuzzy {
		for _, term := range terms {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetFuzziness(fuzziness)
			fq.SetField("name")
			queries = append(queries, fq)
		}
	} else {
		mq := bleve.NewMatchQuery(query)
		mq.SetField("name")
		mq.SetBoost(nameBoost)
		queries = append(queries, mq)
	}
	for _, term := range terms {
		pq := bleve.NewPrefixQuery(term)
		pq.SetField("name")
		queries = append(queries, pq)
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit
	results, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	out := make([]*Hit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Hit{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes a solvent from the index.
func (c *BleveCatalog) Delete(ctx context.Context, id string) error {
	return c.index.Delete(id)
}

// DocCount returns the number of indexed solvents.
func (c *BleveCatalog) DocCount() (uint64, error) {
	return c.index.DocCount()
}

// Close closes the index.
func (c *BleveCatalog) Close() error {
	return c.index.Close()
}

// nameTerms returns every name term with its document frequency.
func (c *BleveCatalog) nameTerms() (map[string]int, error) {
	dict, err := c.index.FieldDict("name")
	if err != nil {
		return nil, fmt.Errorf("failed to read name dictionary: %w", err)
	}
	defer dict.Close()

	terms := make(map[string]int)
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return terms, nil
		}
		terms[entry.Term] = int(entry.Count)
	}
}

// tokenize splits query into lowercase terms.
func tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
