// Package match ranks catalog materials against a query embedding. It owns
// the primary/fallback search protocol: an indexed similarity query guarded
// by a circuit breaker, with an exhaustive catalog scan behind it. No error
// escapes Search; store failures degrade to the fallback or an empty result.
package match

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/donizo/pricing-engine/engine/domain"
	"github.com/donizo/pricing-engine/engine/semantic"
	"github.com/donizo/pricing-engine/pkg/fn"
	"github.com/donizo/pricing-engine/pkg/metrics"
	"github.com/donizo/pricing-engine/pkg/resilience"
)

// MaxResults is the fixed output-size contract of Search, independent of the
// caller-requested limit.
const MaxResults = 5

// Embedder computes a query embedding. Empty text yields an empty vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IndexSearcher is the primary, approximate search path.
type IndexSearcher interface {
	SearchProducts(ctx context.Context, embedding []float32, limit int, region, vendor string) ([]semantic.ProductHit, error)
}

// CatalogScanner reads the full catalog for the exhaustive fallback.
type CatalogScanner interface {
	ScanAll(ctx context.Context) ([]domain.ProductRecord, error)
}

// Options configures search behaviour.
type Options struct {
	// SearchTimeout bounds the primary indexed query; a timeout counts as a
	// primary failure and triggers the fallback scan.
	SearchTimeout time.Duration
	// ScanWorkers bounds the parallelism of fallback scoring.
	ScanWorkers int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		SearchTimeout: 5 * time.Second,
		ScanWorkers:   8,
	}
}

// Engine is the material match engine.
type Engine struct {
	embed   Embedder
	index   IndexSearcher
	catalog CatalogScanner
	breaker *resilience.Breaker
	opts    Options
	logger  *slog.Logger

	primaryHits  *metrics.Counter
	fallbackRuns *metrics.Counter
	emptyResults *metrics.Counter
	latency      *metrics.Histogram
}

// New creates a match Engine. reg may be nil to disable metrics.
func New(embed Embedder, index IndexSearcher, catalog CatalogScanner, opts Options, logger *slog.Logger, reg *metrics.Registry) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = metrics.New()
	}
	return &Engine{
		embed:        embed,
		index:        index,
		catalog:      catalog,
		breaker:      resilience.NewBreaker(resilience.DefaultBreakerOpts),
		opts:         opts,
		logger:       logger,
		primaryHits:  reg.Counter("match_primary_hits_total", "searches served by the indexed path"),
		fallbackRuns: reg.Counter("match_fallback_scans_total", "searches that ran the exhaustive scan"),
		emptyResults: reg.Counter("match_empty_results_total", "searches that returned no rows"),
		latency:      reg.Histogram("match_search_seconds", "search latency", nil),
	}
}

type scoredRecord struct {
	record domain.ProductRecord
	score  float64
}

// Search ranks the catalog against queryText, highest similarity first,
// returning at most MaxResults rows. region and vendor are optional
// equality filters on the primary path; limit bounds the primary query.
func (e *Engine) Search(ctx context.Context, queryText, region, vendor string, limit int) []domain.MatchResult {
	start := time.Now()
	defer e.latency.Since(start)

	if limit <= 0 {
		limit = MaxResults
	}

	vec, err := e.embed.Embed(ctx, queryText)
	if err != nil {
		e.logger.Warn("embed query failed", "err", err)
		e.emptyResults.Inc()
		return []domain.MatchResult{}
	}
	if len(vec) == 0 {
		// Empty text means no meaningful ranking, not a crash.
		e.emptyResults.Inc()
		return []domain.MatchResult{}
	}

	scored := e.primarySearch(ctx, vec, limit, region, vendor)
	if scored == nil {
		// Fallback recomputes from a full scan; primary rows are never mixed in.
		e.fallbackRuns.Inc()
		scored = e.fallbackScan(ctx, vec)
	} else {
		e.primaryHits.Inc()
	}

	if len(scored) == 0 {
		e.emptyResults.Inc()
		return []domain.MatchResult{}
	}
	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}

	results := make([]domain.MatchResult, len(scored))
	for i, s := range scored {
		results[i] = formatResult(s.record, s.score)
	}
	return results
}

// primarySearch runs the indexed query through the circuit breaker. It
// returns nil when the primary path errored, timed out, or matched nothing —
// the sentinel that triggers the fallback.
func (e *Engine) primarySearch(ctx context.Context, vec []float32, limit int, region, vendor string) []scoredRecord {
	var hits []semantic.ProductHit
	err := e.breaker.Call(ctx, func(ctx context.Context) error {
		sctx, cancel := context.WithTimeout(ctx, e.opts.SearchTimeout)
		defer cancel()
		h, err := e.index.SearchProducts(sctx, vec, limit, region, vendor)
		if err != nil {
			return err
		}
		hits = h
		return nil
	})
	if err != nil {
		e.logger.Warn("primary search unavailable, falling back", "err", err)
		return nil
	}
	if len(hits) == 0 {
		return nil
	}

	scored := make([]scoredRecord, len(hits))
	for i, h := range hits {
		scored[i] = scoredRecord{record: h.Record, score: clip(float64(h.Score))}
	}
	return scored
}

// fallbackScan loads the whole catalog and recomputes cosine similarity for
// every record. Scoring may run in parallel; the final ordering is total.
func (e *Engine) fallbackScan(ctx context.Context, vec []float32) []scoredRecord {
	records, err := e.catalog.ScanAll(ctx)
	if err != nil {
		e.logger.Warn("fallback scan failed", "err", err)
		return nil
	}

	// Rows without a stored embedding can't be ranked; scoring them at zero
	// would still surface them ahead of nothing.
	records = fn.Filter(records, func(r domain.ProductRecord) bool {
		return len(r.Embedding) > 0
	})

	scored := fn.ParMap(records, e.opts.ScanWorkers, func(r domain.ProductRecord) scoredRecord {
		return scoredRecord{record: r, score: Cosine(vec, r.Embedding)}
	})
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

func clip(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// formatResult stringifies display fields and rounds the similarity to four
// decimals for the wire.
func formatResult(r domain.ProductRecord, score float64) domain.MatchResult {
	rounded := math.Round(score*10000) / 10000

	quality := ""
	if r.QualityScore != 0 {
		quality = strconv.FormatFloat(r.QualityScore, 'f', -1, 64)
	}
	updated := ""
	if !r.UpdatedAt.IsZero() {
		updated = r.UpdatedAt.Format("2006-01-02 15:04:05")
	}

	return domain.MatchResult{
		ProductID:       r.ID,
		MaterialName:    r.Name,
		Description:     r.Description,
		UnitPrice:       r.UnitPrice,
		Unit:            r.Unit,
		Region:          r.Region,
		Vendor:          r.Vendor,
		VATRate:         r.VATRate,
		QualityScore:    quality,
		UpdatedAt:       updated,
		Source:          r.Source,
		SimilarityScore: strconv.FormatFloat(rounded, 'f', -1, 64),
		ConfidenceTier:  domain.TierFor(score),
	}
}
