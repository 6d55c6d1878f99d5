package quote

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/donizo/pricing-engine/engine/domain"
	"github.com/donizo/pricing-engine/engine/extract"
	"github.com/donizo/pricing-engine/engine/match"
	"github.com/donizo/pricing-engine/engine/pricing"
	"github.com/donizo/pricing-engine/pkg/fn"
	"github.com/donizo/pricing-engine/pkg/metrics"
)

// DefaultLabel is used when no renovation type could be extracted.
const DefaultLabel = "Tile bathroom walls"

// marginFactor is the per-material margin multiplier. Each matched material
// contributes (1 + marginFactor) * (1 + vat) to the margin-protected total.
const marginFactor = 10.0

const hoursPerDay = 24.0

// Searcher finds catalog materials for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query, region, vendor string, limit int) []domain.MatchResult
}

// Service builds proposals from transcripts.
type Service struct {
	matcher Searcher
	logger  *slog.Logger

	proposals *metrics.Counter
}

// New returns a quote service. reg may be nil to disable metrics.
func New(matcher Searcher, logger *slog.Logger, reg *metrics.Registry) *Service {
	s := &Service{matcher: matcher, logger: logger}
	if reg != nil {
		s.proposals = reg.Counter("quote_proposals_total", "Proposals generated.")
	}
	return s
}

// Generate runs extraction and task splitting on a transcript and aggregates
// the result into a proposal.
func (s *Service) Generate(ctx context.Context, transcript string) *domain.Proposal {
	extraction := extract.Parse(transcript)
	plan := extract.SplitTasks(transcript)
	return s.Aggregate(ctx, extraction, plan)
}

// Aggregate prices an extraction against the catalog and folds labor, margin
// and VAT into a single proposal. Materials without a catalog match are
// skipped with a warning; malformed catalog prices count as zero.
func (s *Service) Aggregate(ctx context.Context, ex domain.TranscriptExtraction, plan domain.TaskPlan) *domain.Proposal {
	city := plan.City

	// taskVAT stays 0 when the plan is empty; only recognised tasks carry a
	// rate into the margin.
	var totalHours, laborCost, taskVAT float64
	for _, task := range plan.Tasks {
		hours := pricing.EstimateHours(task.TaskName, task.AreaM2, pricing.ComplexityStandard)
		totalHours += hours
		laborCost += pricing.LaborCost(hours, city)
		if v := pricing.VATRate(task.TaskName, city); v > taskVAT {
			taskVAT = v
		}
	}

	var matched []domain.MatchResult
	var marginTotal float64
	for _, material := range ex.Materials {
		query := material
		if ex.Vendor != "" {
			query = ex.Vendor + " " + material
		}

		results := s.matcher.Search(ctx, query, ex.Region, "", match.MaxResults)
		if len(results) == 0 {
			s.logger.Warn("no catalog match for material", "material", material)
			continue
		}

		top := results[0]
		marginTotal += (1 + marginFactor) * (1 + effectiveVAT(top, taskVAT))
		matched = append(matched, top)
	}

	deduped := fn.UniqueBy(matched, func(m domain.MatchResult) string { return m.ProductID })

	var priceSum float64
	for _, m := range deduped {
		v, err := ParseUnitPrice(m.UnitPrice)
		if err != nil {
			s.logger.Warn("malformed unit price, counting as zero",
				"product_id", m.ProductID, "unit_price", m.UnitPrice, "error", err)
			continue
		}
		priceSum += v
	}

	confidence := 0.0
	if len(deduped) > 0 {
		var sum float64
		for _, m := range deduped {
			sum += parseSimilarity(m.SimilarityScore)
		}
		confidence = math.Round(sum/float64(len(deduped))*100) / 100
	}

	materials := fn.Map(deduped, func(m domain.MatchResult) string { return m.MaterialName })
	if materials == nil {
		materials = []string{}
	}

	label := ex.RenovationType
	if label == "" {
		label = DefaultLabel
	}

	total := int(math.Ceil(priceSum + marginTotal + laborCost))
	if total < 0 {
		total = 0
	}

	if s.proposals != nil {
		s.proposals.Inc()
	}

	return &domain.Proposal{
		QuoteID: uuid.NewString(),
		Tasks: []domain.ProposalTask{{
			Label:                label,
			Materials:            materials,
			EstimatedDuration:    fmt.Sprintf("%d day", int(math.Ceil(totalHours/hoursPerDay))),
			MarginProtectedPrice: marginTotal,
			ConfidenceScore:      confidence,
		}},
		TotalEstimate: total,
	}
}

// effectiveVAT prefers the matched material's own VAT rate over the task rate.
func effectiveVAT(m domain.MatchResult, taskVAT float64) float64 {
	if m.VATRate != "" {
		raw := strings.ReplaceAll(m.VATRate, ",", ".")
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return taskVAT
}

func parseSimilarity(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
