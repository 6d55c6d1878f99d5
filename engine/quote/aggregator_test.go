package quote

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/donizo/pricing-engine/engine/domain"
)

// --- mocks ---

type mockSearcher struct {
	byQuery map[string][]domain.MatchResult
	queries []string
}

func (m *mockSearcher) Search(_ context.Context, query, _, _ string, _ int) []domain.MatchResult {
	m.queries = append(m.queries, query)
	return m.byQuery[query]
}

func hit(id, name, price, similarity string) domain.MatchResult {
	return domain.MatchResult{ProductID: id, MaterialName: name, UnitPrice: price, SimilarityScore: similarity}
}

func newTestService(m *mockSearcher) *Service {
	return New(m, slog.Default(), nil)
}

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

// --- tests ---

func TestAggregate_Basic(t *testing.T) {
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{
		"white tiles": {hit("a", "Ceramic Tiles", "10,00", "0.9")},
		"tile glue":   {hit("b", "Tile Glue", "1.234,56", "0.7")},
	}}
	svc := newTestService(searcher)

	ex := domain.TranscriptExtraction{
		RenovationType: "bathroom",
		Materials:      []string{"white tiles", "tile glue"},
	}
	plan := domain.TaskPlan{Tasks: []domain.Task{{TaskName: "Repaint Walls"}}}

	p := svc.Aggregate(context.Background(), ex, plan)

	if p.QuoteID == "" {
		t.Error("expected a quote id")
	}
	if len(p.Tasks) != 1 {
		t.Fatalf("expected 1 task block, got %d", len(p.Tasks))
	}
	task := p.Tasks[0]
	if task.Label != "bathroom" {
		t.Errorf("expected label bathroom, got %q", task.Label)
	}
	if len(task.Materials) != 2 || task.Materials[0] != "Ceramic Tiles" || task.Materials[1] != "Tile Glue" {
		t.Errorf("unexpected materials: %v", task.Materials)
	}
	if task.EstimatedDuration != "1 day" {
		t.Errorf("expected 1 day, got %q", task.EstimatedDuration)
	}
	// Two matched materials at the default 20% VAT: 2 * 11 * 1.2.
	approx(t, task.MarginProtectedPrice, 26.4, "margin")
	approx(t, task.ConfidenceScore, 0.8, "confidence")
	// 10 + 1234.56 materials + 26.4 margin + 120 labor, rounded up.
	if p.TotalEstimate != 1391 {
		t.Errorf("expected total 1391, got %d", p.TotalEstimate)
	}
}

func TestAggregate_DedupKeepsMarginPerMention(t *testing.T) {
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{
		"tiles": {hit("a", "Tiles", "10,00", "0.9")},
		"glue":  {hit("b", "Glue", "5,00", "0.9")},
		"colle": {hit("b", "Glue", "5,00", "0.9")},
	}}
	svc := newTestService(searcher)

	ex := domain.TranscriptExtraction{Materials: []string{"tiles", "glue", "colle"}}
	p := svc.Aggregate(context.Background(), ex, domain.TaskPlan{})

	task := p.Tasks[0]
	if len(task.Materials) != 2 {
		t.Fatalf("expected deduplicated materials, got %v", task.Materials)
	}
	// Margin accrues per matched mention, before dedup: 3 * 11 (no tasks,
	// so no VAT on the margin).
	approx(t, task.MarginProtectedPrice, 33.0, "margin")
	// Price sum counts each product once: 10 + 5.
	// Total = 15 + 33 + 0 labor.
	if p.TotalEstimate != 48 {
		t.Errorf("expected total 48, got %d", p.TotalEstimate)
	}
}

func TestAggregate_EmptyPlanMarginSkipsVAT(t *testing.T) {
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{
		"tiles": {hit("a", "Tiles", "10,00", "0.9")},
	}}
	svc := newTestService(searcher)

	ex := domain.TranscriptExtraction{Materials: []string{"tiles"}}
	p := svc.Aggregate(context.Background(), ex, domain.TaskPlan{})

	// No recognised tasks means no VAT rate: margin is 11 * 1.0.
	approx(t, p.Tasks[0].MarginProtectedPrice, 11.0, "margin")
}

func TestAggregate_SkipsUnmatchedMaterials(t *testing.T) {
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{}}
	svc := newTestService(searcher)

	ex := domain.TranscriptExtraction{Materials: []string{"unobtainium panel"}}
	p := svc.Aggregate(context.Background(), ex, domain.TaskPlan{})

	task := p.Tasks[0]
	if len(task.Materials) != 0 {
		t.Errorf("expected no materials, got %v", task.Materials)
	}
	if task.Label != DefaultLabel {
		t.Errorf("expected default label, got %q", task.Label)
	}
	if task.ConfidenceScore != 0 {
		t.Errorf("expected zero confidence, got %v", task.ConfidenceScore)
	}
	approx(t, task.MarginProtectedPrice, 0, "margin")
}

func TestAggregate_MalformedPriceCountsAsZero(t *testing.T) {
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{
		"paint": {hit("a", "Paint", "n/a", "0.9")},
	}}
	svc := newTestService(searcher)

	ex := domain.TranscriptExtraction{Materials: []string{"paint"}}
	p := svc.Aggregate(context.Background(), ex, domain.TaskPlan{})

	task := p.Tasks[0]
	if len(task.Materials) != 1 {
		t.Fatalf("material with bad price should still be listed, got %v", task.Materials)
	}
	// Only margin contributes: 11 with no tasks carrying VAT.
	if p.TotalEstimate != 11 {
		t.Errorf("expected total 11, got %d", p.TotalEstimate)
	}
}

func TestAggregate_VendorPrefixesQuery(t *testing.T) {
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{}}
	svc := newTestService(searcher)

	ex := domain.TranscriptExtraction{Materials: []string{"white tiles"}, Vendor: "castorama"}
	svc.Aggregate(context.Background(), ex, domain.TaskPlan{})

	if len(searcher.queries) != 1 || searcher.queries[0] != "castorama white tiles" {
		t.Errorf("expected vendor-prefixed query, got %v", searcher.queries)
	}
}

func TestAggregate_MaterialVATOverridesTaskVAT(t *testing.T) {
	h := hit("a", "Tiles", "0,00", "0.9")
	h.VATRate = "0.10"
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{"tiles": {h}}}
	svc := newTestService(searcher)

	ex := domain.TranscriptExtraction{Materials: []string{"tiles"}}
	p := svc.Aggregate(context.Background(), ex, domain.TaskPlan{
		Tasks: []domain.Task{{TaskName: "Repaint Walls"}},
	})

	// 11 * 1.10 instead of 11 * 1.20.
	approx(t, p.Tasks[0].MarginProtectedPrice, 12.1, "margin")
}

func TestAggregate_LongJobsSpanDays(t *testing.T) {
	searcher := &mockSearcher{byQuery: map[string][]domain.MatchResult{}}
	svc := newTestService(searcher)

	area := 40.0
	plan := domain.TaskPlan{Tasks: []domain.Task{
		{TaskName: "Floor Tiling (ceramic)", AreaM2: &area}, // 36 hours
	}}
	p := svc.Aggregate(context.Background(), domain.TranscriptExtraction{}, plan)

	if p.Tasks[0].EstimatedDuration != "2 day" {
		t.Errorf("expected 2 day, got %q", p.Tasks[0].EstimatedDuration)
	}
}

func TestGenerate_EndToEnd(t *testing.T) {
	// Every query matches the same product.
	searcher := &anySearcher{result: hit("a", "Ceramic Tiles 60x60", "24,99", "0.85")}
	svc := New(searcher, slog.Default(), nil)

	p := svc.Generate(context.Background(),
		"Renovate the bathroom: remove the old tiles, tile 4m2 of floor and repaint the walls. This is in Paris.")

	if p.QuoteID == "" {
		t.Error("expected a quote id")
	}
	if len(p.Tasks) != 1 {
		t.Fatalf("expected 1 task block, got %d", len(p.Tasks))
	}
	task := p.Tasks[0]
	if task.Label != "bathroom" {
		t.Errorf("expected bathroom label, got %q", task.Label)
	}
	if task.EstimatedDuration != "1 day" {
		t.Errorf("expected 1 day, got %q", task.EstimatedDuration)
	}
	if p.TotalEstimate < 0 {
		t.Errorf("total must be non-negative, got %d", p.TotalEstimate)
	}
	if len(task.Materials) == 0 {
		t.Error("expected at least one matched material")
	}
}

type anySearcher struct {
	result domain.MatchResult
}

func (s *anySearcher) Search(_ context.Context, _, _, _ string, _ int) []domain.MatchResult {
	return []domain.MatchResult{s.result}
}
