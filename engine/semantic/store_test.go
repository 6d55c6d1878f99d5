package semantic

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/donizo/pricing-engine/engine/domain"
)

func TestPointID(t *testing.T) {
	// Valid UUIDs pass through unchanged.
	raw := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	if got := pointID(raw); got != raw {
		t.Errorf("expected uuid passthrough, got %q", got)
	}

	// Vendor SKUs map onto a deterministic, valid UUID.
	got := pointID("CAST-12345")
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected a valid uuid for a SKU, got %q: %v", got, err)
	}
	if again := pointID("CAST-12345"); again != got {
		t.Errorf("expected deterministic mapping, got %q then %q", got, again)
	}
	if other := pointID("CAST-12346"); other == got {
		t.Error("distinct SKUs must not collide")
	}
}

func TestBuildFilter(t *testing.T) {
	if f := buildFilter("", ""); f != nil {
		t.Error("expected nil filter when no constraints are set")
	}
	if f := buildFilter("Occitanie", ""); len(f.GetMust()) != 1 {
		t.Errorf("expected 1 condition, got %d", len(f.GetMust()))
	}
	if f := buildFilter("Occitanie", "castorama"); len(f.GetMust()) != 2 {
		t.Errorf("expected 2 conditions, got %d", len(f.GetMust()))
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	rec := domain.ProductRecord{
		ID:           "p-1",
		Name:         "Ceramic Tiles",
		UnitPrice:    "24,99",
		Region:       "Occitanie",
		Vendor:       "castorama",
		VATRate:      "0.20",
		QualityScore: 0.9,
		UpdatedAt:    time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC),
		Source:       "scraper",
	}

	got := recordFromPayload("point-id", payloadFromRecord(rec))
	if got.ID != "p-1" || got.Name != "Ceramic Tiles" || got.UnitPrice != "24,99" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.QualityScore != 0.9 {
		t.Errorf("quality lost in payload: %v", got.QualityScore)
	}
	if !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamp lost in payload: %v", got.UpdatedAt)
	}
}

func TestRecordFromPayload_FallsBackToPointID(t *testing.T) {
	got := recordFromPayload("point-7", nil)
	if got.ID != "point-7" {
		t.Errorf("expected point id fallback, got %q", got.ID)
	}
}
