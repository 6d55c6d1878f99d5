package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/donizo/pricing-engine/engine/domain"
)

// Normalize maps a scraped payload onto a catalog record. Products without an
// explicit ID get a deterministic UUID derived from vendor and name, so
// re-scrapes of the same product upsert instead of duplicating.
func Normalize(sp ScrapedProduct) domain.ProductRecord {
	name := strings.TrimSpace(sp.Name)
	vendor := strings.ToLower(strings.TrimSpace(sp.Vendor))

	id := strings.TrimSpace(sp.ProductID)
	if id == "" {
		seed := "donizo:catalog:" + vendor + ":" + strings.ToLower(name)
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
	}

	updatedAt := sp.ScrapedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	return domain.ProductRecord{
		ID:           id,
		Name:         name,
		Description:  strings.TrimSpace(sp.Description),
		UnitPrice:    cleanPrice(sp.UnitPrice),
		Unit:         strings.TrimSpace(sp.Unit),
		Region:       strings.TrimSpace(sp.Region),
		Vendor:       vendor,
		VATRate:      strings.TrimSpace(sp.VATRate),
		QualityScore: sp.Quality,
		UpdatedAt:    updatedAt,
		Source:       strings.TrimSpace(sp.Source),
	}
}

// cleanPrice strips currency decoration but keeps the locale number format
// ("1.234,56") intact for downstream parsing.
func cleanPrice(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "EUR")
	return strings.TrimSpace(s)
}
