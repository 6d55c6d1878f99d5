// Package ingest consumes scraped supplier products, embeds them, and writes
// them to the catalog and the vector index.
package ingest

import "time"

// ScrapedProduct is the wire payload produced by the supplier scrapers. Only
// material_name and unit_price are required; the rest is best-effort.
type ScrapedProduct struct {
	ProductID   string    `json:"product_id,omitempty"`
	Name        string    `json:"material_name"`
	Description string    `json:"description,omitempty"`
	UnitPrice   string    `json:"unit_price"`
	Unit        string    `json:"unit,omitempty"`
	Region      string    `json:"region,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	VATRate     string    `json:"vat_rate,omitempty"`
	Quality     float64   `json:"quality_score,omitempty"`
	Source      string    `json:"source,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at,omitempty"`
}
