package semantic

import "github.com/donizo/pricing-engine/engine/domain"

// ProductHit is a single similarity hit from the product index.
type ProductHit struct {
	Record domain.ProductRecord
	Score  float32
}

// ProductPoint is a product vector plus its display payload, as stored in
// the index.
type ProductPoint struct {
	ID        string
	Embedding []float32
	Record    domain.ProductRecord
}
