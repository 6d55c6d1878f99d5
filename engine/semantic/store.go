// Package semantic owns the Qdrant product index: the primary, approximate
// path for material similarity search. The Postgres catalog remains the
// source of truth; this index can be rebuilt from it at any time.
package semantic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/donizo/pricing-engine/engine/domain"
)

// VectorStore is the sole owner of all Qdrant operations.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
func New(addr string, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (v *VectorStore) EnsureCollection(ctx context.Context, dims int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	d := uint64(dims)
	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     d,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// DeleteCollection deletes the collection. Used by backfill --reset.
func (v *VectorStore) DeleteCollection(ctx context.Context) error {
	_, err := v.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: v.collection,
	})
	if err != nil {
		return fmt.Errorf("semantic: delete collection %s: %w", v.collection, err)
	}
	return nil
}

// Upsert stores product points. Called by engine/ingest and cmd/backfill.
func (v *VectorStore) Upsert(ctx context.Context, points []ProductPoint) error {
	if len(points) == 0 {
		return nil
	}

	pts := make([]*pb.PointStruct, len(points))
	for i, p := range points {
		pts[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(p.ID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: p.Embedding},
				},
			},
			Payload: payloadFromRecord(p.Record),
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         pts,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(points), err)
	}
	return nil
}

// pointID maps a catalog product ID onto a Qdrant point ID. Qdrant only
// accepts unsigned integers or UUIDs, so vendor SKUs get a deterministic
// UUID derived from the raw ID. The raw ID still travels in the payload and
// search results read it from there.
func pointID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("donizo:point:"+id)).String()
}

// SearchProducts performs similarity search ordered by score descending,
// with optional region/vendor equality filters. An empty result is a valid
// outcome; the caller decides whether to fall back to a full scan.
func (v *VectorStore) SearchProducts(ctx context.Context, embedding []float32, limit int, region, vendor string) ([]ProductHit, error) {
	req := &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if f := buildFilter(region, vendor); f != nil {
		req.Filter = f
	}

	resp, err := v.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	hits := make([]ProductHit, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		hits[i] = ProductHit{
			Record: recordFromPayload(r.GetId().GetUuid(), r.GetPayload()),
			Score:  r.GetScore(),
		}
	}
	return hits, nil
}

// buildFilter returns the equality filter for region/vendor, or nil when
// neither is set.
func buildFilter(region, vendor string) *pb.Filter {
	var must []*pb.Condition
	if region != "" {
		must = append(must, fieldMatch("region", region))
	}
	if vendor != "" {
		must = append(must, fieldMatch("vendor", vendor))
	}
	if len(must) == 0 {
		return nil
	}
	return &pb.Filter{Must: must}
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func payloadFromRecord(r domain.ProductRecord) map[string]*pb.Value {
	str := func(s string) *pb.Value {
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
	}
	return map[string]*pb.Value{
		"product_id":    str(r.ID),
		"material_name": str(r.Name),
		"description":   str(r.Description),
		"unit_price":    str(r.UnitPrice),
		"unit":          str(r.Unit),
		"region":        str(r.Region),
		"vendor":        str(r.Vendor),
		"vat_rate":      str(r.VATRate),
		"quality_score": {Kind: &pb.Value_DoubleValue{DoubleValue: r.QualityScore}},
		"updated_at":    str(r.UpdatedAt.UTC().Format(time.RFC3339)),
		"source":        str(r.Source),
	}
}

func recordFromPayload(pointID string, payload map[string]*pb.Value) domain.ProductRecord {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	rec := domain.ProductRecord{
		ID:          get("product_id"),
		Name:        get("material_name"),
		Description: get("description"),
		UnitPrice:   get("unit_price"),
		Unit:        get("unit"),
		Region:      get("region"),
		Vendor:      get("vendor"),
		VATRate:     get("vat_rate"),
		Source:      get("source"),
	}
	if rec.ID == "" {
		rec.ID = pointID
	}
	if v, ok := payload["quality_score"]; ok {
		rec.QualityScore = v.GetDoubleValue()
	}
	if ts := get("updated_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.UpdatedAt = t
		}
	}
	return rec
}
