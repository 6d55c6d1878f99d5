package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/donizo/pricing-engine/engine/domain"
	"github.com/donizo/pricing-engine/engine/semantic"
	"github.com/donizo/pricing-engine/pkg/fn"
	"github.com/donizo/pricing-engine/pkg/metrics"
)

// Subjects and retry policy for the scraped-product stream.
const (
	Subject    = "catalog.ingest"
	DLQSubject = "catalog.ingest.dlq"

	retryHeader = "X-Retry-Count"
	MaxRetries  = 3
)

// Embedder produces an embedding vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CatalogWriter persists a product to the source-of-truth store.
type CatalogWriter interface {
	Upsert(ctx context.Context, p domain.ProductRecord) error
}

// IndexWriter persists product points to the vector index.
type IndexWriter interface {
	Upsert(ctx context.Context, points []semantic.ProductPoint) error
}

// Pipeline runs validate -> embed -> store for one scraped product.
type Pipeline struct {
	embedder Embedder
	catalog  CatalogWriter
	index    IndexWriter
	limiter  *rate.Limiter
	logger   *slog.Logger

	processed *metrics.Counter
	failed    *metrics.Counter
}

// NewPipeline wires an ingest pipeline. limiter throttles embedding calls so
// bulk scrapes don't overload the model server; reg may be nil.
func NewPipeline(e Embedder, cat CatalogWriter, idx IndexWriter, limiter *rate.Limiter, logger *slog.Logger, reg *metrics.Registry) *Pipeline {
	p := &Pipeline{embedder: e, catalog: cat, index: idx, limiter: limiter, logger: logger}
	if reg != nil {
		p.processed = reg.Counter("ingest_processed_total", "Products ingested successfully.")
		p.failed = reg.Counter("ingest_failed_total", "Products that failed ingestion.")
	}
	return p
}

// embedRetry smooths over transient model-server failures before the
// message falls back to NATS-level requeueing.
var embedRetry = fn.DefaultRetry

// Process validates, embeds and stores a scraped product.
func (p *Pipeline) Process(ctx context.Context, sp ScrapedProduct) error {
	stage := fn.TracedStage("ingest.process",
		fn.Then(fn.Then(p.validate(), fn.RetryStage(embedRetry, p.embed())), p.store()))

	result := stage(ctx, sp)
	if _, err := result.Unwrap(); err != nil {
		if p.failed != nil {
			p.failed.Inc()
		}
		return err
	}
	if p.processed != nil {
		p.processed.Inc()
	}
	return nil
}

func (p *Pipeline) validate() fn.Stage[ScrapedProduct, domain.ProductRecord] {
	return func(_ context.Context, sp ScrapedProduct) fn.Result[domain.ProductRecord] {
		rec := Normalize(sp)
		if err := domain.ValidateProduct(rec); err != nil {
			return fn.Err[domain.ProductRecord](err)
		}
		return fn.Ok(rec)
	}
}

func (p *Pipeline) embed() fn.Stage[domain.ProductRecord, domain.ProductRecord] {
	return func(ctx context.Context, rec domain.ProductRecord) fn.Result[domain.ProductRecord] {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return fn.Err[domain.ProductRecord](err)
			}
		}

		text := rec.Name
		if rec.Description != "" {
			text += " " + rec.Description
		}
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			return fn.Err[domain.ProductRecord](err)
		}
		rec.Embedding = vec
		return fn.Ok(rec)
	}
}

func (p *Pipeline) store() fn.Stage[domain.ProductRecord, domain.ProductRecord] {
	return func(ctx context.Context, rec domain.ProductRecord) fn.Result[domain.ProductRecord] {
		if err := p.catalog.Upsert(ctx, rec); err != nil {
			return fn.Err[domain.ProductRecord](err)
		}
		point := semantic.ProductPoint{ID: rec.ID, Embedding: rec.Embedding, Record: rec}
		if err := p.index.Upsert(ctx, []semantic.ProductPoint{point}); err != nil {
			return fn.Err[domain.ProductRecord](err)
		}
		return fn.Ok(rec)
	}
}

// Consumer subscribes the pipeline to the scraped-product subject. Failed
// messages are requeued with a retry counter and dead-lettered after
// MaxRetries; unparseable messages go straight to the DLQ.
type Consumer struct {
	nc       *nats.Conn
	pipeline *Pipeline
	logger   *slog.Logger

	deadLettered *metrics.Counter
}

// NewConsumer wires a consumer. reg may be nil.
func NewConsumer(nc *nats.Conn, pipeline *Pipeline, logger *slog.Logger, reg *metrics.Registry) *Consumer {
	c := &Consumer{nc: nc, pipeline: pipeline, logger: logger}
	if reg != nil {
		c.deadLettered = reg.Counter("ingest_dead_lettered_total", "Messages sent to the DLQ.")
	}
	return c
}

// Start subscribes to the ingest subject. ctx bounds message processing.
func (c *Consumer) Start(ctx context.Context) (*nats.Subscription, error) {
	return c.nc.Subscribe(Subject, func(msg *nats.Msg) {
		c.handle(ctx, msg)
	})
}

func (c *Consumer) handle(ctx context.Context, msg *nats.Msg) {
	var sp ScrapedProduct
	if err := json.Unmarshal(msg.Data, &sp); err != nil {
		c.logger.Warn("unparseable ingest message", "error", err)
		c.deadLetter(msg)
		return
	}

	if err := c.pipeline.Process(ctx, sp); err != nil {
		retries := retryCount(msg)
		if retries >= MaxRetries {
			c.logger.Error("ingest failed after retries",
				"material", sp.Name, "retries", retries, "error", err)
			c.deadLetter(msg)
			return
		}
		c.logger.Warn("ingest failed, requeueing",
			"material", sp.Name, "retry", retries+1, "error", err)
		c.requeue(msg, retries+1)
	}
}

func (c *Consumer) requeue(msg *nats.Msg, retries int) {
	out := &nats.Msg{Subject: Subject, Data: msg.Data, Header: nats.Header{}}
	out.Header.Set(retryHeader, strconv.Itoa(retries))
	if err := c.nc.PublishMsg(out); err != nil {
		c.logger.Error("requeue publish failed", "error", err)
	}
}

func (c *Consumer) deadLetter(msg *nats.Msg) {
	if c.deadLettered != nil {
		c.deadLettered.Inc()
	}
	out := &nats.Msg{Subject: DLQSubject, Data: msg.Data, Header: msg.Header}
	if err := c.nc.PublishMsg(out); err != nil {
		c.logger.Error("dead letter publish failed", "error", err)
	}
}

func retryCount(msg *nats.Msg) int {
	if msg.Header == nil {
		return 0
	}
	n, err := strconv.Atoi(msg.Header.Get(retryHeader))
	if err != nil {
		return 0
	}
	return n
}
