package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/donizo/pricing-engine/engine/domain"
)

// materialSearcher is the slice of the match engine the handlers need.
type materialSearcher interface {
	Search(ctx context.Context, query, region, vendor string, limit int) []domain.MatchResult
}

// proposalGenerator builds a proposal from a raw transcript.
type proposalGenerator interface {
	Generate(ctx context.Context, transcript string) *domain.Proposal
}

// feedbackSaver records quote feedback, absorbing persistence failures.
type feedbackSaver interface {
	Save(ctx context.Context, f domain.Feedback) domain.FeedbackResult
}

// quoteNotifier publishes a generated proposal as an event. Best effort.
type quoteNotifier func(ctx context.Context, p *domain.Proposal)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleMaterialPrice(matcher materialSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := strings.TrimSpace(q.Get("query"))
		if query == "" {
			http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
			return
		}

		limit, _ := strconv.Atoi(q.Get("limit"))
		results := matcher.Search(r.Context(), query, q.Get("region"), q.Get("vendor"), limit)

		// The body is the match list itself; Search never returns nil, so an
		// empty result serializes as [].
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

// ProposalRequest is the JSON body for POST /api/generate-proposal.
type ProposalRequest struct {
	Transcript string `json:"transcript"`
}

func handleGenerateProposal(quotes proposalGenerator, notify quoteNotifier, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProposalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Transcript) == "" {
			http.Error(w, `{"error":"transcript is required"}`, http.StatusBadRequest)
			return
		}

		proposal := quotes.Generate(r.Context(), req.Transcript)
		if notify != nil {
			notify(r.Context(), proposal)
		}
		logger.Info("proposal generated",
			"quote_id", proposal.QuoteID, "total_estimate", proposal.TotalEstimate)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(proposal)
	}
}

// feedbackRequest accepts "comment" as an alias for the canonical
// "comments" field, so clients using either spelling keep their text.
type feedbackRequest struct {
	domain.Feedback
	Comment string `json:"comment"`
}

func handleFeedback(store feedbackSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Feedback.Comments == "" {
			req.Feedback.Comments = req.Comment
		}

		// Save never errors; failures come back as a structured result.
		result := store.Save(r.Context(), req.Feedback)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
