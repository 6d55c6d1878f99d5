package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/donizo/pricing-engine/engine/domain"
)

// FeedbackStore appends quote feedback rows. Saves never raise past this
// boundary: any failure becomes a structured FeedbackResult.
type FeedbackStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFeedbackStore creates a FeedbackStore over an existing connection pool.
func NewFeedbackStore(db *sql.DB, logger *slog.Logger) *FeedbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackStore{db: db, logger: logger}
}

const feedbackSchema = `
CREATE TABLE IF NOT EXISTS feedback (
	id         SERIAL PRIMARY KEY,
	task_id    VARCHAR(60) NOT NULL,
	quote_id   VARCHAR(60) NOT NULL,
	user_type  VARCHAR(50) NOT NULL CHECK (user_type IN ('contractor', 'client')),
	verdict    VARCHAR(255) NOT NULL,
	comments   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// Save ensures the schema exists and appends one feedback row.
func (s *FeedbackStore) Save(ctx context.Context, f domain.Feedback) domain.FeedbackResult {
	if err := domain.ValidateFeedback(f); err != nil {
		return domain.FeedbackResult{Status: domain.StatusFail, Message: err.Error()}
	}
	if _, err := s.db.ExecContext(ctx, feedbackSchema); err != nil {
		s.logger.Warn("feedback schema ensure failed", "err", err)
		return domain.FeedbackResult{Status: domain.StatusFail, Message: fmt.Sprintf("schema: %v", err)}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (task_id, quote_id, user_type, verdict, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		f.TaskID, f.QuoteID, string(f.UserType), f.Verdict, f.Comments)
	if err != nil {
		s.logger.Warn("feedback insert failed", "quote_id", f.QuoteID, "err", err)
		return domain.FeedbackResult{Status: domain.StatusFail, Message: fmt.Sprintf("insert: %v", err)}
	}
	return domain.FeedbackResult{Status: domain.StatusSuccess, Message: "Feedback recorded"}
}
