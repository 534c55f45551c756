package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/store"
)

// DefaultBatchLimit is how many unprocessed emails a run takes when no limit is given.
const DefaultBatchLimit = 5

// BatchOptions selects the emails for RunBatch. EmailID wins over Limit.
type BatchOptions struct {
	Limit   int
	EmailID string
}

// BatchSummary totals a batch run.
type BatchSummary struct {
	Total        int      `json:"total"`
	Created      int      `json:"created"`
	Linked       int      `json:"linked"`
	Placeholders int      `json:"placeholders"`
	Skipped      int      `json:"skipped"`
	Failed       int      `json:"failed"`
	Results      []Result `json:"results"`
}

func (s *BatchSummary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeCreated:
		s.Created++
	case OutcomeLinked:
		s.Linked++
	case OutcomePlaceholder:
		s.Placeholders++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// SelectEmails loads the emails a batch would process.
func (p *Processor) SelectEmails(ctx context.Context, opts BatchOptions) ([]store.Email, error) {
	if opts.EmailID != "" {
		id, err := uuid.Parse(opts.EmailID)
		if err != nil {
			return nil, fmt.Errorf("invalid email id %q: %w", opts.EmailID, err)
		}
		email, err := p.store.EmailByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []store.Email{email}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	return p.store.UnprocessedEmails(ctx, limit)
}

// RunBatch processes emails one at a time. A failing email is counted and
// logged; the batch continues. Only selection errors and cancellation stop it.
func (p *Processor) RunBatch(ctx context.Context, opts BatchOptions) (BatchSummary, error) {
	var summary BatchSummary

	emails, err := p.SelectEmails(ctx, opts)
	if err != nil {
		return summary, err
	}
	summary.Total = len(emails)
	if len(emails) == 0 {
		p.logger.Info("no emails to process")
		return summary, nil
	}

	neighborhoods := p.LoadNeighborhoods(ctx)

	for i, email := range emails {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.logger.Info("processing email",
			zap.Int("index", i+1),
			zap.Int("total", len(emails)),
			zap.Stringer("email_id", email.ID),
			zap.String("from", email.FromAddress),
		)

		res, err := p.ProcessEmail(ctx, email, neighborhoods)
		if err != nil {
			summary.Failed++
			p.metrics.failures.Inc()
			p.logger.Error("email failed", zap.Stringer("email_id", email.ID), zap.Error(err))
			continue
		}
		summary.add(res)
	}

	p.logger.Info("batch complete",
		zap.Int("total", summary.Total),
		zap.Int("created", summary.Created),
		zap.Int("linked", summary.Linked),
		zap.Int("placeholders", summary.Placeholders),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
