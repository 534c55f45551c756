package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/blob"
)

// DefaultRetention is how long emails and attachments are kept.
const DefaultRetention = 90 * 24 * time.Hour

// PurgeSummary reports a retention run.
type PurgeSummary struct {
	Cutoff        time.Time `json:"cutoff"`
	BlobsDeleted  int       `json:"blobs_deleted"`
	BlobsFailed   int       `json:"blobs_failed"`
	EmailsDeleted bool      `json:"emails_deleted"`
}

// Purger removes attachment files and email rows past the retention window.
type Purger struct {
	store   PurgeStore
	blobs   blob.Storage
	metrics *Metrics
	logger  *zap.Logger
}

// NewPurger builds a purger. metrics and logger may be nil.
func NewPurger(s PurgeStore, blobs blob.Storage, metrics *Metrics, logger *zap.Logger) *Purger {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Purger{store: s, blobs: blobs, metrics: metrics, logger: logger}
}

// Purge deletes blobs of emails received before now minus olderThan, then
// runs the database delete. Blob failures are logged and skipped.
func (p *Purger) Purge(ctx context.Context, now time.Time, olderThan time.Duration) (PurgeSummary, error) {
	if olderThan <= 0 {
		olderThan = DefaultRetention
	}
	summary := PurgeSummary{Cutoff: now.Add(-olderThan)}

	paths, err := p.store.OldEmailAttachments(ctx, summary.Cutoff)
	if err != nil {
		return summary, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := p.blobs.Delete(ctx, path); err != nil {
			summary.BlobsFailed++
			p.metrics.purgeErrs.Inc()
			p.logger.Warn("failed to delete attachment", zap.String("path", path), zap.Error(err))
			continue
		}
		summary.BlobsDeleted++
		p.metrics.purged.Inc()
	}

	if err := p.store.DeleteOldEmails(ctx); err != nil {
		return summary, err
	}
	summary.EmailsDeleted = true

	p.logger.Info("retention purge complete",
		zap.Time("cutoff", summary.Cutoff),
		zap.Int("blobs_deleted", summary.BlobsDeleted),
		zap.Int("blobs_failed", summary.BlobsFailed),
	)
	return summary, nil
}
