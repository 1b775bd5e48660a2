package store

import (
	"log/slog"

	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
)

// Hydrate decodes a stored document into a job. Rejected field values are
// left at their defaults, logged, and counted under metrics.CounterDecodeSkip.
// Both log and m may be nil.
func Hydrate(doc map[string]any, log *slog.Logger, m *metrics.Collector) *models.Job {
	job, skipped := models.DecodeDoc(doc)
	if len(skipped) == 0 {
		return job
	}
	if log != nil {
		log.Warn("ignored invalid job fields", "job_id", job.ID, "fields", skipped)
	}
	m.Add(metrics.CounterDecodeSkip, int64(len(skipped)))
	return job
}
