package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/taf-iwxxm-etl/internal/domain"
	"github.com/couchcryptid/taf-iwxxm-etl/internal/observability"
)

// TAFTransformer implements Transformer by running each message through the
// forecast conversion engine.
type TAFTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a TAFTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *TAFTransformer {
	return &TAFTransformer{
		logger:  logger,
		metrics: metrics,
	}
}

// Transform parses and converts a raw TAF. Conversion issues do not fail the
// message; they travel in the output envelope. Only undecodable input and
// serialization failures are returned as errors.
func (t *TAFTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	taf, err := domain.ParseTAF(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	res := domain.Convert(taf)
	t.record(res)

	if len(res.Issues) > 0 {
		t.logger.Debug("taf converted with issues",
			"location", taf.Metadata.Location,
			"issue_count", len(res.Issues),
			"first_issue", res.Issues[0].String(),
			"offset", raw.Offset,
		)
	}

	return domain.SerializeResult(taf, res)
}

func (t *TAFTransformer) record(res domain.Result) {
	for _, issue := range res.Issues {
		t.metrics.ConversionIssues.WithLabelValues(string(issue.Kind)).Inc()
	}
	for _, cf := range res.Report.ChangeForecasts {
		t.metrics.ChangeGroups.WithLabelValues(cf.Indicator.String()).Inc()
	}
}
