package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/shoptrends-cli/internal/dataset"
)

// Skipped records a question that could not be answered.
type Skipped struct {
	Question QuestionID `json:"question" yaml:"question"`
	Reason   string     `json:"reason" yaml:"reason"`
}

// Results collects every bundle produced for one table.
type Results struct {
	Rows     int       `json:"rows" yaml:"rows"`
	Bundles  []*Bundle `json:"bundles" yaml:"bundles"`
	Skipped  []Skipped `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Bundle returns the bundle for q, or nil when it was skipped.
func (r *Results) Bundle(q QuestionID) *Bundle {
	for _, b := range r.Bundles {
		if b.Question == q {
			return b
		}
	}
	return nil
}

// MaxSkipped is how many questions may fail with an AggregationError before
// the whole run fails.
const MaxSkipped = 1

// RunAll answers every question concurrently. At most MaxSkipped questions
// failing with an AggregationError are skipped; more than that, or any other
// error, aborts the run. Skips are logged through the logger attached to ctx,
// or the global one.
func RunAll(ctx context.Context, t *dataset.Table, opt Options) (*Results, error) {
	if t == nil || t.Len() == 0 {
		return nil, &EmptyTableError{}
	}
	a := NewAnalyzer(t, opt)

	bundles := make([]*Bundle, len(Questions))
	skipped := make([]error, len(Questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opt.Workers)
	for i, q := range Questions {
		i, q := i, q
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := a.Run(q)
			var aggErr *AggregationError
			switch {
			case errors.As(err, &aggErr):
				skipped[i] = err
				return nil
			case err != nil:
				return err
			}
			bundles[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	res := &Results{Rows: t.Len(), Warnings: t.Warnings()}
	var skipErrs []error
	for i, q := range Questions {
		if skipped[i] != nil {
			logger.Warn().Str("question", q.String()).Err(skipped[i]).Msg("question skipped")
			res.Skipped = append(res.Skipped, Skipped{Question: q, Reason: skipped[i].Error()})
			skipErrs = append(skipErrs, skipped[i])
			continue
		}
		res.Bundles = append(res.Bundles, bundles[i])
	}
	if len(skipErrs) > MaxSkipped {
		return nil, fmt.Errorf("%d of %d questions could not be answered: %w",
			len(skipErrs), len(Questions), errors.Join(skipErrs...))
	}
	logger.Debug().Int("bundles", len(res.Bundles)).Int("skipped", len(res.Skipped)).Msg("analysis complete")
	return res, nil
}
