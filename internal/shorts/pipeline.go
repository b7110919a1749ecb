package shorts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// querySuffix is always appended to the product name, in both search modes.
// The standard search inherits it from the original service contract.
const querySuffix = " shorts"

// PipelineConfig parametrizes one search variant.
type PipelineConfig struct {
	Mode SearchMode
	// MaxResults caps how many raw entries each cycle processes.
	MaxResults int
	// MaxRetries is the number of extra fetch cycles allowed while the
	// survivor count stays below MinSurvivors.
	MaxRetries int
	// MinSurvivors is the target count that stops retrying.
	MinSurvivors int
	// TopN truncates the ranked output; 0 means no truncation.
	TopN int
}

// ShortFormConfig returns the short-form search variant defaults.
func ShortFormConfig() PipelineConfig {
	return PipelineConfig{
		Mode:         ModeShortForm,
		MaxResults:   50,
		MaxRetries:   3,
		MinSurvivors: 3,
		TopN:         3,
	}
}

// StandardConfig returns the standard search variant defaults: a single
// cycle over the first 10 raw entries, full ranked output.
func StandardConfig() PipelineConfig {
	return PipelineConfig{
		Mode:       ModeStandard,
		MaxResults: 10,
	}
}

// Pipeline orchestrates fetch, filter, score, enrich, retry and rank for a
// single product query.
type Pipeline struct {
	fetcher  PageFetcher
	metadata MetadataProvider
	filter   *CandidateFilter
	cfg      PipelineConfig
	logger   *zap.Logger
}

// NewPipeline wires a pipeline for the variant described by cfg.
func NewPipeline(fetcher PageFetcher, metadata MetadataProvider, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		metadata: metadata,
		filter:   NewCandidateFilter(cfg.Mode),
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes the pipeline for one product and returns the ranked
// candidates. A single browser session backs the whole run, including
// retries, and is released on every exit path. Fetch-cycle failures are
// logged and terminate the loop with whatever has accumulated; only session
// acquisition itself surfaces as an error.
func (p *Pipeline) Run(ctx context.Context, productCode int, productName string) ([]Candidate, error) {
	query := productName + querySuffix
	mode := string(p.cfg.Mode)

	session, err := p.fetcher.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire search session: %w", err)
	}
	defer session.Close()

	var survivors []Candidate
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Warn("not enough candidates, searching again",
				zap.String("query", query),
				zap.Int("found", len(survivors)),
				zap.Int("attempt", attempt),
			)
		}
		nodes, err := session.Search(ctx, query)
		if err != nil {
			p.logger.Error("search fetch failed", zap.String("query", query), zap.Error(err))
			searchCyclesTotal.WithLabelValues(mode, "error").Inc()
			break
		}
		searchCyclesTotal.WithLabelValues(mode, "ok").Inc()
		if len(nodes) == 0 {
			p.logger.Warn("no videos found", zap.String("query", query))
			break
		}
		if len(nodes) > p.cfg.MaxResults {
			nodes = nodes[:p.cfg.MaxResults]
		}
		survivors = append(survivors, p.processNodes(ctx, productCode, nodes)...)
		if len(survivors) >= p.cfg.MinSurvivors {
			break
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Popularity > survivors[j].Popularity
	})
	if p.cfg.TopN > 0 && len(survivors) > p.cfg.TopN {
		survivors = survivors[:p.cfg.TopN]
	}
	return survivors, nil
}

// processNodes filters and enriches one batch of raw result nodes. A bad
// node never aborts the batch.
func (p *Pipeline) processNodes(ctx context.Context, productCode int, nodes []*goquery.Selection) []Candidate {
	mode := string(p.cfg.Mode)
	out := make([]Candidate, 0, len(nodes))
	for _, node := range nodes {
		cand, err := p.filter.Apply(node)
		if err != nil {
			if errors.Is(err, ErrNoVideoID) || errors.Is(err, ErrModeMismatch) {
				p.logger.Debug("result filtered", zap.Error(err))
			} else {
				p.logger.Error("error processing result node", zap.Error(err))
			}
			continue
		}
		cand.ProductCode = productCode
		cand.SentimentScore = ScoreSentiment(cand.Title)
		likes, err := p.metadata.Popularity(ctx, cand.VideoID)
		if err != nil {
			p.logger.Error("metadata fetch failed",
				zap.String("video_id", cand.VideoID), zap.Error(err))
			metadataFailuresTotal.Inc()
			likes = 0
		}
		cand.Popularity = likes
		candidatesTotal.WithLabelValues(mode).Inc()
		out = append(out, cand)
	}
	return out
}
