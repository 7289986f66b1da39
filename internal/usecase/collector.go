package usecase

import (
	"context"

	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/naka-gawa/readme-stats/internal/gateway"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Collector is the use case for fetching everything a report needs.
// It orchestrates the count query and the partition query.
type Collector struct {
	fetcher  gateway.Fetcher
	logger   *zap.Logger
	pageSize int
	parallel bool
}

// NewCollector creates a new Collector instance.
// pageSize must match the page size the fetcher queries with; a partition holding
// exactly that many records is reported as probably truncated.
func NewCollector(fetcher gateway.Fetcher, pageSize int, parallel bool, logger *zap.Logger) *Collector {
	return &Collector{
		fetcher:  fetcher,
		logger:   logger,
		pageSize: pageSize,
		parallel: parallel,
	}
}

// Collect runs both round trips and returns the combined result.
// By default the count query finishes before the partition query starts.
// Any failure aborts the collection and no partial result is returned.
func (c *Collector) Collect(ctx context.Context, login string, partitions []domain.Partition) (*domain.FetchResult, error) {
	c.logger.Debug("starting data collection", zap.String("login", login))

	result := &domain.FetchResult{Login: login}

	eg, egCtx := errgroup.WithContext(ctx)
	if !c.parallel {
		eg.SetLimit(1)
	}

	eg.Go(func() error {
		var err error
		result.Counts, result.Contributions, err = c.fetcher.FetchCounts(egCtx, login)
		return err
	})

	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		var err error
		result.Partitions, err = c.fetcher.FetchRepositories(egCtx, login, partitions)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	c.warnTruncation(result.Partitions)
	c.logger.Debug("all data fetched successfully")
	return result, nil
}

func (c *Collector) warnTruncation(partitions map[domain.Partition][]domain.RepositoryRecord) {
	for _, p := range domain.AllPartitions {
		records := partitions[p]
		if c.pageSize > 0 && len(records) >= c.pageSize {
			c.logger.Warn("partition reached the page size, results are probably truncated",
				zap.Stringer("partition", p), zap.Int("page_size", c.pageSize))
		}
		for _, r := range records {
			if r.LanguageCount > len(r.Languages) {
				c.logger.Warn("repository has more languages than were fetched",
					zap.String("repository", r.NameWithOwner),
					zap.Int("fetched", len(r.Languages)), zap.Int("total", r.LanguageCount))
			}
		}
	}
}
