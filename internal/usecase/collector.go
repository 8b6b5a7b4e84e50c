package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/naka-gawa/github-report/internal/dataset"
	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of repositories fetched at once.
const DefaultConcurrency = 4

// RepositoryRef identifies a repository as owner/name.
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepositoryRef parses "owner/name". Surrounding whitespace is ignored.
func ParseRepositoryRef(s string) (RepositoryRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepositoryRef{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return RepositoryRef{Owner: owner, Name: name}, nil
}

// Collector is the use case for building a dataset from live GitHub data.
type Collector struct {
	fetcher     gateway.Fetcher
	logger      *log.Logger
	concurrency int
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, logger *log.Logger, concurrency int) *Collector {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Collector{fetcher: fetcher, logger: logger, concurrency: concurrency}
}

// Collect fetches every repository concurrently and returns the records in
// input order with duplicates removed. The first failure cancels the rest.
func (c *Collector) Collect(ctx context.Context, refs []RepositoryRef) (domain.Dataset, error) {
	c.logger.Printf("Usecase: collecting %d repositories...", len(refs))

	records := make([]domain.Record, len(refs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		eg.Go(func() error {
			rec, err := c.fetcher.FetchRepository(egCtx, ref.Owner, ref.Name)
			if err != nil {
				return fmt.Errorf("repository %s: %w", ref, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	ds := dataset.Dedup(records)
	c.logger.Printf("Usecase: collected %d records.", len(ds))
	return ds, nil
}
