// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/oss-contrib/leaderboard/internal/config"
	"github.com/oss-contrib/leaderboard/internal/domain"
	"github.com/oss-contrib/leaderboard/internal/gateway"
	"github.com/oss-contrib/leaderboard/internal/snapshot"
)

// fetchChunkSize bounds how many repositories are fetched concurrently.
// Chunks run one after another as a simple backpressure valve against the
// GitHub API.
const fetchChunkSize = 5

// Pipeline orchestrates one leaderboard snapshot run: repository set
// resolution, chunked concurrent fetching, accumulation, scoring and
// snapshot assembly.
type Pipeline struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewPipeline creates a new Pipeline instance.
func NewPipeline(fetcher gateway.Fetcher, logger *log.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Run executes the pipeline and returns the assembled snapshot. It always
// produces one: per-organization and per-repository failures are logged
// and contribute nothing rather than aborting the run.
func (p *Pipeline) Run(ctx context.Context, cfg config.Config, settings domain.Settings) *domain.Snapshot {
	p.logger.Println("Pipeline: Starting snapshot run...")

	repos := p.resolveRepos(ctx, cfg)
	p.logger.Printf("Tracking %d repositories.", len(repos))

	acc := NewAccumulator()
	for start := 0; start < len(repos); start += fetchChunkSize {
		end := min(start+fetchChunkSize, len(repos))
		chunk := repos[start:end]

		// Each fetch fills its own slot; events are folded into the
		// accumulator only after the whole chunk has finished.
		batches := make([][]domain.ContributionEvent, len(chunk))
		eg, egCtx := errgroup.WithContext(ctx)
		for i, repo := range chunk {
			i, repo := i, repo
			eg.Go(func() error {
				events, err := p.fetcher.RepoContributions(egCtx, repo)
				if err != nil {
					p.logger.Printf("Failed to fetch %s: %v", repo, err)
					return nil // a failed repository contributes nothing
				}
				batches[i] = events
				return nil
			})
		}
		_ = eg.Wait() // goroutines never return an error

		for _, events := range batches {
			for _, ev := range events {
				if ev.CreatedAt.Before(cfg.StartDate) {
					continue
				}
				acc.Add(ev)
			}
		}
	}

	// Scores are computed in a single pass after all merging completes,
	// never incrementally alongside the counts.
	contributors := acc.Contributors()
	for _, c := range contributors {
		c.Score = settings.Scoring.Score(c.MergedPRs, c.OpenPRs, c.Issues)
	}

	p.logger.Printf("Pipeline: Aggregated %d contributors.", len(contributors))
	return snapshot.Build(contributors, repos, cfg.Users, settings)
}

// resolveRepos expands the configured repository and organization sets into
// a deduplicated list, preserving first-seen order.
func (p *Pipeline) resolveRepos(ctx context.Context, cfg config.Config) []domain.RepoRef {
	var refs []domain.RepoRef
	for _, s := range cfg.Repos {
		ref, ok := domain.ParseRepoRef(s)
		if !ok {
			continue // malformed entries are dropped
		}
		refs = append(refs, ref)
	}
	for _, org := range cfg.Orgs {
		orgRefs, err := p.fetcher.OrgRepos(ctx, org)
		if err != nil {
			p.logger.Printf("Failed to fetch org %s: %v", org, err)
			continue // a failed organization contributes zero repositories
		}
		refs = append(refs, orgRefs...)
	}

	seen := make(map[string]struct{}, len(refs))
	unique := make([]domain.RepoRef, 0, len(refs))
	for _, ref := range refs {
		key := ref.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, ref)
	}
	return unique
}
