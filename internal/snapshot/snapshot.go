// Package snapshot assembles, writes and reads the leaderboard snapshot artifact.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oss-contrib/leaderboard/internal/domain"
)

// Build assembles a snapshot from the pipeline's results. A non-empty
// whitelist keeps only the listed logins. Contributors are sorted by score
// descending; the sort is stable so equal scores keep first-seen order.
func Build(contributors []*domain.Contributor, repos []domain.RepoRef, whitelist []string, settings domain.Settings) *domain.Snapshot {
	if len(whitelist) > 0 {
		allowed := make(map[string]struct{}, len(whitelist))
		for _, u := range whitelist {
			allowed[u] = struct{}{}
		}
		kept := make([]*domain.Contributor, 0, len(contributors))
		for _, c := range contributors {
			if _, ok := allowed[c.Username]; ok {
				kept = append(kept, c)
			}
		}
		contributors = kept
	}
	if contributors == nil {
		contributors = []*domain.Contributor{}
	}
	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].Score > contributors[j].Score
	})

	tracked := make([]domain.TrackedRepo, 0, len(repos))
	for _, r := range repos {
		tracked = append(tracked, domain.TrackedRepo{Owner: r.Owner, Name: r.Name, IsActive: true})
	}

	return &domain.Snapshot{
		Timestamp:    time.Now().UTC(),
		Contributors: contributors,
		Repos:        tracked,
		Settings:     settings,
	}
}

// Write serializes the snapshot and atomically replaces the file at path.
// The data goes to a temporary file in the destination directory first and
// is renamed into place, so a reader never observes a partial snapshot and
// a failed run leaves the previous snapshot untouched.
func Write(path string, snap *domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temporary snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot previously written by Write.
func Read(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}
