// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// RepoRef identifies a single repository as an owner/name pair.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRepoRef parses an "owner/name" reference. It reports false for
// anything that does not split into exactly two non-empty segments.
func ParseRepoRef(s string) (RepoRef, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, false
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, true
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ContributionKind classifies a single contribution event.
type ContributionKind int

const (
	KindMergedPR ContributionKind = iota
	KindOpenPR
	KindIssue
)

// ContributionEvent is one timestamped, authored unit of activity fetched
// from GitHub. Events are transient; they are folded into contributor
// records and never persisted.
type ContributionEvent struct {
	Login     string
	AvatarURL string
	CreatedAt time.Time
	Kind      ContributionKind
}

// Contributor holds the accumulated activity of one GitHub login.
// Score is derived from the counts by a scoring pass; it is never
// incremented alongside them.
type Contributor struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	AvatarURL  string    `json:"avatarUrl"`
	MergedPRs  int       `json:"mergedPRs"`
	OpenPRs    int       `json:"openPRs"`
	Issues     int       `json:"issues"`
	Score      int       `json:"score"`
	LastActive time.Time `json:"lastActive"`
	IsIgnored  bool      `json:"isIgnored"`
}

// Weights is the scoring weight triple applied to contribution counts.
type Weights struct {
	MergedPR int `json:"mergedPrWeight"`
	OpenPR   int `json:"openPrWeight"`
	Issue    int `json:"issueWeight"`
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{MergedPR: 10, OpenPR: 5, Issue: 2}
}

// Score computes the weighted score for the given counts.
func (w Weights) Score(merged, open, issues int) int {
	return merged*w.MergedPR + open*w.OpenPR + issues*w.Issue
}

// Settings is the display-layer settings block embedded in every snapshot.
type Settings struct {
	Title           string  `json:"title"`
	RefreshInterval int     `json:"refreshInterval"`
	Scoring         Weights `json:"scoring"`
	EnableAI        bool    `json:"enableAI"`
}

// DefaultSettings returns the settings block used when nothing overrides it.
func DefaultSettings() Settings {
	return Settings{
		Title:           "Leaderboard",
		RefreshInterval: 24,
		Scoring:         DefaultWeights(),
		EnableAI:        false,
	}
}

// TrackedRepo is a repository entry as it appears in a snapshot.
type TrackedRepo struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// Snapshot is the single immutable artifact produced by one pipeline run.
type Snapshot struct {
	Timestamp    time.Time      `json:"timestamp"`
	Contributors []*Contributor `json:"contributors"`
	Repos        []TrackedRepo  `json:"repos"`
	Settings     Settings       `json:"settings"`
}
