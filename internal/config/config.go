// Package config resolves the run configuration from an ordered chain of
// sources: a labeled GitHub issue, a local file, then built-in defaults.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/oss-contrib/leaderboard/internal/domain"
)

// DefaultStartDate is the activity cutoff used when no source provides one.
var DefaultStartDate = time.Unix(0, 0).UTC()

// Config is the resolved run configuration. It is immutable for the
// duration of a run.
type Config struct {
	Repos     []string
	Orgs      []string
	Users     []string
	StartDate time.Time
}

// schema is the JSON shape shared by the local file and the issue body.
type schema struct {
	Repos     []string `json:"repos"`
	Orgs      []string `json:"orgs"`
	Users     []string `json:"users"`
	StartDate string   `json:"startDate,omitempty"`
}

const startDateLayout = "2006-01-02"

func (s schema) resolve() Config {
	cfg := Config{
		Repos:     s.Repos,
		Orgs:      s.Orgs,
		Users:     s.Users,
		StartDate: DefaultStartDate,
	}
	if s.StartDate != "" {
		if t, err := time.Parse(startDateLayout, s.StartDate); err == nil {
			cfg.StartDate = t.UTC()
		}
	}
	return cfg
}

// Source is one configuration strategy. Load returns (nil, nil) when the
// source has nothing to offer, which moves the resolver on to the next one.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Config, error)
}

// Resolve walks the sources in order and returns the first config produced.
// It never fails: a failing source is logged and skipped, and an empty
// default config is returned when every source comes up empty.
func Resolve(ctx context.Context, logger *log.Logger, sources ...Source) Config {
	for _, s := range sources {
		cfg, err := s.Load(ctx)
		if err != nil {
			logger.Printf("Config source %s failed: %v", s.Name(), err)
			continue
		}
		if cfg == nil {
			continue
		}
		logger.Printf("Loaded configuration from %s.", s.Name())
		return *cfg
	}
	return Config{StartDate: DefaultStartDate}
}

// IssueBodyFetcher fetches the body of a repository's open config issue.
type IssueBodyFetcher interface {
	ConfigIssueBody(ctx context.Context, owner, name string) (string, error)
}

// IssueSource loads configuration from a fenced json block in the body of
// a labeled issue on the repository hosting the leaderboard.
type IssueSource struct {
	Fetcher IssueBodyFetcher
	Repo    domain.RepoRef
}

func (s IssueSource) Name() string {
	return fmt.Sprintf("config issue in %s", s.Repo)
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

func (s IssueSource) Load(ctx context.Context) (*Config, error) {
	body, err := s.Fetcher.ConfigIssueBody(ctx, s.Repo.Owner, s.Repo.Name)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, nil
	}
	m := fencedJSON.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("config issue body has no fenced json block")
	}
	var raw schema
	if err := json.Unmarshal([]byte(m[1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config issue JSON: %w", err)
	}
	cfg := raw.resolve()
	return &cfg, nil
}

// FileSource loads configuration from a local JSON file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return "file " + s.Path
}

func (s FileSource) Load(_ context.Context) (*Config, error) {
	var raw schema
	if err := cleanenv.ReadConfig(s.Path, &raw); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := raw.resolve()
	return &cfg, nil
}

// Defaults is the terminal source; it always succeeds with an empty config.
type Defaults struct{}

func (Defaults) Name() string { return "defaults" }

func (Defaults) Load(_ context.Context) (*Config, error) {
	return &Config{StartDate: DefaultStartDate}, nil
}
