package usecase

import (
	"sync"

	"github.com/oss-contrib/leaderboard/internal/domain"
)

// Accumulator merges contribution events into per-login contributor
// records. Add is safe for concurrent use; counts are commutative, so the
// order events arrive in never changes the final totals.
type Accumulator struct {
	mu      sync.Mutex
	records map[string]*domain.Contributor
	order   []string
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{records: make(map[string]*domain.Contributor)}
}

// Add upserts the record for the event's login and bumps the counter
// matching the event kind. The first event seen for a login seeds its
// avatar and lastActive; lastActive only ever advances.
func (a *Accumulator) Add(ev domain.ContributionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.records[ev.Login]
	if !ok {
		c = &domain.Contributor{
			ID:         ev.Login,
			Username:   ev.Login,
			AvatarURL:  ev.AvatarURL,
			LastActive: ev.CreatedAt,
		}
		a.records[ev.Login] = c
		a.order = append(a.order, ev.Login)
	}

	switch ev.Kind {
	case domain.KindMergedPR:
		c.MergedPRs++
	case domain.KindOpenPR:
		c.OpenPRs++
	case domain.KindIssue:
		c.Issues++
	}
	if ev.CreatedAt.After(c.LastActive) {
		c.LastActive = ev.CreatedAt
	}
}

// Contributors returns the accumulated records in first-seen order.
func (a *Accumulator) Contributors() []*domain.Contributor {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*domain.Contributor, 0, len(a.order))
	for _, login := range a.order {
		out = append(out, a.records[login])
	}
	return out
}
