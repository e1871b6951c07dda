package anim

import (
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// minSimilarity is the lowest score Suggest accepts.
const minSimilarity = 0.5

// Library indexes animations by id.
type Library struct {
	byID map[string]*Animation
	ids  []string
}

// NewLibrary creates a library holding anims.
func NewLibrary(anims ...*Animation) (*Library, error) {
	l := &Library{byID: make(map[string]*Animation, len(anims))}
	for _, a := range anims {
		if err := l.Add(a); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers an animation. Ids must be unique.
func (l *Library) Add(a *Animation) error {
	if _, ok := l.byID[a.ID]; ok {
		return fmt.Errorf("%q: %w", a.ID, ErrDuplicateID)
	}
	l.byID[a.ID] = a
	l.ids = append(l.ids, a.ID)
	return nil
}

// Get returns the animation with the given id.
func (l *Library) Get(id string) (*Animation, bool) {
	a, ok := l.byID[id]
	return a, ok
}

// IDs returns the animation ids in insertion order.
func (l *Library) IDs() []string {
	return l.ids
}

// Len returns the number of animations.
func (l *Library) Len() int {
	return len(l.ids)
}

// Suggest returns the id most similar to a mistyped id, or "" when nothing is close.
func (l *Library) Suggest(id string) string {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	best, score := "", minSimilarity
	for _, known := range l.ids {
		if sim := strutil.Similarity(strings.TrimSpace(id), known, lev); sim >= score {
			best, score = known, sim
		}
	}
	return best
}
