// Package storygraph computes the set of stories transitively related to a
// story through the story_edges relation.
package storygraph

import (
	"context"
	"fmt"
	"sort"

	"github.com/TobiSchelling/contextapi/internal/database"
)

// MaxDepth is the hop limit for relatedness. A story reachable only through
// an eleventh hop is not related.
const MaxDepth = 10

// EdgeSource returns every edge touching any of the given stories.
type EdgeSource interface {
	EdgeFrontier(ctx context.Context, storyIDs []string) ([]database.StoryEdge, error)
}

// Traverser runs a breadth-first closure, one frontier query per hop.
type Traverser struct {
	edges    EdgeSource
	maxDepth int
}

// New creates a traverser. Depths outside [1, MaxDepth] fall back to MaxDepth.
func New(edges EdgeSource, maxDepth int) *Traverser {
	if maxDepth < 1 || maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}
	return &Traverser{edges: edges, maxDepth: maxDepth}
}

// Related returns the ids of every story within maxDepth hops of storyID,
// following edges in both directions. The seed itself is never included.
// The result is sorted for deterministic output.
func (t *Traverser) Related(ctx context.Context, storyID string) ([]string, error) {
	visited := map[string]bool{storyID: true}
	frontier := []string{storyID}

	for depth := 1; depth <= t.maxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges, err := t.edges.EdgeFrontier(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("expanding hop %d: %w", depth, err)
		}

		inFrontier := make(map[string]bool, len(frontier))
		for _, id := range frontier {
			inFrontier[id] = true
		}

		var next []string
		visit := func(id string) {
			if !visited[id] {
				visited[id] = true
				next = append(next, id)
			}
		}
		for _, e := range edges {
			if inFrontier[e.FromStoryID] {
				visit(e.ToStoryID)
			}
			if inFrontier[e.ToStoryID] {
				visit(e.FromStoryID)
			}
		}
		frontier = next
	}

	delete(visited, storyID)
	related := make([]string, 0, len(visited))
	for id := range visited {
		related = append(related, id)
	}
	sort.Strings(related)
	return related, nil
}
