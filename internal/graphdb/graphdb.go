// Package graphdb mirrors story edges into Memgraph or Neo4j and answers
// relatedness queries with a variable-length Cypher match.
package graphdb

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/TobiSchelling/contextapi/internal/database"
	"github.com/TobiSchelling/contextapi/internal/storygraph"
)

// Runner executes a Cypher query and returns all records.
type Runner interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

// BoltDriver is a Runner backed by a Bolt connection.
type BoltDriver struct {
	Driver neo4j.DriverWithContext
}

// NewBoltDriver connects and verifies connectivity.
func NewBoltDriver(ctx context.Context, uri, username, password string) (*BoltDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	log.Printf("connected to graph backend at %s", uri)
	return &BoltDriver{Driver: driver}, nil
}

// Close releases the driver's connection pool.
func (d *BoltDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

// ExecuteQuery runs a Cypher query and returns its fully materialised result.
func (d *BoltDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// Store answers Related from the graph backend.
type Store struct {
	runner   Runner
	maxDepth int
}

// NewStore wraps a runner. Depths outside [1, storygraph.MaxDepth] are clamped.
func NewStore(runner Runner, maxDepth int) *Store {
	if maxDepth < 1 || maxDepth > storygraph.MaxDepth {
		maxDepth = storygraph.MaxDepth
	}
	return &Store{runner: runner, maxDepth: maxDepth}
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	return s.runner.Close(ctx)
}

// relatedQuery is undirected; Cypher does not accept a parameter as a
// variable-length bound, so the depth is formatted in.
func relatedQuery(depth int) string {
	return fmt.Sprintf(
		`MATCH (s:Story {id: $id})-[:RELATES_TO*1..%d]-(r:Story) WHERE r.id <> $id RETURN DISTINCT r.id AS id`,
		depth,
	)
}

// Related returns every story within maxDepth hops, sorted, excluding the seed.
func (s *Store) Related(ctx context.Context, storyID string) ([]string, error) {
	res, err := s.runner.ExecuteQuery(ctx, relatedQuery(s.maxDepth), map[string]any{"id": storyID})
	if err != nil {
		return nil, fmt.Errorf("graph traversal for %s: %w", storyID, err)
	}

	related := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		v, ok := rec.Get("id")
		if !ok {
			continue
		}
		id, ok := v.(string)
		if !ok || id == storyID {
			continue
		}
		related = append(related, id)
	}
	sort.Strings(related)
	return related, nil
}

const syncQuery = `UNWIND $edges AS e
MERGE (a:Story {id: e.from})
MERGE (b:Story {id: e.to})
MERGE (a)-[r:RELATES_TO]->(b)
SET r.relation_type = e.relation_type, r.score = e.score`

// SyncEdges mirrors the given edges into the graph. MERGE makes it idempotent.
func (s *Store) SyncEdges(ctx context.Context, edges []database.StoryEdge, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	synced := 0
	for start := 0; start < len(edges); start += batchSize {
		end := min(start+batchSize, len(edges))
		batch := make([]map[string]any, 0, end-start)
		for _, e := range edges[start:end] {
			batch = append(batch, map[string]any{
				"from":          e.FromStoryID,
				"to":            e.ToStoryID,
				"relation_type": e.RelationType,
				"score":         e.Score,
			})
		}
		if _, err := s.runner.ExecuteQuery(ctx, syncQuery, map[string]any{"edges": batch}); err != nil {
			return synced, fmt.Errorf("syncing edges %d-%d: %w", start, end, err)
		}
		synced += len(batch)
	}
	return synced, nil
}

// BuildIndices creates the Story id index. Failures are logged since the
// index may already exist.
func (s *Store) BuildIndices(ctx context.Context) {
	for _, q := range []string{"CREATE INDEX ON :Story(id);"} {
		if _, err := s.runner.ExecuteQuery(ctx, q, nil); err != nil {
			log.Printf("Warning: failed to create index '%s': %v", q, err)
		}
	}
}
