// Package linkage persists weighted association edges between memory
// fragments. Edges strengthen when fragments are retrieved together in one
// cycle and decay with disuse, so the graph converges on the associations
// the pipeline actually exercises.
package linkage

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS fragment_links (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id   TEXT NOT NULL,
    target_id   TEXT NOT NULL,
    link_type   TEXT NOT NULL,
    weight      REAL NOT NULL DEFAULT 0.1,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    UNIQUE(source_id, target_id, link_type)
);
CREATE INDEX IF NOT EXISTS idx_links_source ON fragment_links(source_id);
CREATE INDEX IF NOT EXISTS idx_links_target ON fragment_links(target_id);
`

// #endregion schema

// #region types

// LinkCoRetrieval marks edges reinforced by fragments surfacing in the
// same query result.
const LinkCoRetrieval = "co_retrieval"

// ReinforceDelta is the per-cycle weight increment for co-retrieved pairs.
const ReinforceDelta = 0.1

// Link is a weighted directed edge between two fragments.
type Link struct {
	ID        int64
	SourceID  string
	TargetID  string
	LinkType  string
	Weight    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalkResult holds an ordered association chain from a graph walk.
type WalkResult struct {
	IDs    []string
	Scores []float64 // cumulative scores at each fragment
}

// Graph manages the fragment_links table. A nil db (degraded store)
// produces a no-op graph: writes vanish, reads come back empty.
type Graph struct {
	db *sql.DB
}

// #endregion types

// #region constructor

// NewGraph creates the links table on the shared memory database.
func NewGraph(db *sql.DB) (*Graph, error) {
	if db == nil {
		return &Graph{}, nil
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("linkage schema: %w", err)
	}
	return &Graph{db: db}, nil
}

// #endregion constructor

// #region reinforce

// Reinforce strengthens the pairwise co-retrieval links between every two
// fragments in ids, creating missing edges at the base increment. Edges are
// written in both directions; weights cap at 1.0.
func (g *Graph) Reinforce(ids []string) error {
	if g.db == nil || len(ids) < 2 {
		return nil
	}
	for i, src := range ids {
		for j, dst := range ids {
			if i == j {
				continue
			}
			if err := g.increment(src, dst, LinkCoRetrieval, ReinforceDelta); err != nil {
				return fmt.Errorf("reinforce %s->%s: %w", src, dst, err)
			}
		}
	}
	return nil
}

func (g *Graph) increment(sourceID, targetID, linkType string, delta float64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := g.db.Exec(
		`INSERT INTO fragment_links (source_id, target_id, link_type, weight, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id, link_type) DO UPDATE SET
		   weight = MIN(1.0, fragment_links.weight + ?),
		   updated_at = ?`,
		sourceID, targetID, linkType, delta, now, now,
		delta, now,
	)
	return err
}

// #endregion reinforce

// #region neighbors

// Neighbors returns all links from sourceID with weight >= minWeight,
// ordered by weight descending.
func (g *Graph) Neighbors(fragmentID string, minWeight float64) ([]Link, error) {
	if g.db == nil {
		return nil, nil
	}
	rows, err := g.db.Query(
		`SELECT id, source_id, target_id, link_type, weight, created_at, updated_at
		 FROM fragment_links
		 WHERE source_id = ? AND weight >= ?
		 ORDER BY weight DESC`,
		fragmentID, minWeight,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		var createdAt, updatedAt string
		if err := rows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.LinkType, &l.Weight, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		links = append(links, l)
	}
	return links, rows.Err()
}

// #endregion neighbors

// #region walk

// Walk performs a BFS from entryID, following links with weight >= minWeight,
// up to maxDepth hops and maxNodes fragments. Scores multiply along the
// chain, so distant associations rank below direct ones.
func (g *Graph) Walk(entryID string, maxDepth int, minWeight float64, maxNodes int) (WalkResult, error) {
	if maxDepth <= 0 {
		maxDepth = 5
	}
	if maxNodes <= 0 {
		maxNodes = 10
	}

	result := WalkResult{
		IDs:    []string{entryID},
		Scores: []float64{1.0},
	}
	if g.db == nil {
		return result, nil
	}
	visited := map[string]bool{entryID: true}

	type queueItem struct {
		id    string
		depth int
		score float64
	}
	queue := []queueItem{{entryID, 0, 1.0}}

	for len(queue) > 0 {
		if len(result.IDs) >= maxNodes {
			break
		}

		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		neighbors, err := g.Neighbors(current.id, minWeight)
		if err != nil {
			return result, fmt.Errorf("walk neighbors: %w", err)
		}

		for _, link := range neighbors {
			if len(result.IDs) >= maxNodes {
				break
			}
			if visited[link.TargetID] {
				continue
			}
			visited[link.TargetID] = true
			cumScore := current.score * link.Weight
			result.IDs = append(result.IDs, link.TargetID)
			result.Scores = append(result.Scores, cumScore)
			queue = append(queue, queueItem{link.TargetID, current.depth + 1, cumScore})
		}
	}

	return result, nil
}

// #endregion walk

// #region decay

// Decay applies exponential decay to all link weights based on time since
// last update. Links that fall below 0.01 are deleted; returns the number
// of deletions.
func (g *Graph) Decay(halfLifeHours float64) (int64, error) {
	if g.db == nil {
		return 0, nil
	}
	now := time.Now().UTC()
	halfLifeSec := halfLifeHours * 3600.0

	rows, err := g.db.Query(`SELECT id, weight, updated_at FROM fragment_links`)
	if err != nil {
		return 0, err
	}

	type decayItem struct {
		id        int64
		newWeight float64
	}
	var updates []decayItem
	var deletes []int64

	for rows.Next() {
		var id int64
		var weight float64
		var updatedAt string
		if err := rows.Scan(&id, &weight, &updatedAt); err != nil {
			rows.Close()
			return 0, err
		}
		t, _ := time.Parse(time.RFC3339, updatedAt)
		ageSec := now.Sub(t).Seconds()
		if ageSec <= 0 {
			continue
		}
		decayed := weight * math.Exp(-ageSec*math.Ln2/halfLifeSec)
		if decayed < 0.01 {
			deletes = append(deletes, id)
		} else {
			updates = append(updates, decayItem{id, decayed})
		}
	}
	rows.Close()

	nowStr := now.Format(time.RFC3339)
	for _, u := range updates {
		if _, err := g.db.Exec(`UPDATE fragment_links SET weight = ?, updated_at = ? WHERE id = ?`, u.newWeight, nowStr, u.id); err != nil {
			return 0, err
		}
	}
	for _, id := range deletes {
		if _, err := g.db.Exec(`DELETE FROM fragment_links WHERE id = ?`, id); err != nil {
			return 0, err
		}
	}

	return int64(len(deletes)), nil
}

// #endregion decay

// #region sever

// Sever deletes all links touching fragmentID, for fragment removal.
func (g *Graph) Sever(fragmentID string) error {
	if g.db == nil {
		return nil
	}
	_, err := g.db.Exec(
		`DELETE FROM fragment_links WHERE source_id = ? OR target_id = ?`,
		fragmentID, fragmentID,
	)
	return err
}

// #endregion sever
