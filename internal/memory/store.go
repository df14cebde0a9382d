package memory

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS fragments (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	content        TEXT NOT NULL,
	layer          TEXT NOT NULL,
	weight         REAL NOT NULL,
	emotional_tone TEXT,
	created_at     TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct

// Store is the hierarchical weighted fragment repository.
// All fragments are held in memory; SQLite is the durable backing record.
// Writes are serialized; reads may proceed concurrently with other reads.
type Store struct {
	mu        sync.RWMutex
	db        *sql.DB
	fragments map[string]Fragment
	degraded  bool
	log       *zap.Logger
}

// #endregion store-struct

// #region constructor

// Open loads the backing database at dbPath and reads every fragment into
// memory. If the backing resource is unreadable the store starts empty in
// degraded mode instead of failing: callers must tolerate an empty store.
// A fresh database is seeded with the initial four-layer ledger.
func Open(dbPath string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		fragments: make(map[string]Fragment),
		log:       log,
	}

	db, err := sql.Open("sqlite", dbPath)
	if err == nil {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
	}
	if err == nil {
		_, err = db.Exec(schema)
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		log.Warn("memory store degraded: backing unreadable, starting empty",
			zap.String("path", dbPath), zap.Error(err))
		s.degraded = true
		return s
	}
	s.db = db

	if err := s.load(); err != nil {
		log.Warn("memory store degraded: load failed, starting empty", zap.Error(err))
		s.degraded = true
		s.fragments = make(map[string]Fragment)
		return s
	}

	if len(s.fragments) == 0 {
		s.seedInitial()
	}
	return s
}

// #endregion constructor

// #region load

// load replaces the in-memory map with the full backing table contents.
// Malformed rows are quarantined (skipped with a warning), never propagated.
func (s *Store) load() error {
	rows, err := s.db.Query(
		`SELECT id, name, content, layer, weight, emotional_tone, created_at FROM fragments`)
	if err != nil {
		return fmt.Errorf("load fragments: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]Fragment)
	for rows.Next() {
		var f Fragment
		var layer string
		var tone sql.NullString
		var createdStr string
		if err := rows.Scan(&f.ID, &f.Name, &f.Content, &layer, &f.Weight, &tone, &createdStr); err != nil {
			return fmt.Errorf("scan fragment: %w", err)
		}
		f.Layer = Layer(layer)
		if tone.Valid {
			f.EmotionalTone = tone.String
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

		if _, ok := LayerWeight(f.Layer); !ok || f.Weight < 0 || f.Weight > 1 {
			s.log.Warn("quarantined malformed fragment record",
				zap.String("id", f.ID), zap.String("layer", layer), zap.Float64("weight", f.Weight))
			continue
		}
		loaded[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load fragments: %w", err)
	}
	s.fragments = loaded
	return nil
}

// #endregion load

// #region persist

// persist rewrites the entire backing table from the in-memory map.
// Caller must hold the write lock. No-op in degraded mode.
func (s *Store) persist() error {
	if s.degraded {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin persist: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fragments`); err != nil {
		return fmt.Errorf("clear fragments: %w", err)
	}
	for _, f := range s.fragments {
		var tonePtr interface{}
		if f.EmotionalTone != "" {
			tonePtr = f.EmotionalTone
		}
		_, err := tx.Exec(
			`INSERT INTO fragments (id, name, content, layer, weight, emotional_tone, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Content, string(f.Layer), f.Weight, tonePtr,
			f.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert fragment %s: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

// Persist flushes the in-memory map to the backing store on demand, for
// shutdown hooks. Returns ErrStoreUnavailable while degraded.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded {
		return ErrStoreUnavailable
	}
	return s.persist()
}

// #endregion persist

// #region add-fragment

// AddFragment validates, stores, and flushes one fragment. An existing id is
// overwritten, never duplicated. Weight defaults to the layer weight.
func (s *Store) AddFragment(data FragmentData) (Fragment, error) {
	layerWeight, ok := LayerWeight(data.Layer)
	if !ok {
		return Fragment{}, fmt.Errorf("%w: unknown layer %q", ErrValidation, data.Layer)
	}
	weight := layerWeight
	if data.Weight != nil {
		weight = *data.Weight
	}
	if weight < 0 || weight > 1 {
		return Fragment{}, fmt.Errorf("%w: weight %.3f outside [0,1]", ErrValidation, weight)
	}

	f := Fragment{
		ID:            data.ID,
		Name:          data.Name,
		Content:       data.Content,
		Layer:         data.Layer,
		Weight:        weight,
		EmotionalTone: data.EmotionalTone,
		CreatedAt:     data.CreatedAt,
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments[f.ID] = f
	if err := s.persist(); err != nil {
		s.log.Warn("memory store degraded: persist failed", zap.Error(err))
		s.degraded = true
	}
	return f, nil
}

// #endregion add-fragment

// #region remove-fragment

// RemoveFragment deletes one fragment by id and flushes the store.
// Retention is caller-driven; this is the only way a fragment leaves the
// store. Removing an unknown id is an error.
func (s *Store) RemoveFragment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fragments[id]; !ok {
		return fmt.Errorf("%w: no fragment %q", ErrValidation, id)
	}
	delete(s.fragments, id)
	if err := s.persist(); err != nil {
		s.log.Warn("memory store degraded: persist failed", zap.Error(err))
		s.degraded = true
	}
	return nil
}

// #endregion remove-fragment

// #region query

// stopwords contains common English words excluded from relevance matching.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "not": true,
	"no": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "than": true, "so": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "into": true,
	"of": true, "on": true, "to": true, "with": true, "about": true,
	"up": true, "out": true, "it": true, "its": true, "this": true,
	"that": true, "what": true, "which": true, "who": true, "how": true,
	"when": true, "where": true, "why": true, "you": true, "me": true,
	"i": true, "my": true, "your": true, "we": true, "they": true,
	"he": true, "she": true, "her": true, "him": true, "us": true,
	"them": true,
}

// tokenize splits text into unique lowercase non-stopword tokens.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if len(w) < 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// Query ranks fragments against the term. Relevance per fragment is the
// term-overlap ratio over the name+content haystack times the fragment weight.
// Ordering: score descending, then newest created_at, then id. topK <= 0
// returns every fragment scoring above zero.
func (s *Store) Query(term string, topK int) LookupResult {
	terms := tokenize(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []ScoredFragment
	for _, f := range s.fragments {
		rel := relevance(f, terms)
		if rel <= 0 {
			continue
		}
		scored = append(scored, ScoredFragment{Fragment: f, Relevance: rel * f.Weight})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		if !a.Fragment.CreatedAt.Equal(b.Fragment.CreatedAt) {
			return a.Fragment.CreatedAt.After(b.Fragment.CreatedAt)
		}
		return a.Fragment.ID < b.Fragment.ID
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}

	return LookupResult{
		Fragments:    scored,
		LinkageNotes: linkageNotes(scored),
	}
}

// relevance is the fraction of query terms present as tokens in the
// fragment's name plus content.
func relevance(f Fragment, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	set := make(map[string]bool)
	for _, t := range tokenize(f.Name + " " + f.Content) {
		set[t] = true
	}
	matches := 0
	for _, t := range terms {
		if set[t] {
			matches++
		}
	}
	return float64(matches) / float64(len(terms))
}

// linkageNotes relates fragments within one result set: two fragments are
// linked when they share a layer or a non-empty emotional tone.
func linkageNotes(scored []ScoredFragment) map[string][]string {
	notes := make(map[string][]string, len(scored))
	for i, a := range scored {
		for j, b := range scored {
			if i == j {
				continue
			}
			sameLayer := a.Fragment.Layer == b.Fragment.Layer
			sameTone := a.Fragment.EmotionalTone != "" && a.Fragment.EmotionalTone == b.Fragment.EmotionalTone
			if sameLayer || sameTone {
				notes[a.Fragment.ID] = append(notes[a.Fragment.ID], b.Fragment.ID)
			}
		}
	}
	return notes
}

// #endregion query

// #region accessors

// Get returns a fragment by id.
func (s *Store) Get(id string) (Fragment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fragments[id]
	return f, ok
}

// All returns every stored fragment, ordered by id for determinism.
func (s *Store) All() []Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Fragment, 0, len(s.fragments))
	for _, f := range s.fragments {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of stored fragments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments)
}

// Degraded reports whether the store is running without durable backing.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// DB exposes the backing database for sibling tables (cycle log).
// Nil in degraded mode.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the backing database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// #endregion accessors
