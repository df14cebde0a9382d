package analyzer

import (
	"github.com/evopyramid/evonexus/internal/memory"
)

// #region memory-analyzer

// MemoryAnalyzer resolves the raw input against the fragment store.
type MemoryAnalyzer struct {
	store *memory.Store
	topK  int
}

// NewMemoryAnalyzer wraps a store with the configured result cap.
func NewMemoryAnalyzer(store *memory.Store, topK int) *MemoryAnalyzer {
	return &MemoryAnalyzer{store: store, topK: topK}
}

// Analyze runs a weighted lookup using the raw input as the search term.
func (a *MemoryAnalyzer) Analyze(text string) memory.LookupResult {
	return a.store.Query(text, a.topK)
}

// #endregion memory-analyzer
