package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/evopyramid/evonexus/internal/memory"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description  string               `json:"description"`
	Fragments    []FixtureFragment    `json:"fragments"`
	Interactions []FixtureInteraction `json:"interactions"`
}

// FixtureFragment mirrors memory.FragmentData with JSON tags. Fragments
// are ingested before the first interaction runs.
type FixtureFragment struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Content       string   `json:"content"`
	Layer         string   `json:"layer"`
	Weight        *float64 `json:"weight,omitempty"`
	EmotionalTone string   `json:"emotional_tone,omitempty"`
}

// FixtureInteraction is one recorded input plus the outcome it must
// reproduce. Empty expectation fields are not checked.
type FixtureInteraction struct {
	Input            string `json:"input"`
	ExpectedPath     string `json:"expected_path"`
	ExpectedDecision string `json:"expected_decision"`
	ExpectedTier     string `json:"expected_tier"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToFragmentData converts a FixtureFragment to the ingestion form.
func (ff *FixtureFragment) ToFragmentData() memory.FragmentData {
	return memory.FragmentData{
		ID:            ff.ID,
		Name:          ff.Name,
		Content:       ff.Content,
		Layer:         memory.Layer(ff.Layer),
		Weight:        ff.Weight,
		EmotionalTone: ff.EmotionalTone,
	}
}

// #endregion fixture-loader
