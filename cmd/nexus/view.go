package main

import (
	"encoding/json"
	"fmt"

	"github.com/evopyramid/evonexus/internal/engine"
)

// #region cycle-view

// cycleView is the JSON projection of one finished cycle.
type cycleView struct {
	CycleID      string   `json:"cycle_id"`
	Input        string   `json:"input"`
	PriorityPath string   `json:"priority_path"`
	Intent       string   `json:"intent"`
	Urgency      float64  `json:"urgency"`
	Confidence   float64  `json:"confidence"`
	Tone         string   `json:"tone"`
	Intensity    float64  `json:"intensity"`
	FragmentHits int      `json:"fragment_hits"`
	TopRelevance float64  `json:"top_relevance"`
	Decision     string   `json:"decision"`
	Tier         string   `json:"tier"`
	Score        float64  `json:"score"`
	Contributing []string `json:"contributing"`
	Coherence    float64  `json:"coherence"`
	Novelty      float64  `json:"novelty"`
	Resonance    float64  `json:"resonance"`
	Density      float64  `json:"density"`
	LatencyMS    float64  `json:"latency_ms"`
}

func toCycleView(res engine.CycleResult) cycleView {
	contributing := make([]string, 0, len(res.Decision.Contributing))
	for _, p := range res.Decision.Contributing {
		contributing = append(contributing, p.SourceID)
	}
	return cycleView{
		CycleID:      res.Snapshot.CycleID,
		Input:        res.Snapshot.Input,
		PriorityPath: string(res.Snapshot.Priority),
		Intent:       string(res.Snapshot.Intent.Category),
		Urgency:      res.Snapshot.Intent.Urgency,
		Confidence:   res.Snapshot.Intent.Confidence,
		Tone:         res.Snapshot.Affect.Tone,
		Intensity:    res.Snapshot.Affect.Intensity,
		FragmentHits: len(res.Snapshot.Memory.Fragments),
		TopRelevance: res.Snapshot.Memory.TopScore(),
		Decision:     string(res.Decision.Decision),
		Tier:         string(res.Decision.Tier),
		Score:        res.Decision.Score,
		Contributing: contributing,
		Coherence:    res.Metrics.Coherence,
		Novelty:      res.Metrics.Novelty,
		Resonance:    res.Metrics.Resonance,
		Density:      res.Metrics.Density,
		LatencyMS:    res.Metrics.LatencyMS,
	}
}

// printJSON writes any value as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// #endregion cycle-view
