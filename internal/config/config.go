// Package config centralizes every tunable of the context pipeline behind
// viper so keyword tables, timeouts, and thresholds are configuration
// rather than hard-coded guesses.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// #region types

// Config is the fully resolved pipeline configuration.
type Config struct {
	MemoryDBPath string
	FlowLogPath  string

	AnalyzerTimeout time.Duration
	VoiceTimeout    time.Duration

	// NoveltyWindow is the recency window for the novelty metric: fragments
	// created inside it count as novel.
	NoveltyWindow time.Duration

	ThresholdModify   float64
	ThresholdGold     float64
	ThresholdPlatinum float64

	QueryTopK int

	IntentKeywords map[string][]string
	UrgencyMarkers []string
	ToneKeywords   map[string][]string

	// VoiceWeights maps voice id to fixed voting weight.
	VoiceWeights map[string]float64
}

// #endregion types

// #region defaults

func setDefaults(v *viper.Viper) {
	v.SetDefault("memory.db_path", "evonexus.db")
	v.SetDefault("flow.log_path", "collective_flow.jsonl")
	v.SetDefault("flow.novelty_window", "24h")

	v.SetDefault("analyzer.timeout", "250ms")
	v.SetDefault("council.timeout", "250ms")

	v.SetDefault("consensus.threshold_modify", 0.5)
	v.SetDefault("consensus.threshold_gold", 0.75)
	v.SetDefault("consensus.threshold_platinum", 0.9)

	v.SetDefault("memory.query_top_k", 5)

	v.SetDefault("analyzer.intent_keywords", map[string][]string{
		"technical": {
			"architecture", "code", "bug", "system", "error", "crash",
			"failure", "deploy", "build", "server", "database",
		},
		"philosophical": {
			"meaning", "consciousness", "existence", "purpose", "philosophy",
			"soul", "wonder", "why", "believe",
		},
		"creative": {
			"imagine", "concept", "idea", "design", "compose", "story",
			"invent", "create", "poem",
		},
		"meta": {
			"yourself", "memory", "status", "config", "pipeline", "remember",
		},
	})
	v.SetDefault("analyzer.urgency_markers", []string{
		"urgent", "urgently", "now", "immediately", "asap", "emergency", "critical",
	})
	v.SetDefault("analyzer.tone_keywords", map[string][]string{
		"fear":          {"fear", "afraid", "scared", "panic", "danger"},
		"melancholy":    {"sad", "lonely", "lost", "empty", "grief"},
		"joy":           {"joy", "happy", "glad", "success", "wonderful"},
		"calm":          {"calm", "peace", "quiet", "settled"},
		"curiosity":     {"curious", "wonder", "interesting", "how", "why"},
		"frustration":   {"frustrated", "annoyed", "stuck", "angry", "broken"},
		"determination": {"focus", "achieve", "resolve", "determined", "must"},
	})

	v.SetDefault("council.voice_weights", map[string]float64{
		"kernel": 1.0,
		"codex":  0.95,
		"evo24":  0.90,
		"exevo":  0.85,
	})
}

// #endregion defaults

// #region load

// Load resolves a Config from the given viper instance, applying defaults
// for anything unset. Env vars with the EVONEXUS_ prefix override file values.
func Load(v *viper.Viper) Config {
	setDefaults(v)
	v.SetEnvPrefix("EVONEXUS")
	v.AutomaticEnv()

	return Config{
		MemoryDBPath:      v.GetString("memory.db_path"),
		FlowLogPath:       v.GetString("flow.log_path"),
		AnalyzerTimeout:   v.GetDuration("analyzer.timeout"),
		VoiceTimeout:      v.GetDuration("council.timeout"),
		NoveltyWindow:     v.GetDuration("flow.novelty_window"),
		ThresholdModify:   v.GetFloat64("consensus.threshold_modify"),
		ThresholdGold:     v.GetFloat64("consensus.threshold_gold"),
		ThresholdPlatinum: v.GetFloat64("consensus.threshold_platinum"),
		QueryTopK:         v.GetInt("memory.query_top_k"),
		IntentKeywords:    v.GetStringMapStringSlice("analyzer.intent_keywords"),
		UrgencyMarkers:    v.GetStringSlice("analyzer.urgency_markers"),
		ToneKeywords:      v.GetStringMapStringSlice("analyzer.tone_keywords"),
		VoiceWeights:      toFloatMap(v.GetStringMap("council.voice_weights")),
	}
}

// Default returns the documented default configuration.
func Default() Config {
	return Load(viper.New())
}

func toFloatMap(in map[string]interface{}) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, raw := range in {
		switch val := raw.(type) {
		case float64:
			out[k] = val
		case int:
			out[k] = float64(val)
		}
	}
	return out
}

// #endregion load
