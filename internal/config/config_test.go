package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefault_Thresholds(t *testing.T) {
	cfg := Default()
	require.Equal(t, 0.5, cfg.ThresholdModify)
	require.Equal(t, 0.75, cfg.ThresholdGold)
	require.Equal(t, 0.9, cfg.ThresholdPlatinum)
}

func TestDefault_KeywordTablesPresent(t *testing.T) {
	cfg := Default()
	for _, category := range []string{"technical", "philosophical", "creative", "meta"} {
		require.NotEmpty(t, cfg.IntentKeywords[category], "intent category %s", category)
	}
	require.NotEmpty(t, cfg.UrgencyMarkers)
	require.NotEmpty(t, cfg.ToneKeywords["curiosity"])
}

func TestDefault_VoiceWeights(t *testing.T) {
	cfg := Default()
	require.Equal(t, 1.0, cfg.VoiceWeights["kernel"])
	require.Equal(t, 0.95, cfg.VoiceWeights["codex"])
	require.Equal(t, 0.90, cfg.VoiceWeights["evo24"])
	require.Equal(t, 0.85, cfg.VoiceWeights["exevo"])
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	v := viper.New()
	v.Set("consensus.threshold_gold", 0.8)
	v.Set("flow.novelty_window", "1h")

	cfg := Load(v)
	require.Equal(t, 0.8, cfg.ThresholdGold)
	require.Equal(t, time.Hour, cfg.NoveltyWindow)
	// Untouched keys keep defaults.
	require.Equal(t, 0.9, cfg.ThresholdPlatinum)
}
