package cli

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/clinicore/intake/internal/model"
)

func TestBuildConfig_ZeroEngineValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	// Zero is a meaningful setting: it disables the confidence floor and
	// the consistency bonus, and must not fall back to the defaults.
	viper.Set("engine.min_confidence", 0.0)
	viper.Set("engine.consistency_bonus", 0.0)

	cfg := buildConfig()
	if cfg.Engine.MinConfidence != 0 {
		t.Errorf("expected min confidence 0, got %v", cfg.Engine.MinConfidence)
	}
	if cfg.Engine.ConsistencyBonus != 0 {
		t.Errorf("expected consistency bonus 0, got %v", cfg.Engine.ConsistencyBonus)
	}
}

func TestBuildConfig_EngineDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg := buildConfig()
	def := model.DefaultConfig()
	if cfg.Engine.MinConfidence != def.Engine.MinConfidence {
		t.Errorf("expected default min confidence %v, got %v", def.Engine.MinConfidence, cfg.Engine.MinConfidence)
	}
	if cfg.Engine.ConsistencyBonus != def.Engine.ConsistencyBonus {
		t.Errorf("expected default consistency bonus %v, got %v", def.Engine.ConsistencyBonus, cfg.Engine.ConsistencyBonus)
	}
	if cfg.Engine.SimilarityThreshold != def.Engine.SimilarityThreshold {
		t.Errorf("expected default similarity threshold %v, got %v", def.Engine.SimilarityThreshold, cfg.Engine.SimilarityThreshold)
	}
}
