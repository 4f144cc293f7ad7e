package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPreset_IsIdempotentUnderClamp(t *testing.T) {
	for _, p := range TuningPresets {
		tuning := ApplyPreset(p)
		reclamped := tuning
		reclamped.Clamp()
		assert.Equal(t, tuning, reclamped, "ApplyPreset(%s) should already be in clamped form", p)
	}
}

func TestApplyPreset_EveryPresetHasADistinctDisplayName(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range TuningPresets {
		name := p.String()
		assert.NotEqual(t, "Unknown", name)
		assert.False(t, seen[name], "duplicate preset display name %q", name)
		seen[name] = true
	}
}

func TestApplyPreset_DefaultMatchesDefaultTuning(t *testing.T) {
	tuning := ApplyPreset(PresetDefault)
	base := DefaultTuning()
	base.Clamp()
	assert.Equal(t, base, tuning)
}
