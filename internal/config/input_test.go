package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcgo/investment-calculator/internal/domain"
)

func TestParseAppliesDefaultsForAbsentFields(t *testing.T) {
	yaml := `
mode: accumulation
initial_amount: 25000
iterations: 5000
`
	params, err := NewInputParser().Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, domain.ModeAccumulation, params.Mode)
	assert.InDelta(t, 25000, params.InitialAmount, 1e-9)
	assert.Equal(t, 5000, params.Iterations)

	// Untouched fields keep their defaults.
	defaults := domain.DefaultParameters()
	assert.InDelta(t, defaults.RateMean, params.RateMean, 1e-9)
	assert.InDelta(t, defaults.ManagementFee, params.ManagementFee, 1e-9)
	assert.Equal(t, defaults.WithdrawalStrategy, params.WithdrawalStrategy)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("mode: [not, a, scalar"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseRejectsInvalidParameters(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("iterations: 10"))
	require.Error(t, err)

	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr), "validation failure should surface the field error")
	assert.Equal(t, "iterations", vErr.Field)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteExampleFileRoundTrips(t *testing.T) {
	parser := NewInputParser()
	path := filepath.Join(t.TempDir(), "example.yaml")

	require.NoError(t, parser.WriteExampleFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	params, err := parser.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeMixed, params.Mode)
	assert.EqualValues(t, 42, params.Seed)
	require.NoError(t, params.Validate())
}

func TestPresetsAreValid(t *testing.T) {
	keys := PresetKeys()
	assert.Equal(t, []string{"aggressive", "conservative", "moderate", "retirement_focused"}, keys)

	for _, key := range keys {
		preset, err := GetPreset(key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, preset.Name)
		assert.NotEmpty(t, preset.Description)
		assert.NoError(t, preset.Parameters.Validate(), "preset %s must validate", key)
	}
}

func TestGetPresetUnknown(t *testing.T) {
	_, err := GetPreset("does-not-exist")
	assert.Error(t, err)
}

func TestPresetsReturnsCopy(t *testing.T) {
	all := Presets()
	delete(all, "moderate")

	_, err := GetPreset("moderate")
	assert.NoError(t, err, "mutating the returned map must not affect the registry")
}

func TestPresetRiskOrdering(t *testing.T) {
	conservative, _ := GetPreset("conservative")
	moderate, _ := GetPreset("moderate")
	aggressive, _ := GetPreset("aggressive")

	assert.Less(t, conservative.Parameters.VolatilityMean, moderate.Parameters.VolatilityMean)
	assert.Less(t, moderate.Parameters.VolatilityMean, aggressive.Parameters.VolatilityMean)
	assert.Less(t, conservative.Parameters.RateMean, aggressive.Parameters.RateMean)
}
