package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileConfigStore_LoadMissingKeyReturnsNotFound(t *testing.T) {
	store, err := NewFileConfigStore(t.TempDir())
	assert.NoError(t, err)

	data, ok, err := store.Load("ns", "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestFileConfigStore_StoreThenLoadRoundTrips(t *testing.T) {
	store, err := NewFileConfigStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, store.Store("ns", "key", []byte("hello")))
	data, ok, err := store.Load("ns", "key")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
}

func TestPresetPersistence_RoundTrips(t *testing.T) {
	store, err := NewFileConfigStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, SavePreset(store, PresetSensoryBridge))
	loaded, err := LoadPreset(store)
	assert.NoError(t, err)
	assert.Equal(t, PresetSensoryBridge, loaded)
}

func TestPresetPersistence_LoadWithNothingSavedReturnsDefault(t *testing.T) {
	store, err := NewFileConfigStore(t.TempDir())
	assert.NoError(t, err)

	loaded, err := LoadPreset(store)
	assert.NoError(t, err)
	assert.Equal(t, PresetDefault, loaded)
}

func TestNoiseFloorPersistence_RoundTrips(t *testing.T) {
	store, err := NewFileConfigStore(t.TempDir())
	assert.NoError(t, err)

	var floors [NumBands]float32
	for i := range floors {
		floors[i] = 0.001 * float32(i+1)
	}

	assert.NoError(t, SaveNoiseFloors(store, floors))
	loaded, ok, err := LoadNoiseFloors(store)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, floors, loaded)
}

func TestNoiseFloorPersistence_LoadWithNothingSavedReturnsNotOK(t *testing.T) {
	store, err := NewFileConfigStore(t.TempDir())
	assert.NoError(t, err)

	_, ok, err := LoadNoiseFloors(store)
	assert.NoError(t, err)
	assert.False(t, ok)
}
