package audiocore

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigStore is the abstract persistence interface assumed (not
// implemented in scope) by spec §6, used to persist the last-selected
// preset name and the calibrated per-band noise floors.
type ConfigStore interface {
	Load(namespace, key string) ([]byte, bool, error)
	Store(namespace, key string, data []byte) error
}

// FileConfigStore is a concrete yaml-backed ConfigStore implementation:
// each namespace is a subdirectory, each key a "<key>.yaml" file holding
// raw bytes base64-free (yaml scalar), rooted at a base directory.
type FileConfigStore struct {
	baseDir string
}

// NewFileConfigStore returns a FileConfigStore rooted at baseDir,
// creating it if necessary.
func NewFileConfigStore(baseDir string) (*FileConfigStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &StoreError{Namespace: "", Key: "", Err: err}
	}
	return &FileConfigStore{baseDir: baseDir}, nil
}

type configEntry struct {
	Data []byte `yaml:"data"`
}

func (f *FileConfigStore) path(namespace, key string) string {
	return filepath.Join(f.baseDir, namespace, key+".yaml")
}

// Load reads the bytes stored under namespace/key. The second return
// value is false (with a nil error) when the key does not exist.
func (f *FileConfigStore) Load(namespace, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path(namespace, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &StoreError{Namespace: namespace, Key: key, Err: err}
	}
	var entry configEntry
	if err := yaml.Unmarshal(raw, &entry); err != nil {
		return nil, false, &StoreError{Namespace: namespace, Key: key, Err: err}
	}
	return entry.Data, true, nil
}

// Store writes data under namespace/key, creating the namespace
// directory as needed.
func (f *FileConfigStore) Store(namespace, key string, data []byte) error {
	dir := filepath.Join(f.baseDir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StoreError{Namespace: namespace, Key: key, Err: err}
	}
	out, err := yaml.Marshal(configEntry{Data: data})
	if err != nil {
		return &StoreError{Namespace: namespace, Key: key, Err: err}
	}
	if err := os.WriteFile(f.path(namespace, key), out, 0o644); err != nil {
		return &StoreError{Namespace: namespace, Key: key, Err: err}
	}
	return nil
}

// TuningNamespace / PresetKey / NoiseFloorsKey name the well-known
// ConfigStore entries spec §6 describes persisting.
const (
	TuningNamespace = "audiocore"
	PresetKey       = "preset"
	NoiseFloorsKey  = "per_band_noise_floors"
)

// persistedNoiseFloors is the YAML-friendly shape used to persist
// calibrated per-band noise floors.
type persistedNoiseFloors struct {
	Bands [NumBands]float32 `yaml:"bands"`
}

// SavePreset persists the selected preset's name to store.
func SavePreset(store ConfigStore, p PresetName) error {
	return store.Store(TuningNamespace, PresetKey, []byte(p.String()))
}

// LoadPreset reads back a previously saved preset name, returning
// PresetDefault when nothing has been saved yet.
func LoadPreset(store ConfigStore) (PresetName, error) {
	data, ok, err := store.Load(TuningNamespace, PresetKey)
	if err != nil {
		return PresetDefault, err
	}
	if !ok {
		return PresetDefault, nil
	}
	name := string(data)
	for _, p := range TuningPresets {
		if p.String() == name {
			return p, nil
		}
	}
	return PresetDefault, nil
}

// SaveNoiseFloors persists calibrated per-band noise floors.
func SaveNoiseFloors(store ConfigStore, bands [NumBands]float32) error {
	out, err := yaml.Marshal(persistedNoiseFloors{Bands: bands})
	if err != nil {
		return &StoreError{Namespace: TuningNamespace, Key: NoiseFloorsKey, Err: err}
	}
	return store.Store(TuningNamespace, NoiseFloorsKey, out)
}

// LoadNoiseFloors reads back previously calibrated per-band noise
// floors, returning ok=false when none have been saved.
func LoadNoiseFloors(store ConfigStore) (bands [NumBands]float32, ok bool, err error) {
	data, found, err := store.Load(TuningNamespace, NoiseFloorsKey)
	if err != nil || !found {
		return bands, false, err
	}
	var p persistedNoiseFloors
	if err := yaml.Unmarshal(data, &p); err != nil {
		return bands, false, &StoreError{Namespace: TuningNamespace, Key: NoiseFloorsKey, Err: err}
	}
	return p.Bands, true, nil
}
