package datastore

import (
	_ "embed"

	"github.com/arthur-debert/skillman/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

//go:embed presets.toml
var presetsTOML []byte

type profileFile struct {
	Profiles []types.Profile `toml:"profiles"`
}

// Presets returns the built-in profiles, marked IsPreset.
func Presets() []types.Profile {
	var f profileFile
	if err := toml.Unmarshal(presetsTOML, &f); err != nil {
		panic("datastore: invalid embedded presets: " + err.Error())
	}
	for i := range f.Profiles {
		f.Profiles[i].IsPreset = true
	}
	return f.Profiles
}

// IsPresetID reports whether id belongs to a built-in profile.
func IsPresetID(id string) bool {
	for _, p := range Presets() {
		if p.ID == id {
			return true
		}
	}
	return false
}
