package midi

import (
	"sort"

	"bata-studio/toque"
)

// Kit maps each drum head to a MIDI note, indexed [drum][articulation]
type Kit struct {
	Name  string
	Notes [toque.NumDrums][2]uint8
}

// Kits contains all available kit mappings
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI percussion",
		Notes: [toque.NumDrums][2]uint8{
			toque.Okonkolo: {
				toque.ArticulationSlap: 61, // Low Bongo
				toque.ArticulationOpen: 60, // Hi Bongo
			},
			toque.Itotele: {
				toque.ArticulationSlap: 62, // Mute Hi Conga
				toque.ArticulationOpen: 63, // Open Hi Conga
			},
			toque.Iya: {
				toque.ArticulationSlap: 66, // Low Timbale
				toque.ArticulationOpen: 64, // Low Conga
			},
		},
	},
	"sampler": {
		Name: "Chromatic sampler from C1",
		Notes: [toque.NumDrums][2]uint8{
			toque.Okonkolo: {toque.ArticulationSlap: 37, toque.ArticulationOpen: 36},
			toque.Itotele:  {toque.ArticulationSlap: 39, toque.ArticulationOpen: 38},
			toque.Iya:      {toque.ArticulationSlap: 41, toque.ArticulationOpen: 40},
		},
	},
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// Velocities per articulation; slaps are accented
var velocities = [2]uint8{
	toque.ArticulationSlap: 110,
	toque.ArticulationOpen: 96,
}

// KitNames returns the available kit names, sorted
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for name := range Kits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// Note returns the note and velocity for an event
func (k Kit) Note(ev toque.NoteEvent) (note, velocity uint8) {
	return k.Notes[ev.Drum][ev.Articulation], velocities[ev.Articulation]
}
