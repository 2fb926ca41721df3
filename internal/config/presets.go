package config

import "sort"

// Preset is a named feed/kill pair. The pattern family in Description is the
// one the pair settles into from a small central seed.
type Preset struct {
	Feed        float64
	Kill        float64
	Description string
}

const DefaultPreset = "coral"

var Presets = map[string]Preset{
	"coral":    {Feed: 0.0545, Kill: 0.062, Description: "branching coral growth"},
	"mitosis":  {Feed: 0.0367, Kill: 0.0649, Description: "self-replicating spots"},
	"solitons": {Feed: 0.030, Kill: 0.062, Description: "stable isolated spots"},
	"maze":     {Feed: 0.029, Kill: 0.057, Description: "labyrinthine stripes"},
	"waves":    {Feed: 0.014, Kill: 0.045, Description: "travelling waves"},
	"worms":    {Feed: 0.078, Kill: 0.061, Description: "segmented worms"},
	"holes":    {Feed: 0.039, Kill: 0.058, Description: "negative spots"},
	"chaos":    {Feed: 0.026, Kill: 0.051, Description: "turbulent spots"},
	"pulse":    {Feed: 0.025, Kill: 0.060, Description: "pulsating solitons"},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
