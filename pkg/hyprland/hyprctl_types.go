package hyprland

import (
	"strings"
)

type keyboard struct {
	Name              string `json:"name"`
	Layout            string `json:"layout"`
	Variant           string `json:"variant"`
	Options           string `json:"options"`
	ActiveKeymap      string `json:"active_keymap"`
	ActiveLayoutIndex *int   `json:"active_layout_index"`
	Main              bool   `json:"main"`
}

type devices struct {
	Keyboards []keyboard `json:"keyboards"`
}

type activeWindow struct {
	Address string `json:"address"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
}

type Keyboard struct {
	Name         string
	Layouts      []string
	Variants     []string
	ActiveKeymap string
	// ActiveIndex is -1 when Hyprland is too old to report it.
	ActiveIndex int
	Main        bool
}

func (k keyboard) ToKeyboard() Keyboard {
	layouts := strings.Split(k.Layout, ",")
	variants := strings.Split(k.Variant, ",")
	for len(variants) < len(layouts) {
		variants = append(variants, "")
	}

	idx := -1
	if k.ActiveLayoutIndex != nil {
		idx = *k.ActiveLayoutIndex
	}

	return Keyboard{
		Name:         k.Name,
		Layouts:      layouts,
		Variants:     variants,
		ActiveKeymap: k.ActiveKeymap,
		ActiveIndex:  idx,
		Main:         k.Main,
	}
}
