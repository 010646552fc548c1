package xkblayouts

import (
	"encoding/xml"
	"fmt"
	"os"
)

const DefaultPath = "/usr/share/X11/xkb/rules/evdev.xml"

func ParseLayouts(path string) (*XkbConfigRegistry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	registry := &XkbConfigRegistry{}
	err = xml.NewDecoder(file).Decode(registry)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	return registry, nil
}

func (r *XkbConfigRegistry) GetLayoutAndVariantFromPrettyName(prettyName string) (string, string) {
	for _, l := range r.LayoutList.Layout {
		if l.ConfigItem.Description == prettyName {
			return l.ConfigItem.Name, ""
		}

		for _, v := range l.VariantList.Variant {
			if v.ConfigItem.Description == prettyName {
				return l.ConfigItem.Name, v.ConfigItem.Name
			}
		}
	}

	return "", ""
}

// IndexOf finds the position of the layout called prettyName (as the compositor
// reports it, e.g. "English (Dvorak)") in a keyboard's configured layout list.
func (r *XkbConfigRegistry) IndexOf(layouts, variants []string, prettyName string) (int, bool) {
	layoutCode, variantCode := r.GetLayoutAndVariantFromPrettyName(prettyName)
	if layoutCode == "" {
		return -1, false
	}

	for i, layout := range layouts {
		variant := ""
		if i < len(variants) {
			variant = variants[i]
		}
		if layout == layoutCode && variant == variantCode {
			return i, true
		}
	}

	return -1, false
}
