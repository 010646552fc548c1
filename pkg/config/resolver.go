package config

import (
	"codeberg.org/miketth/dqswitch/pkg/xkblayouts"
	"errors"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml"
	"os"
)

// fileKeys maps flag names to their place in the config file.
var fileKeys = map[string]string{
	"main":               "Main.Main",
	"alternative":        "Main.Alternative",
	"desktop":            "Main.Desktop",
	"meta-delay":         "Main.MetaDelay",
	"device":             "Main.Device",
	"xkb-rules":          "Main.XkbRules",
	"debug":              "Main.Debug",
	"always-main":        "Apps.AlwaysMain",
	"always-alternative": "Apps.AlwaysAlternative",
	"journal":            "Journal.Backend",
	"journal-path":       "Journal.Path",
}

// LoadFile returns the first candidate that exists, parsed. A missing file is not
// an error, the path is then empty.
func LoadFile(candidates []string) (*toml.Tree, string, error) {
	for _, path := range candidates {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("stat %s: %w", path, err)
		}

		tree, err := toml.LoadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", path, err)
		}
		return tree, path, nil
	}

	return nil, "", nil
}

// Resolver feeds config file values into kong for flags not given on the command line.
func Resolver(tree *toml.Tree) kong.Resolver {
	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (interface{}, error) {
		if tree == nil {
			return nil, nil
		}

		key, ok := fileKeys[flag.Name]
		if !ok {
			return nil, nil
		}

		value := tree.Get(key)
		if value == nil {
			return nil, nil
		}

		switch v := value.(type) {
		case string:
			return v, nil
		case bool, int64, float64:
			return fmt.Sprint(v), nil
		}
		return nil, fmt.Errorf("config key %s: unsupported value %v", key, value)
	})
}

func Vars() kong.Vars {
	return kong.Vars{
		"default_device": DefaultDevice,
		"xkb_rules":      xkblayouts.DefaultPath,
	}
}
