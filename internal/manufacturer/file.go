package manufacturer

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// aliasFile is the on-disk format of a manufacturer alias table:
//
//	manufacturers:
//	  Texas Instruments: [TI, Burr-Brown]
//	  Espressif Systems: [Espressif, ESP]
type aliasFile struct {
	Manufacturers map[string][]string `yaml:"manufacturers"`
}

// LoadAliases reads a YAML alias table from path.
func LoadAliases(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manufacturer aliases: %w", err)
	}

	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse manufacturer aliases %s: %w", path, err)
	}

	return file.Manufacturers, nil
}

// MergeAliases returns a new table with extra entries merged over base.
// Aliases for a canonical name present in both tables are concatenated.
func MergeAliases(base, extra map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(base)+len(extra))
	for name, aliases := range base {
		merged[name] = append([]string(nil), aliases...)
	}
	for name, aliases := range extra {
		merged[name] = append(merged[name], aliases...)
	}
	return merged
}

// NewResolverFromFile builds a Resolver over DefaultAliases extended with the
// table in path. An empty path yields the default resolver.
func NewResolverFromFile(path string) (*Resolver, error) {
	if path == "" {
		return NewDefaultResolver(), nil
	}

	extra, err := LoadAliases(path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded manufacturer aliases", "file", path, "manufacturers", len(extra))
	return NewResolver(MergeAliases(DefaultAliases, extra)), nil
}
