// internal/sequence/loader.go
package sequence

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/ghosthand/api/schemas"
)

// LoadAreas reads a named-area file and validates every area in it. The path
// may start with "~".
func LoadAreas(path string) (*schemas.AreaSet, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading areas file: %w", err)
	}

	var set schemas.AreaSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parsing areas file %s: %w", path, err)
	}
	if len(set.Areas) == 0 {
		return nil, fmt.Errorf("areas file %s defines no areas", path)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("areas file %s: %w", path, err)
	}
	return &set, nil
}

// LoadSequences reads a sequence file and validates every action of every
// sequence. When areas is non-nil, click targets are cross-checked against
// it, so a sequence can never reference an area that does not exist.
func LoadSequences(path string, areas *schemas.AreaSet) (*schemas.SequenceSet, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sequences file: %w", err)
	}

	var set schemas.SequenceSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parsing sequences file %s: %w", path, err)
	}
	if len(set.Sequences) == 0 {
		return nil, fmt.Errorf("sequences file %s defines no sequences", path)
	}
	if err := set.Validate(areas); err != nil {
		return nil, fmt.Errorf("sequences file %s: %w", path, err)
	}
	return &set, nil
}

func readFile(path string) ([]byte, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(expanded)
}
