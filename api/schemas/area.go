package schemas

import "fmt"

// -- Click Area Schemas --

// Area names a rectangular target region on the interaction plane.
// Coordinates are stored as [x1, y1, x2, y2] in plane pixels.
type Area struct {
	Name        string `json:"name"`
	Coordinates [4]int `json:"coordinates"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Normalized returns the coordinates reordered so x1<=x2 and y1<=y2.
func (a Area) Normalized() [4]int {
	c := a.Coordinates
	if c[0] > c[2] {
		c[0], c[2] = c[2], c[0]
	}
	if c[1] > c[3] {
		c[1], c[3] = c[3], c[1]
	}
	return c
}

// Validate checks that the area is usable as a click target.
func (a Area) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("area has no name")
	}
	c := a.Normalized()
	if c[2]-c[0] <= 0 || c[3]-c[1] <= 0 {
		return fmt.Errorf("area %q is degenerate: coordinates %v", a.Name, a.Coordinates)
	}
	return nil
}

// AreaSet is the on-disk collection of named areas.
type AreaSet struct {
	Areas []Area `json:"areas"`
}

// Find returns the named area, if present.
func (s *AreaSet) Find(name string) (Area, bool) {
	for _, a := range s.Areas {
		if a.Name == name {
			return a, true
		}
	}
	return Area{}, false
}

// Validate checks every area and rejects duplicate names.
func (s *AreaSet) Validate() error {
	seen := make(map[string]struct{}, len(s.Areas))
	for i, a := range s.Areas {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("area %d: %w", i, err)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("duplicate area name %q", a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}
