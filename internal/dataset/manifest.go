package dataset

import (
	"fmt"
	"sort"

	"github.com/neoatlantis/na-gribtools/internal/models"
)

const maxForecastStep = 180

// Descriptor is the canonical, comparable serialization of the dataset shape
// a cache generation is built from: the variable set plus the forecast steps.
// Variables are sorted by ID and steps ascending, so two descriptors built
// from the same inputs are always deeply equal.
type Descriptor struct {
	Variables []Variable `json:"variables"`
	Steps     []int      `json:"steps"`
}

// Manifest owns the variable catalog and the configured forecast steps; the
// resolver asks it for a fresh Descriptor on every validity check.
type Manifest struct {
	catalog []Variable
	steps   []int
}

// NewManifest builds a manifest over the default catalog for the given
// forecast steps. Step rules follow the publisher: 0..180 hours, and beyond
// +78h only multiples of three are published.
func NewManifest(steps []int) (*Manifest, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: at least one forecast step required", models.ErrConfig)
	}
	for _, h := range steps {
		if err := ValidateStep(h); err != nil {
			return nil, err
		}
	}
	sorted := make([]int, len(steps))
	copy(sorted, steps)
	sort.Ints(sorted)

	return &Manifest{catalog: DefaultCatalog(), steps: sorted}, nil
}

// ValidateStep checks a forecast hour against the publisher's step rules.
func ValidateStep(h int) error {
	if h < 0 || h > maxForecastStep {
		return fmt.Errorf("%w: forecast step %d outside 0..%d", models.ErrConfig, h, maxForecastStep)
	}
	if h > 78 && h%3 != 0 {
		return fmt.Errorf("%w: forecast step %d beyond +78h must be a multiple of 3", models.ErrConfig, h)
	}
	return nil
}

// Current returns the canonical shape descriptor. Always computed fresh, so
// a changed catalog or step list is picked up on the next validity check.
func (m *Manifest) Current() Descriptor {
	vars := make([]Variable, len(m.catalog))
	copy(vars, m.catalog)
	sort.Slice(vars, func(i, j int) bool { return vars[i].ID < vars[j].ID })

	steps := make([]int, len(m.steps))
	copy(steps, m.steps)

	return Descriptor{Variables: vars, Steps: steps}
}

// Variable looks a catalog entry up by ID.
func (m *Manifest) Variable(id string) (Variable, bool) {
	for _, v := range m.catalog {
		if v.ID == id {
			return v, true
		}
	}
	return Variable{}, false
}

// Variables returns the catalog the manifest covers.
func (m *Manifest) Variables() []Variable {
	out := make([]Variable, len(m.catalog))
	copy(out, m.catalog)
	return out
}

// Steps returns the configured forecast steps, ascending.
func (m *Manifest) Steps() []int {
	out := make([]int, len(m.steps))
	copy(out, m.steps)
	return out
}
