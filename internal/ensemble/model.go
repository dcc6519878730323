package ensemble

import (
	"fmt"
	"strings"

	apperrors "gavl-predictor/internal/common/errors"
)

// ModelName identifies one of the five sub-models. The set is closed: values
// outside [ModelEvidence, ModelCitation] are invalid.
type ModelName uint8

const (
	ModelEvidence ModelName = iota
	ModelJustice
	ModelML
	ModelAmicus
	ModelCitation
)

// ModelCount is the number of sub-models every ensemble call requires.
const ModelCount = int(ModelCitation) + 1

// Weights holds one ensemble weight per sub-model, indexed by ModelName.
type Weights [ModelCount]float64

type modelEntry struct {
	name        string
	displayName string
	weight      float64
	bias        func(FeatureSet) float64
}

// modelTable is read-only after package initialization.
var modelTable = [ModelCount]modelEntry{
	ModelEvidence: {
		name:        "evidence",
		displayName: "Evidence",
		weight:      0.25,
		bias: func(f FeatureSet) float64 {
			if f.HasEvidence {
				return 0.10
			}
			return -0.10
		},
	},
	ModelJustice: {
		name:        "justice",
		displayName: "Justice",
		weight:      0.20,
		bias:        func(FeatureSet) float64 { return 0.05 },
	},
	ModelML: {
		name:        "ml",
		displayName: "ML",
		weight:      0.20,
		bias: func(f FeatureSet) float64 {
			if f.TextLength > 500 {
				return 0.08
			}
			return -0.05
		},
	},
	ModelAmicus: {
		name:        "amicus",
		displayName: "Amicus",
		weight:      0.20,
		bias: func(f FeatureSet) float64 {
			if f.HasStrongFacts {
				return 0.07
			}
			return -0.03
		},
	},
	ModelCitation: {
		name:        "citation",
		displayName: "Citation",
		weight:      0.15,
		bias: func(f FeatureSet) float64 {
			if f.TextLength > 300 {
				return 0.06
			}
			return 0.0
		},
	},
}

// Models returns every sub-model in the fixed iteration order.
func Models() []ModelName {
	return []ModelName{ModelEvidence, ModelJustice, ModelML, ModelAmicus, ModelCitation}
}

// DefaultWeights returns a copy of the ensemble weights.
func DefaultWeights() Weights {
	var w Weights
	for i, e := range modelTable {
		w[i] = e.weight
	}
	return w
}

func (m ModelName) Valid() bool {
	return int(m) < ModelCount
}

func (m ModelName) String() string {
	if !m.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
	return modelTable[m].name
}

// DisplayName is the capitalized form used in reasoning and logs.
func (m ModelName) DisplayName() string {
	if !m.Valid() {
		return "Unknown"
	}
	return modelTable[m].displayName
}

// Weight returns the fixed ensemble weight, or 0 for an invalid name.
func (m ModelName) Weight() float64 {
	if !m.Valid() {
		return 0
	}
	return modelTable[m].weight
}

// ParseModelName accepts the lowercase or display form, case-insensitively.
func ParseModelName(s string) (ModelName, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for i, e := range modelTable {
		if e.name == needle {
			return ModelName(i), nil
		}
	}
	return 0, apperrors.NewUnknownModelError(s)
}

func (m ModelName) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, apperrors.NewUnknownModelError(m.String())
	}
	return []byte(modelTable[m].name), nil
}

func (m *ModelName) UnmarshalText(text []byte) error {
	v, err := ParseModelName(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
