package ensemble

import (
	"math"

	apperrors "gavl-predictor/internal/common/errors"
)

const (
	baseProbability = 0.5

	strongFactsAdjustment = 0.15
	evidenceAdjustment    = 0.10
	weaknessAdjustment    = -0.12

	minProbability = 0.35
	maxProbability = 0.85

	// PetitionerThreshold sits above 0.5 on purpose: near-even cases go to the petitioner.
	PetitionerThreshold = 0.52

	confidenceScale  = 2.0
	confidenceOffset = 0.10
	minConfidence    = 0.60
	maxConfidence    = 0.90

	// decimal places kept after each clamp so boundary checks match decimal arithmetic
	precision = 1e10
)

// ModelPrediction is one sub-model's verdict.
type ModelPrediction struct {
	Model       ModelName `json:"model_name"`
	Outcome     Outcome   `json:"outcome"`
	Probability float64   `json:"probability"`
	Confidence  float64   `json:"confidence"`
}

// Score runs a single sub-model against the extracted features.
func Score(model ModelName, f FeatureSet) (ModelPrediction, error) {
	if !model.Valid() {
		return ModelPrediction{}, apperrors.NewUnknownModelError(model.String())
	}

	p := caseStrength(f) + modelTable[model].bias(f)
	p = round(clamp(p, minProbability, maxProbability))

	return ModelPrediction{
		Model:       model,
		Outcome:     outcomeFor(p),
		Probability: p,
		Confidence:  confidenceFor(p),
	}, nil
}

// ScoreAll runs every sub-model in the fixed order.
func ScoreAll(f FeatureSet) ([]ModelPrediction, error) {
	preds := make([]ModelPrediction, 0, ModelCount)
	for _, m := range Models() {
		pred, err := Score(m, f)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

// caseStrength applies the feature adjustments shared by every sub-model.
func caseStrength(f FeatureSet) float64 {
	p := baseProbability
	if f.HasStrongFacts {
		p += strongFactsAdjustment
	}
	if f.HasEvidence {
		p += evidenceAdjustment
	}
	if f.HasWeakness {
		p += weaknessAdjustment
	}
	return p
}

func outcomeFor(p float64) Outcome {
	if p >= PetitionerThreshold {
		return PetitionerWins
	}
	return RespondentWins
}

// confidenceFor scales the distance from 0.5 into [0,1], adds the floor offset,
// and clamps into the reporting band.
func confidenceFor(p float64) float64 {
	c := math.Abs(p-baseProbability)*confidenceScale + confidenceOffset
	return round(clamp(c, minConfidence, maxConfidence))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64) float64 {
	return math.Round(v*precision) / precision
}
