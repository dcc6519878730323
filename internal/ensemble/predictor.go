package ensemble

import (
	"context"
	"time"

	apperrors "gavl-predictor/internal/common/errors"
	"gavl-predictor/internal/common/logger"
	"gavl-predictor/internal/models"
)

// Recorder receives one observation per Predict call.
type Recorder interface {
	RecordPrediction(outcome string, agreement float64, duration time.Duration)
	RecordFailure(code string)
}

type nopRecorder struct{}

func (nopRecorder) RecordPrediction(string, float64, time.Duration) {}
func (nopRecorder) RecordFailure(string)                            {}

// Predictor runs the extract, score, aggregate, compose pipeline. It holds no
// mutable state and is safe for concurrent use.
type Predictor struct {
	logger   logger.Logger
	now      func() time.Time
	recorder Recorder
}

type Option func(*Predictor)

// WithClock overrides the clock used for request ids and durations.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) { p.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(p *Predictor) {
		if r != nil {
			p.recorder = r
		}
	}
}

func NewPredictor(log logger.Logger, opts ...Option) *Predictor {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	p := &Predictor{
		logger:   log,
		now:      time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evaluate computes the ensemble result for a case body.
func (p *Predictor) Evaluate(ctx context.Context, in models.CaseInput) (EnsembleResult, error) {
	if err := ctx.Err(); err != nil {
		return EnsembleResult{}, apperrors.NewTimeoutError("predictor", err)
	}

	features := ExtractFeatures(in.Text)
	preds, err := ScoreAll(features)
	if err != nil {
		return EnsembleResult{}, err
	}

	for _, pred := range preds {
		p.logger.Debug("Sub-model scored", map[string]interface{}{
			"caseId":      in.CaseID,
			"model":       pred.Model.DisplayName(),
			"outcome":     pred.Outcome.String(),
			"probability": pred.Probability,
			"confidence":  pred.Confidence,
		})
	}

	consensus, err := Aggregate(preds)
	if err != nil {
		return EnsembleResult{}, err
	}
	return NewResult(consensus, preds), nil
}

// Predict evaluates the case and composes the response record.
func (p *Predictor) Predict(ctx context.Context, in models.CaseInput) (*models.PredictionResponse, error) {
	start := p.now()

	result, err := p.Evaluate(ctx, in)
	if err != nil {
		code := apperrors.CodeOf(err)
		p.recorder.RecordFailure(string(code))
		p.logger.Error("Prediction failed", map[string]interface{}{
			"caseId": in.CaseID,
			"code":   string(code),
			"error":  err,
		})
		return nil, err
	}

	resp := ComposeResponse(in, result, RequestID(in.CaseID, start))

	p.recorder.RecordPrediction(resp.PredictedOutcome, resp.ModelAgreement, p.now().Sub(start))
	p.logger.Info("Prediction completed", map[string]interface{}{
		"caseId":         in.CaseID,
		"requestId":      resp.RequestID,
		"outcome":        resp.PredictedOutcome,
		"probability":    resp.Probability,
		"agreement":      resp.ModelAgreement,
		"agreeingModels": resp.AgreeingModels,
	})

	return resp, nil
}
