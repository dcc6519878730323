package predictcaseoutcome

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gavl-predictor/internal/common/errors"
	"gavl-predictor/internal/common/logger"
	"gavl-predictor/internal/common/metrics"
	"gavl-predictor/internal/common/observability"
	"gavl-predictor/internal/common/validation"
	"gavl-predictor/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "predict-case-outcome"

// Predictor is the ensemble pipeline the worker delegates to.
type Predictor interface {
	Predict(ctx context.Context, in models.CaseInput) (*models.PredictionResponse, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	predictor    Predictor
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	now          func() time.Time
}

type HandlerOptions struct {
	Config        *Config
	Predictor     Predictor
	Logger        logger.Logger
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Predictor == nil {
		return nil, fmt.Errorf("%s: predictor is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	obs := opts.Observability
	if obs == nil {
		obs = observability.NewNoop()
	}

	return &Handler{
		config:       cfg,
		logger:       log,
		predictor:    opts.Predictor,
		errorHandler: errors.NewErrorHandler(log),
		obs:          obs,
		now:          time.Now,
	}, nil
}

// Handle satisfies camunda.JobHandler. The job is always completed or failed
// before it returns; the returned error is informational.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := h.now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing case prediction job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := ParseInput(job.GetVariables())
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			err = h.completeJob(ctx, client, job, output)
		}
	}

	duration := h.now().Sub(start)
	if err != nil {
		code := string(errors.CodeOf(err))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.obs.RecordRequest(ctx, observability.TransportZeebe, "error", duration)
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.obs.RecordRequest(ctx, observability.TransportZeebe, "success", duration)
	return nil
}

// ParseInput validates raw job variables against the case schema and decodes them.
func ParseInput(variables string) (*Input, error) {
	if variables == "" {
		variables = "{}"
	}

	result, err := validation.ValidateCaseRequest([]byte(variables))
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if !result.Valid {
		return nil, errors.NewCaseValidationFailedError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

// Execute runs the prediction for already-parsed job input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := h.now()
	caseInput := input.ToCaseInput()
	h.obs.RecordTextLength(ctx, observability.TransportZeebe, len([]rune(caseInput.Text)))

	prediction, err := h.predictor.Predict(ctx, caseInput)
	if err != nil {
		return nil, err
	}

	end := h.now()
	prediction.ProcessingTimeMs = float64(end.Sub(start).Microseconds()) / 1000
	prediction.Timestamp = end.UTC().Format(time.RFC3339)

	return &Output{Prediction: prediction}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return errors.NewParseError(fmt.Errorf("encode job output: %w", err))
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		return nil
	}

	h.logger.Info("Case prediction job completed", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"caseId":    output.Prediction.CaseID,
		"outcome":   output.Prediction.PredictedOutcome,
		"requestId": output.Prediction.RequestID,
	})
	return nil
}

func (h *Handler) Enabled() bool {
	return h.config.Enabled
}

func (h *Handler) MaxJobsActive() int {
	return h.config.MaxJobsActive
}

func (h *Handler) GetTaskType() string {
	return TaskType
}
