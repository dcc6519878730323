package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	apperrors "gavl-predictor/internal/common/errors"
	"gavl-predictor/internal/common/observability"
	"gavl-predictor/internal/common/validation"
	"gavl-predictor/internal/models"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 3 * time.Second

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handlePredict(c *gin.Context) {
	start := s.now()
	ctx := c.Request.Context()

	req, err := decodeCaseRequest(c)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		s.obs.RecordRequest(ctx, observability.TransportHTTP, "invalid", s.now().Sub(start))
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   stdErr.Error(),
			Message: "Invalid case payload",
			Code:    string(stdErr.Code),
			Details: detailsOf(err),
		})
		return
	}

	in := req.ToCaseInput()
	s.obs.RecordTextLength(ctx, observability.TransportHTTP, utf8.RuneCountInString(in.Text))

	resp, err := s.predictor.Predict(ctx, in)
	if err != nil {
		s.logger.Error("Prediction request failed", map[string]interface{}{
			"caseId":    in.CaseID,
			"requestId": c.GetString(requestIDKey),
			"error":     err,
		})
		s.obs.RecordRequest(ctx, observability.TransportHTTP, "error", s.now().Sub(start))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   err.Error(),
			Message: "Prediction failed",
		})
		return
	}

	end := s.now()
	resp.ProcessingTimeMs = float64(end.Sub(start).Microseconds()) / 1000
	resp.Timestamp = end.UTC().Format(time.RFC3339)

	s.obs.RecordRequest(ctx, observability.TransportHTTP, "success", end.Sub(start))
	c.JSON(http.StatusOK, resp)
}

type validationFailure struct {
	*apperrors.StandardError
	result *validation.ValidationResult
}

func (v validationFailure) Unwrap() error { return v.StandardError }

func decodeCaseRequest(c *gin.Context) (*models.CaseRequest, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.NewCaseValidationFailedError("request body is empty")
	}

	result, err := validation.ValidateCaseRequest(raw)
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	if !result.Valid {
		return nil, validationFailure{
			StandardError: apperrors.NewCaseValidationFailedError(result.Summary()),
			result:        result,
		}
	}

	var req models.CaseRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, apperrors.NewParseError(err)
	}
	return &req, nil
}

func detailsOf(err error) []string {
	if vf, ok := err.(validationFailure); ok {
		return vf.result.GetErrorMessages()
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.app.Name,
		"version": s.app.Version,
		"models":  5,
	})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
