package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/trip-refiner/internal/agents"
	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/orchestrator"
	"github.com/example/trip-refiner/internal/providers/llm"
)

// errorStatus maps an error to the HTTP status and the message shown to the
// user. Upstream 400 and 429 messages carry an extra hint.
func errorStatus(err error) (int, string) {
	var (
		stateErr *orchestrator.InvalidStateError
		cfgErr   *llm.ConfigurationError
		upErr    *llm.UpstreamError
		genErr   *llm.GenerationError
		parseErr *agents.EvaluationParseError
		trErr    *llm.TransportError
	)
	msg := err.Error()
	if msg == "" {
		msg = "An unknown error occurred."
	}

	switch {
	case errors.As(err, &stateErr), errors.As(err, &cfgErr),
		errors.Is(err, llm.ErrEmptyPrompt), errors.Is(err, orchestrator.ErrEmptyCredential):
		return http.StatusBadRequest, msg
	case errors.Is(err, orchestrator.ErrBusy):
		return http.StatusConflict, msg
	case errors.As(err, &upErr):
		if hint := upErr.Hint(); hint != "" {
			msg += " " + hint
		}
		return http.StatusBadGateway, msg
	case errors.As(err, &genErr), errors.As(err, &parseErr):
		return http.StatusBadGateway, msg
	case errors.As(err, &trErr):
		return http.StatusServiceUnavailable, msg
	default:
		return http.StatusInternalServerError, msg
	}
}

// fail writes the uniform {success:false, error} body.
func fail(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	} else {
		logger.Warn("Request rejected", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}
