// Package apierror maps service errors onto HTTP responses.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/service/ai"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

// Status returns the HTTP status and client message for errors that are not validation or
// lookup failures of a specific handler.
func Status(err error) (int, string) {
	var parseErr *ai.ParseError
	var genErr *ai.GenerationError
	switch {
	case ai.IsConfiguration(err):
		return http.StatusServiceUnavailable, "the assistant is not configured on this server"
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, "the assistant returned an unreadable answer, please try again"
	case errors.As(err, &genErr) && errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "the assistant took too long to answer, please try again"
	case errors.As(err, &genErr):
		return http.StatusBadGateway, "the assistant is unavailable right now, please try again"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Respond writes err using Status and logs server-side failures.
func Respond(w http.ResponseWriter, log *logger.Logger, err error) {
	status, message := Status(err)
	if log != nil {
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "status", status, "error", err)
		} else {
			log.Warn("request aborted", "status", status, "error", err)
		}
	}
	utils.RespondError(w, status, message)
}
