package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/middleware"
	"github.com/popeskul/spinecheck/internal/service"
	"github.com/popeskul/spinecheck/internal/token"
)

const (
	errorCodeInvalidRequest          = "INVALID_REQUEST"
	errorCodeInvalidToken            = "INVALID_TOKEN"
	errorCodeAssessmentNotFound      = "ASSESSMENT_NOT_FOUND"
	errorCodeAssessmentNotDelivered  = "ASSESSMENT_NOT_DELIVERED"
	errorCodeNoContact               = "NO_CONTACT"
	errorCodeSchedulerAlreadyRunning = "SCHEDULER_ALREADY_RUNNING"
	errorCodeSchedulerNotRunning     = "SCHEDULER_NOT_RUNNING"
	errorCodeSchedulerDisabled       = "SCHEDULER_DISABLED"
)

const (
	// Expired and tampered links get the same message.
	errorMessageInvalidToken            = "This link is invalid or has expired"
	errorMessageAssessmentNotFound      = "Assessment not found"
	errorMessageAssessmentNotDelivered  = "Assessment guide has not been delivered yet"
	errorMessageNoContact               = "Assessment has no reachable email or SMS contact"
	errorMessageSchedulerAlreadyRunning = "Scheduler is already running"
	errorMessageSchedulerNotRunning     = "Scheduler is not running"
	errorMessageSchedulerDisabled       = "In-process scheduler is disabled"
	errorMessageFailedToStartScheduler  = "Failed to start scheduler"
	errorMessageFailedToStopScheduler   = "Failed to stop scheduler"
	errorMessageFailedToDispatch        = "Failed to dispatch check-ins"
	errorMessageFailedToEnqueue         = "Failed to enqueue check-ins"
	errorMessageFailedToLoadHistory     = "Failed to load check-in history"
	errorMessageFailedToRecordNote      = "Failed to record note"
	errorMessageFailedToProcessSMS      = "Failed to process inbound message"
)

// writeServiceError maps service errors onto status codes. Anything unrecognised is logged
// and answered with a generic 500 carrying fallback as its message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, token.ErrInvalidToken):
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidToken, errorMessageInvalidToken)
	case errors.Is(err, service.ErrInvalidRequest):
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrAssessmentNotFound):
		h.sendError(w, r, http.StatusNotFound, errorCodeAssessmentNotFound, errorMessageAssessmentNotFound)
	case errors.Is(err, service.ErrAssessmentNotDelivered):
		h.sendError(w, r, http.StatusConflict, errorCodeAssessmentNotDelivered, errorMessageAssessmentNotDelivered)
	case errors.Is(err, service.ErrNoContact):
		h.sendError(w, r, http.StatusUnprocessableEntity, errorCodeNoContact, errorMessageNoContact)
	default:
		h.logger.Error(fallback,
			zap.String("requestID", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, fallback)
	}
}
