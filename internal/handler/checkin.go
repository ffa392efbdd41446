package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/api"
	"github.com/popeskul/spinecheck/internal/middleware"
	"github.com/popeskul/spinecheck/internal/service"
)

// Dispatch implements api.ServerInterface.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req api.DispatchRequest
	if !h.decode(w, r, dispatchRequestSchema, &req) {
		return
	}

	opts := service.DispatchOptions{DryRun: req.IsDryRun()}
	if req.Limit != nil {
		opts.Limit = *req.Limit
	}
	h.dispatch(w, r, opts, "operator")
}

// PreviewDispatch implements api.ServerInterface. It is always a dry run.
func (h *Handler) PreviewDispatch(w http.ResponseWriter, r *http.Request, params api.PreviewDispatchParams) {
	opts := service.DispatchOptions{DryRun: true}
	if params.Limit != nil {
		opts.Limit = *params.Limit
	}
	h.dispatch(w, r, opts, "operator")
}

// CronDispatch implements api.ServerInterface.
func (h *Handler) CronDispatch(w http.ResponseWriter, r *http.Request, params api.CronDispatchParams) {
	var opts service.DispatchOptions
	if params.DryRun != nil {
		opts.DryRun = *params.DryRun
	}
	if params.Limit != nil {
		opts.Limit = *params.Limit
	}
	h.dispatch(w, r, opts, "cron")
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, opts service.DispatchOptions, trigger string) {
	if opts.Limit < 0 {
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, "limit must not be negative")
		return
	}

	summary, err := h.service.Dispatch.DispatchDue(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessageFailedToDispatch)
		return
	}

	h.logger.Info("Dispatch run finished",
		zap.String("requestID", middleware.GetRequestID(r.Context())),
		zap.String("trigger", trigger),
		zap.Bool("dryRun", summary.DryRun),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))

	if summary.Errors == nil {
		summary.Errors = []service.DispatchError{}
	}
	render.JSON(w, r, summary)
}

// EnqueueCheckIns implements api.ServerInterface.
func (h *Handler) EnqueueCheckIns(w http.ResponseWriter, r *http.Request) {
	var req api.EnqueueRequest
	if !h.decode(w, r, enqueueRequestSchema, &req) {
		return
	}

	result, err := h.service.Enqueue.EnqueueForAssessment(r.Context(), req.AssessmentID)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessageFailedToEnqueue)
		return
	}
	render.JSON(w, r, result)
}

// GetCheckInHistory implements api.ServerInterface.
func (h *Handler) GetCheckInHistory(w http.ResponseWriter, r *http.Request, assessmentID string) {
	history, err := h.service.Enqueue.History(r.Context(), assessmentID)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessageFailedToLoadHistory)
		return
	}
	render.JSON(w, r, history)
}

// decode writes a 400 and returns false when the body fails validation.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst interface{}) bool {
	err := decodeJSON(w, r, schema, dst)
	if err == nil {
		return true
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, verr.Error())
		return false
	}
	h.writeServiceError(w, r, err, middleware.ErrorMessageInternal)
	return false
}
