package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/api"
	"github.com/popeskul/spinecheck/internal/middleware"
	"github.com/popeskul/spinecheck/internal/token"
)

// ReplyPage implements api.ServerInterface. Unusable links get the generic error page.
func (h *Handler) ReplyPage(w http.ResponseWriter, r *http.Request, params api.ReplyPageParams) {
	page, err := h.service.Response.ReplyPage(r.Context(), params.Token)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Robots-Tag", "noindex")

	switch {
	case err == nil:
	case errors.Is(err, token.ErrInvalidToken):
		h.logger.Info("Reply page requested with unusable token",
			zap.String("requestID", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		render.Status(r, http.StatusBadRequest)
	default:
		h.logger.Error("Failed to render reply page",
			zap.String("requestID", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		render.Status(r, http.StatusInternalServerError)
	}
	render.HTML(w, r, page)
}

// SubmitNote implements api.ServerInterface.
func (h *Handler) SubmitNote(w http.ResponseWriter, r *http.Request) {
	var req api.NoteRequest
	if !h.decode(w, r, noteRequestSchema, &req) {
		return
	}

	if _, err := h.service.Response.SubmitNote(r.Context(), req.Token, req.Note); err != nil {
		h.writeServiceError(w, r, err, errorMessageFailedToRecordNote)
		return
	}
	render.JSON(w, r, api.NoteResponse{Success: true})
}

// InboundSMS implements api.ServerInterface.
func (h *Handler) InboundSMS(w http.ResponseWriter, r *http.Request) {
	var req api.InboundSMSRequest
	if !h.decode(w, r, inboundSMSRequestSchema, &req) {
		return
	}

	optedOut, err := h.service.Response.HandleInboundSMS(r.Context(), req.From, req.Body)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessageFailedToProcessSMS)
		return
	}
	render.JSON(w, r, api.InboundSMSResponse{OptedOut: optedOut})
}
