package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is implemented by the HTTP handlers.
type ServerInterface interface {
	// Run a dispatch
	// (POST /api/admin/checkins/dispatch)
	Dispatch(w http.ResponseWriter, r *http.Request)
	// Preview the next dispatch without sending
	// (GET /api/admin/checkins/dispatch)
	PreviewDispatch(w http.ResponseWriter, r *http.Request, params PreviewDispatchParams)
	// Queue check-ins for a delivered assessment
	// (POST /api/admin/checkins/enqueue)
	EnqueueCheckIns(w http.ResponseWriter, r *http.Request)
	// (GET /api/admin/checkins/{assessmentID})
	GetCheckInHistory(w http.ResponseWriter, r *http.Request, assessmentID string)
	// (POST /api/admin/scheduler/start)
	StartScheduler(w http.ResponseWriter, r *http.Request)
	// (POST /api/admin/scheduler/stop)
	StopScheduler(w http.ResponseWriter, r *http.Request)
	// Scheduled dispatch trigger
	// (POST /api/cron/checkins/dispatch)
	CronDispatch(w http.ResponseWriter, r *http.Request, params CronDispatchParams)
	// Reply landing page
	// (GET /checkin/reply)
	ReplyPage(w http.ResponseWriter, r *http.Request, params ReplyPageParams)
	// (POST /api/checkin/note)
	SubmitNote(w http.ResponseWriter, r *http.Request)
	// Provider callback for inbound SMS
	// (POST /api/webhooks/sms/inbound)
	InboundSMS(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

type MiddlewareFunc func(http.Handler) http.Handler

// HandlerOptions configures Handler. Nil auth middlewares leave their route group open.
type HandlerOptions struct {
	BaseRouter       chi.Router
	OperatorAuth     MiddlewareFunc
	CronAuth         MiddlewareFunc
	InboundAuth      MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is passed to ErrorHandlerFunc when a query parameter cannot be parsed.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// Handler mounts every route on a chi router.
func Handler(si ServerInterface, options HandlerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{
		handler:          si,
		errorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		use(r, options.OperatorAuth)
		r.Post("/api/admin/checkins/dispatch", si.Dispatch)
		r.Get("/api/admin/checkins/dispatch", wrapper.PreviewDispatch)
		r.Post("/api/admin/checkins/enqueue", si.EnqueueCheckIns)
		r.Get("/api/admin/checkins/{assessmentID}", wrapper.GetCheckInHistory)
		r.Post("/api/admin/scheduler/start", si.StartScheduler)
		r.Post("/api/admin/scheduler/stop", si.StopScheduler)
	})
	r.Group(func(r chi.Router) {
		use(r, options.CronAuth)
		r.Post("/api/cron/checkins/dispatch", wrapper.CronDispatch)
	})
	r.Group(func(r chi.Router) {
		use(r, options.InboundAuth)
		r.Post("/api/webhooks/sms/inbound", si.InboundSMS)
	})

	r.Get("/checkin/reply", wrapper.ReplyPage)
	r.Post("/api/checkin/note", si.SubmitNote)
	r.Get("/health", si.HealthCheck)

	return r
}

func use(r chi.Router, mw MiddlewareFunc) {
	if mw != nil {
		r.Use(mw)
	}
}

type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (sw *serverInterfaceWrapper) PreviewDispatch(w http.ResponseWriter, r *http.Request) {
	var err error

	var params PreviewDispatchParams

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	sw.handler.PreviewDispatch(w, r, params)
}

func (sw *serverInterfaceWrapper) GetCheckInHistory(w http.ResponseWriter, r *http.Request) {
	var assessmentID string

	err := runtime.BindStyledParameterWithOptions("simple", "assessmentID", chi.URLParam(r, "assessmentID"), &assessmentID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "assessmentID", Err: err})
		return
	}

	sw.handler.GetCheckInHistory(w, r, assessmentID)
}

func (sw *serverInterfaceWrapper) CronDispatch(w http.ResponseWriter, r *http.Request) {
	var err error

	var params CronDispatchParams

	err = runtime.BindQueryParameter("form", true, false, "dryRun", r.URL.Query(), &params.DryRun)
	if err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "dryRun", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	sw.handler.CronDispatch(w, r, params)
}

// ReplyPage binds token as optional so a missing token reaches the handler and gets the
// HTML error page instead of a JSON parameter error.
func (sw *serverInterfaceWrapper) ReplyPage(w http.ResponseWriter, r *http.Request) {
	var err error

	var params ReplyPageParams

	err = runtime.BindQueryParameter("form", true, false, "token", r.URL.Query(), &params.Token)
	if err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "token", Err: err})
		return
	}

	sw.handler.ReplyPage(w, r, params)
}
