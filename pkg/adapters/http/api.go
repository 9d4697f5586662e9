package http

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// rawSpec is the OpenAPI document served at /openapi.yaml and used for request validation.
//
//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger parses the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading spec: %w", err)
	}
	return spec, nil
}

// BlueprintRef selects a blueprint inline or by loader ID. Inline wins.
type BlueprintRef struct {
	Blueprint   *domain.Blueprint `json:"blueprint,omitempty"`
	BlueprintId *string           `json:"blueprint_id,omitempty"`
}

// SimulateRequest defines model for SimulateRequest.
type SimulateRequest struct {
	BlueprintRef
	Input string `json:"input"`
}

// CreateSessionRequest defines model for CreateSessionRequest.
type CreateSessionRequest struct {
	SimulateRequest
	SessionId *string `json:"session_id,omitempty"`
}

// ValidateResponse defines model for ValidateResponse.
type ValidateResponse struct {
	Results []domain.ExampleResult `json:"results"`
	Passed  bool                   `json:"passed"`
}

// IDList defines model for IDList.
type IDList struct {
	Ids []string `json:"ids"`
}

// Error defines model for Error.
type Error struct {
	Error string `json:"error"`
}

// StepSessionParams defines parameters for StepSession.
type StepSessionParams struct {
	Count *int `form:"count,omitempty" json:"count,omitempty"`
}

// SubscribeSessionEventsParams defines parameters for SubscribeSessionEvents.
type SubscribeSessionEventsParams struct {
	Watch *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// Request bodies.
type (
	SimulateJSONRequestBody      = SimulateRequest
	ValidateJSONRequestBody      = BlueprintRef
	CreateSessionJSONRequestBody = CreateSessionRequest
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	ListBlueprints(w http.ResponseWriter, r *http.Request)
	GetBlueprint(w http.ResponseWriter, r *http.Request, id string)
	Simulate(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
	SubscribeEvents(w http.ResponseWriter, r *http.Request)
	ListSessions(w http.ResponseWriter, r *http.Request)
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request, id string)
	DeleteSession(w http.ResponseWriter, r *http.Request, id string)
	StepSession(w http.ResponseWriter, r *http.Request, id string, params StepSessionParams)
	ResetSession(w http.ResponseWriter, r *http.Request, id string)
	SubscribeSessionEvents(w http.ResponseWriter, r *http.Request, id string, params SubscribeSessionEventsParams)
	GetSessionGraph(w http.ResponseWriter, r *http.Request, id string)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is reported when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetHealth)
}

// GetInfo operation middleware
func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetInfo)
}

// ListBlueprints operation middleware
func (siw *ServerInterfaceWrapper) ListBlueprints(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListBlueprints)
}

// GetBlueprint operation middleware
func (siw *ServerInterfaceWrapper) GetBlueprint(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetBlueprint(w, r, id)
	})
}

// Simulate operation middleware
func (siw *ServerInterfaceWrapper) Simulate(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Simulate)
}

// Validate operation middleware
func (siw *ServerInterfaceWrapper) Validate(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Validate)
}

// SubscribeEvents operation middleware
func (siw *ServerInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.SubscribeEvents)
}

// ListSessions operation middleware
func (siw *ServerInterfaceWrapper) ListSessions(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListSessions)
}

// CreateSession operation middleware
func (siw *ServerInterfaceWrapper) CreateSession(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateSession)
}

// GetSession operation middleware
func (siw *ServerInterfaceWrapper) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSession(w, r, id)
	})
}

// DeleteSession operation middleware
func (siw *ServerInterfaceWrapper) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteSession(w, r, id)
	})
}

// StepSession operation middleware
func (siw *ServerInterfaceWrapper) StepSession(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}

	var params StepSessionParams
	if err := runtime.BindQueryParameter("form", true, false, "count", r.URL.Query(), &params.Count); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "count", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.StepSession(w, r, id, params)
	})
}

// ResetSession operation middleware
func (siw *ServerInterfaceWrapper) ResetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ResetSession(w, r, id)
	})
}

// SubscribeSessionEvents operation middleware
func (siw *ServerInterfaceWrapper) SubscribeSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}

	var params SubscribeSessionEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &params.Watch); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "watch", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SubscribeSessionEvents(w, r, id, params)
	})
}

// GetSessionGraph operation middleware
func (siw *ServerInterfaceWrapper) GetSessionGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSessionGraph(w, r, id)
	})
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		r.Get(base+"/health", wrapper.GetHealth)
		r.Get(base+"/info", wrapper.GetInfo)
		r.Get(base+"/blueprints", wrapper.ListBlueprints)
		r.Get(base+"/blueprints/{id}", wrapper.GetBlueprint)
		r.Post(base+"/simulate", wrapper.Simulate)
		r.Post(base+"/validate", wrapper.Validate)
		r.Get(base+"/events", wrapper.SubscribeEvents)
		r.Get(base+"/sessions", wrapper.ListSessions)
		r.Post(base+"/sessions", wrapper.CreateSession)
		r.Get(base+"/sessions/{id}", wrapper.GetSession)
		r.Delete(base+"/sessions/{id}", wrapper.DeleteSession)
		r.Post(base+"/sessions/{id}/step", wrapper.StepSession)
		r.Post(base+"/sessions/{id}/reset", wrapper.ResetSession)
		r.Get(base+"/sessions/{id}/events", wrapper.SubscribeSessionEvents)
		r.Get(base+"/sessions/{id}/graph", wrapper.GetSessionGraph)
	})

	return r
}
