package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

// requestValidator rejects requests that do not match the OpenAPI document.
// Routes the document does not describe (/metrics, /openapi.yaml) pass through.
func requestValidator(spec *openapi3.T, onError func(http.ResponseWriter, *http.Request, error)) (func(http.Handler) http.Handler, error) {
	router, err := legacyrouter.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				// Unknown paths and methods are left to chi (404/405).
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					next.ServeHTTP(w, r)
					return
				}
				onError(w, r, err)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
