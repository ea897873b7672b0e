package middleware

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the JSON body returned for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// HandleError writes a JSON error body with the given status code.
func HandleError(resp *restful.Response, err error, code int) {
	resp.WriteHeaderAndEntity(code, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

// Logger logs one line per request with method, path, status and duration.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()

	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request handled")
}

// RecoverPanic converts handler panics into a 500 response.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", req.Request.URL.Path).
				Msg("Recovered from panic in handler")
			resp.WriteHeaderAndEntity(http.StatusInternalServerError, ErrorResponse{
				Error: "internal server error",
				Code:  http.StatusInternalServerError,
			})
		}
	}()

	chain.ProcessFilter(req, resp)
}
