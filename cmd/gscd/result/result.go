// Package result builds HTTP API responses, trimmed from
// server/result.Result down to the handful of outcomes the compile daemon
// actually produces.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON body of every non-OK response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

// OK returns a Result containing an HTTP-200 and respObj as its JSON body.
// internalMsg is logged but never shown to the caller.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	return response(http.StatusOK, respObj, defaultOr("OK", internalMsg))
}

// BadRequest returns a Result containing an HTTP-400.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	return Err(http.StatusBadRequest, userMsg, defaultOr("bad request", internalMsg))
}

// Unauthorized returns a Result containing an HTTP-401 and the
// WWW-Authenticate header a Bearer scheme expects.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	if userMsg == "" {
		userMsg = "missing or invalid API credentials"
	}
	return Err(http.StatusUnauthorized, userMsg, defaultOr("unauthorized", internalMsg)).
		WithHeader("WWW-Authenticate", `Bearer realm="gscd"`)
}

// NotFound returns a Result containing an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	return Err(http.StatusNotFound, "the requested resource was not found", defaultOr("not found", internalMsg))
}

// InternalServerError returns a Result containing an HTTP-500. The detailed
// cause is only ever written to the server log, never to the client.
func InternalServerError(internalMsg ...interface{}) Result {
	return Err(http.StatusInternalServerError, "an internal server error occurred", defaultOr("internal server error", internalMsg))
}

func defaultOr(fallback string, msg []interface{}) string {
	if len(msg) == 0 {
		return fallback
	}
	format := msg[0].(string)
	return fmt.Sprintf(format, msg[1:]...)
}

func response(status int, respObj interface{}, internalMsg string) Result {
	return Result{
		IsErr:       false,
		Status:      status,
		InternalMsg: internalMsg,
		resp:        respObj,
	}
}

// Err builds a Result with the given status and a JSON ErrorResponse body.
func Err(status int, userMsg, internalMsg string) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: internalMsg,
		resp:        ErrorResponse{Error: userMsg, Status: status},
	}
}

// Result is a prepared API response, deferred until WriteResponse so that
// RequestID can be attached by the handler wrapper after the endpoint
// function returns.
type Result struct {
	Status      int
	IsErr       bool
	InternalMsg string

	resp interface{}
	hdrs [][2]string
}

// WithHeader returns a copy of r with the given header set on write.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return cp
}

// WithRequestID stamps the request id onto an ErrorResponse body, if this
// Result carries one.
func (r Result) WithRequestID(id string) Result {
	if er, ok := r.resp.(ErrorResponse); ok {
		er.RequestID = id
		r.resp = er
	}
	return r
}

// WriteResponse marshals and writes the result to w.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	body, err := json.Marshal(r.resp)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "could not marshal response: %s", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}
	w.WriteHeader(r.Status)
	w.Write(body)
}
