package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gundermanc/gsc"
	"github.com/gundermanc/gsc/cmd/gscd/compilelog"
	"github.com/gundermanc/gsc/cmd/gscd/result"
	"github.com/gundermanc/gsc/internal/config"
	"github.com/gundermanc/gsc/internal/gserr"
	"github.com/gundermanc/gsc/internal/irgen"
)

// PathPrefix is the prefix of every route the daemon serves, matching
// server/api/api.go's own API versioning convention.
const PathPrefix = "/api/v1"

// daemon holds the dependencies every endpoint needs, playing the role
// server/api/api.go's API struct plays for the pack's HTTP layer.
type daemon struct {
	cfg config.Config
	log *compilelog.DB
}

// newRouter wires the daemon's three endpoints onto a chi.Router: an
// unauthenticated session endpoint, and two endpoints requiring a valid
// session token.
func (d *daemon) newRouter() http.Handler {
	r := chi.NewRouter()

	r.Post(PathPrefix+"/auth", httpEndpoint(d.handleAuth))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return authMiddleware([]byte(d.cfg.Daemon.JWTSecret), next)
		})
		r.Post(PathPrefix+"/compile", httpEndpoint(d.handleCompile))
		r.Get(PathPrefix+"/compiles/{id}", httpEndpoint(d.handleGetCompileLog))
	})

	return r
}

// EndpointFunc is a handler that returns its outcome as a result.Result
// rather than writing to the ResponseWriter directly, following
// server/api/api.go's EndpointFunc convention.
type EndpointFunc func(req *http.Request) result.Result

// httpEndpoint adapts an EndpointFunc to http.HandlerFunc, recovering
// panics into an HTTP-500, stamping every response with a per-request id,
// and logging the outcome the way server/api/api.go's httpEndpoint/
// logHttpResponse do.
func httpEndpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := uuid.New().String()
		w.Header().Set("X-Request-Id", reqID)

		defer panicTo500(w, req, reqID)

		r := ep(req).WithRequestID(reqID)

		if r.IsErr {
			logHTTPResponse("ERROR", req, r.Status, reqID, r.InternalMsg)
		} else {
			logHTTPResponse("INFO", req, r.Status, reqID, r.InternalMsg)
		}

		r.WriteResponse(w)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request, reqID string) {
	if panicErr := recover(); panicErr != nil {
		msg := fmt.Sprintf("panic: %v\n%s", panicErr, debug.Stack())
		logHTTPResponse("ERROR", req, http.StatusInternalServerError, reqID, msg)
		result.InternalServerError(msg).WithRequestID(reqID).WriteResponse(w)
	}
}

func logHTTPResponse(level string, req *http.Request, status int, reqID, msg string) {
	remoteIP := strings.SplitN(req.RemoteAddr, ":", 2)[0]
	log.Printf("%-5s %s %s %s [%s]: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, reqID, status, msg)
}

func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if !strings.EqualFold(contentType, "application/json") {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return fmt.Errorf("malformed JSON in request: %w", err)
	}
	return nil
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		return val, fmt.Errorf("parameter %q does not exist", key)
	}
	return parse(valStr)
}

type authResponse struct {
	Token string `json:"token"`
}

// handleAuth exchanges a valid API key, presented as a Bearer credential,
// for a short-lived session JWT.
func (d *daemon) handleAuth(req *http.Request) result.Result {
	rawKey, err := getBearerToken(req)
	if err != nil {
		return result.Unauthorized("", err.Error())
	}

	if !apiKeyMatches(rawKey, d.cfg.Daemon.APIKeyHashes) {
		return result.Unauthorized("", "API key did not match any configured credential")
	}

	tok, err := issueSessionToken([]byte(d.cfg.Daemon.JWTSecret))
	if err != nil {
		return result.InternalServerError("could not issue session token: %s", err.Error())
	}

	return result.OK(authResponse{Token: tok})
}

type compileRequest struct {
	Source string `json:"source"`
}

type compileResponse struct {
	Module *gsc.Module `json:"module"`
	IR     []string    `json:"ir"`
}

// handleCompile runs the posted source through the full compiler pipeline,
// recording the outcome in the compile log before responding.
func (d *daemon) handleCompile(req *http.Request) result.Result {
	var creq compileRequest
	if err := parseJSON(req, &creq); err != nil {
		return result.BadRequest(err.Error())
	}

	c := gsc.NewCompiler("<request>", d.cfg)
	b := irgen.NewTextBuilder()
	m, err := c.Compile(creq.Source, b)

	if err != nil {
		entry := compilelog.Entry{Status: compilelog.StatusError}
		if code, ok := gserr.CodeOf(err); ok {
			entry.ErrorCode = code.String()
		}
		var ge *gserr.Error
		if errors.As(err, &ge) {
			entry.Line = ge.Pos.Line
			entry.Column = ge.Pos.Column
		}

		if _, logErr := d.log.Record(req.Context(), entry); logErr != nil {
			log.Printf("ERROR recording compile log entry: %s", logErr.Error())
		}

		return result.BadRequest(err.Error(), "compile failed: %s", err.Error())
	}

	if _, logErr := d.log.Record(req.Context(), compilelog.Entry{
		PackageName: m.PackageName,
		Status:      compilelog.StatusOK,
	}); logErr != nil {
		log.Printf("ERROR recording compile log entry: %s", logErr.Error())
	}

	return result.OK(compileResponse{Module: m, IR: b.Lines})
}

type compileLogResponse struct {
	ID          string `json:"id"`
	PackageName string `json:"packageName"`
	Status      string `json:"status"`
	ErrorCode   string `json:"errorCode,omitempty"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// handleGetCompileLog retrieves a previously recorded compile log entry by
// its id.
func (d *daemon) handleGetCompileLog(req *http.Request) result.Result {
	id, err := getURLParam(req, "id", uuid.Parse)
	if err != nil {
		return result.BadRequest("id must be a valid UUID", err.Error())
	}

	entry, err := d.log.GetByID(req.Context(), id)
	if err != nil {
		if err == compilelog.ErrNotFound {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(compileLogResponse{
		ID:          entry.ID.String(),
		PackageName: entry.PackageName,
		Status:      string(entry.Status),
		ErrorCode:   entry.ErrorCode,
		Line:        entry.Line,
		Column:      entry.Column,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
	})
}
