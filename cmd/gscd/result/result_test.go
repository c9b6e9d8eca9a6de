package result_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/cmd/gscd/result"
)

func TestOK_WritesStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	result.OK(map[string]string{"hello": "world"}).WriteResponse(rec)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestBadRequest_WritesErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	result.BadRequest("bad input").WriteResponse(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body result.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad input", body.Error)
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func TestUnauthorized_SetsWWWAuthenticateHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	result.Unauthorized("").WriteResponse(rec)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="gscd"`, rec.Header().Get("WWW-Authenticate"))

	var body result.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "missing or invalid API credentials", body.Error)
}

func TestNotFound_DefaultsUserMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	result.NotFound().WriteResponse(rec)

	var body result.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "the requested resource was not found", body.Error)
}

func TestInternalServerError_NeverLeaksInternalMsg(t *testing.T) {
	r := result.InternalServerError("leaked cause: %s", "db connection refused")
	assert.Contains(t, r.InternalMsg, "db connection refused")

	rec := httptest.NewRecorder()
	r.WriteResponse(rec)
	assert.NotContains(t, rec.Body.String(), "db connection refused")
}

func TestWithRequestID_StampsErrorResponseOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	result.BadRequest("bad input").WithRequestID("req-123").WriteResponse(rec)

	var body result.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-123", body.RequestID)
}

func TestWithRequestID_NoOpOnNonErrorResult(t *testing.T) {
	rec := httptest.NewRecorder()
	result.OK(map[string]string{"k": "v"}).WithRequestID("req-123").WriteResponse(rec)

	assert.JSONEq(t, `{"k":"v"}`, rec.Body.String())
}

func TestWithHeader_AddsHeaderWithoutMutatingOriginal(t *testing.T) {
	base := result.OK(map[string]string{})
	withHeader := base.WithHeader("X-Custom", "value")

	rec := httptest.NewRecorder()
	base.WriteResponse(rec)
	assert.Empty(t, rec.Header().Get("X-Custom"))

	rec2 := httptest.NewRecorder()
	withHeader.WriteResponse(rec2)
	assert.Equal(t, "value", rec2.Header().Get("X-Custom"))
}

func TestWriteResponse_PanicsWhenUnpopulated(t *testing.T) {
	assert.Panics(t, func() {
		result.Result{}.WriteResponse(httptest.NewRecorder())
	})
}
