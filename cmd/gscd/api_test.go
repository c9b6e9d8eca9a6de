package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gundermanc/gsc/cmd/gscd/compilelog"
	"github.com/gundermanc/gsc/internal/config"
)

func newTestDaemon(t *testing.T) (*daemon, string) {
	t.Helper()

	rawKey := "test-api-key"
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	require.NoError(t, err)

	logDB, err := compilelog.Open(filepath.Join(t.TempDir(), "compiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	cfg := config.Default()
	cfg.Daemon.JWTSecret = "test-secret"
	cfg.Daemon.APIKeyHashes = []string{string(hash)}

	return &daemon{cfg: cfg, log: logDB}, rawKey
}

func TestHandleAuth_ValidKeyIssuesToken(t *testing.T) {
	d, rawKey := newTestDaemon(t)

	req := httptest.NewRequest("POST", "/api/v1/auth", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)

	r := d.handleAuth(req)
	require.False(t, r.IsErr)
	assert.Equal(t, 200, r.Status)
}

func TestHandleAuth_InvalidKeyUnauthorized(t *testing.T) {
	d, _ := newTestDaemon(t)

	req := httptest.NewRequest("POST", "/api/v1/auth", nil)
	req.Header.Set("Authorization", "Bearer not-the-right-key")

	r := d.handleAuth(req)
	assert.True(t, r.IsErr)
	assert.Equal(t, 401, r.Status)
}

func TestHandleCompile_ValidSourceReturnsOK(t *testing.T) {
	d, _ := newTestDaemon(t)

	body := `{"source": "package \"Sample\";\npublic int32 add(int32 a, int32 b) {\nreturn a + b;\n}\n"}`
	req := httptest.NewRequest("POST", "/api/v1/compile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	r := d.handleCompile(req)
	require.False(t, r.IsErr)
	assert.Equal(t, 200, r.Status)
}

func TestHandleCompile_SyntaxErrorReturnsBadRequest(t *testing.T) {
	d, _ := newTestDaemon(t)

	body := `{"source": "package \"Sample\"\npublic int32 broken() { return 0; }\n"}`
	req := httptest.NewRequest("POST", "/api/v1/compile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	r := d.handleCompile(req)
	assert.True(t, r.IsErr)
	assert.Equal(t, 400, r.Status)
}

func TestHandleCompile_RejectsNonJSONContentType(t *testing.T) {
	d, _ := newTestDaemon(t)

	req := httptest.NewRequest("POST", "/api/v1/compile", bytes.NewBufferString("not json"))
	r := d.handleCompile(req)
	assert.True(t, r.IsErr)
	assert.Equal(t, 400, r.Status)
}

func TestRouter_AuthThenCompileThenFetchLog(t *testing.T) {
	d, rawKey := newTestDaemon(t)
	router := d.newRouter()

	authReq := httptest.NewRequest("POST", "/api/v1/auth", nil)
	authReq.Header.Set("Authorization", "Bearer "+rawKey)
	authRec := httptest.NewRecorder()
	router.ServeHTTP(authRec, authReq)
	require.Equal(t, 200, authRec.Code)

	var authBody authResponse
	require.NoError(t, json.Unmarshal(authRec.Body.Bytes(), &authBody))
	require.NotEmpty(t, authBody.Token)

	compileBody := `{"source": "package \"Sample\";\npublic int32 add(int32 a, int32 b) {\nreturn a + b;\n}\n"}`
	compileReq := httptest.NewRequest("POST", "/api/v1/compile", bytes.NewBufferString(compileBody))
	compileReq.Header.Set("Content-Type", "application/json")
	compileReq.Header.Set("Authorization", "Bearer "+authBody.Token)
	compileRec := httptest.NewRecorder()
	router.ServeHTTP(compileRec, compileReq)
	assert.Equal(t, 200, compileRec.Code)
}

func TestRouter_CompileWithoutSessionIsUnauthorized(t *testing.T) {
	d, _ := newTestDaemon(t)
	router := d.newRouter()

	compileReq := httptest.NewRequest("POST", "/api/v1/compile", bytes.NewBufferString(`{"source":""}`))
	compileReq.Header.Set("Content-Type", "application/json")
	compileRec := httptest.NewRecorder()
	router.ServeHTTP(compileRec, compileReq)
	assert.Equal(t, 401, compileRec.Code)
}

func TestRouter_GetCompileLogUnknownIDReturnsNotFound(t *testing.T) {
	d, rawKey := newTestDaemon(t)
	router := d.newRouter()

	authReq := httptest.NewRequest("POST", "/api/v1/auth", nil)
	authReq.Header.Set("Authorization", "Bearer "+rawKey)
	authRec := httptest.NewRecorder()
	router.ServeHTTP(authRec, authReq)
	require.Equal(t, 200, authRec.Code)

	var authBody authResponse
	require.NoError(t, json.Unmarshal(authRec.Body.Bytes(), &authBody))

	id, err := uuid.NewRandom()
	require.NoError(t, err)

	getReq := httptest.NewRequest("GET", "/api/v1/compiles/"+id.String(), nil)
	getReq.Header.Set("Authorization", "Bearer "+authBody.Token)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	assert.Equal(t, 404, getRec.Code)
}
