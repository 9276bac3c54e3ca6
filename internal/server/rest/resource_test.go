package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/server/auth"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newClient(t *testing.T, user string, opts Options) *client {
	t.Helper()
	token, err := auth.GenerateToken(user, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return &client{t: t, handler: newTestServer(t, "", opts).Handler(), token: token}
}

func (c *client) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func lastModified(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	v := w.Header().Get(common.LastModifiedHeaderName)
	_, err := strconv.ParseUint(v, 10, 64)
	require.NoError(t, err, "Last-Modified %q", v)
	return v
}

const coffee = `{"name":"coffee","color":255,"icon":"cup","unitPrice":1.5}`

func TestSkullLifecycle(t *testing.T) {
	c := newClient(t, "alice", Options{MaxBodyBytes: 1024})

	w := c.do(http.MethodPost, "/skull", coffee)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `1`, w.Body.String())
	created := lastModified(t, w)

	w = c.do(http.MethodGet, "/skull/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"coffee","color":255,"icon":"cup","unitPrice":1.5}`, w.Body.String())

	w = c.do(http.MethodPut, "/skull/1", `{"name":"tea","color":255,"icon":"cup","unitPrice":1.5,"limit":3}`,
		common.UnmodifiedSinceHeaderName, created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"tea","color":255,"icon":"cup","unitPrice":1.5,"limit":3}`, w.Body.String())
	updated := lastModified(t, w)

	w = c.do(http.MethodHead, "/skull", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, updated, lastModified(t, w))

	w = c.do(http.MethodGet, "/skull", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.WithID[models.Skull]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "tea", list[0].Data.Name)

	w = c.do(http.MethodDelete, "/skull/1", "", common.UnmodifiedSinceHeaderName, updated)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/skull/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEmptyIsArray(t *testing.T) {
	c := newClient(t, "alice", Options{})

	w := c.do(http.MethodGet, "/quick", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListLimit(t *testing.T) {
	c := newClient(t, "alice", Options{})

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"name":"s%d","color":%d,"icon":"i%d","unitPrice":1}`, i, i, i)
		require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/skull", body).Code)
	}

	w := c.do(http.MethodGet, "/skull?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.WithID[models.Skull]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []models.ID{2, 3}, []models.ID{list[0].ID, list[1].ID})

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/skull?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/skull?bogus=1", "").Code)
}

func TestSearch(t *testing.T) {
	c := newClient(t, "alice", Options{})

	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/skull", coffee).Code)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/skull", `{"name":"beer","color":1,"icon":"mug","unitPrice":3}`).Code)
	for _, body := range []string{
		`{"skull":1,"amount":1,"millis":100}`,
		`{"skull":2,"amount":1,"millis":200}`,
		`{"skull":1,"amount":2,"millis":300}`,
	} {
		require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/occurrence", body).Code)
	}

	w := c.do(http.MethodGet, "/occurrence/search?skull=1&start=50&end=250", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[{"id":1,"skull":1,"amount":1,"millis":100}]`, w.Body.String())

	w = c.do(http.MethodGet, "/occurrence/search?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.WithID[models.Occurrence]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	if diff := cmp.Diff([]models.ID{3, 2}, []models.ID{got[0].ID, got[1].ID}); diff != "" {
		t.Fatalf("search order (-want +got):\n%s", diff)
	}
}

func TestStatusMapping(t *testing.T) {
	c := newClient(t, "alice", Options{MaxBodyBytes: 64})
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/skull", coffee).Code)
	token := lastModified(t, c.do(http.MethodHead, "/skull", ""))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header []string
		want   int
	}{
		{"duplicate", http.MethodPost, "/skull", coffee, nil, http.StatusConflict},
		{"dangling reference", http.MethodPost, "/quick", `{"skull":9,"amount":1}`, nil, http.StatusBadRequest},
		{"invalid field", http.MethodPost, "/occurrence", `{"skull":1,"amount":0,"millis":1}`, nil, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/skull", `{"name":`, nil, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/quick", `{"skull":1,"amount":1,"extra":true}`, nil, http.StatusBadRequest},
		{"body too large", http.MethodPost, "/skull", `{"name":"` + strings.Repeat("x", 100) + `"}`, nil, http.StatusRequestEntityTooLarge},
		{"missing", http.MethodGet, "/skull/42", "", nil, http.StatusNotFound},
		{"missing token header", http.MethodDelete, "/skull/1", "", nil, http.StatusPreconditionFailed},
		{"stale token", http.MethodDelete, "/skull/1", "", []string{common.UnmodifiedSinceHeaderName, "1"}, http.StatusPreconditionFailed},
		{"bad token header", http.MethodDelete, "/skull/1", "", []string{common.UnmodifiedSinceHeaderName, "yesterday"}, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/skull/42", "", []string{common.UnmodifiedSinceHeaderName, token}, http.StatusNotFound},
		{"id out of range", http.MethodGet, "/skull/99999999999", "", nil, http.StatusBadRequest},
		{"method not allowed", http.MethodPatch, "/skull/1", "", nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.do(tt.method, tt.path, tt.body, tt.header...)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestDeleteSkullReferencedByOccurrence(t *testing.T) {
	c := newClient(t, "alice", Options{})
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/skull", coffee).Code)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/occurrence", `{"skull":1,"amount":1,"millis":1}`).Code)
	token := lastModified(t, c.do(http.MethodHead, "/skull", ""))

	w := c.do(http.MethodDelete, "/skull/1", "", common.UnmodifiedSinceHeaderName, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth(t *testing.T) {
	c := newClient(t, "alice", Options{})

	anonymous := *c
	anonymous.token = ""
	assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/skull", "").Code)

	forged := *c
	forged.token = "not.a.jwt"
	assert.Equal(t, http.StatusUnauthorized, forged.do(http.MethodGet, "/skull", "").Code)

	expired, err := auth.GenerateToken("alice", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	late := *c
	late.token = expired
	assert.Equal(t, http.StatusUnauthorized, late.do(http.MethodGet, "/skull", "").Code)

	stranger, err := auth.GenerateToken("mallory", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	unknown := *c
	unknown.token = stranger
	assert.Equal(t, http.StatusForbidden, unknown.do(http.MethodGet, "/skull", "").Code)
}

func TestUsersAreIsolated(t *testing.T) {
	alice := newClient(t, "alice", Options{})
	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/skull", coffee).Code)

	bobToken, err := auth.GenerateToken("bob", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	bob := *alice
	bob.token = bobToken

	w := bob.do(http.MethodGet, "/skull", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPingAndMetricsAreOpen(t *testing.T) {
	c := newClient(t, "alice", Options{})
	c.token = ""

	w := c.do(http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())

	w = c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skullkeeper_http_requests_total")
}

func TestRequestIDAndCORS(t *testing.T) {
	c := newClient(t, "alice", Options{CORSOrigin: "https://example.org"})

	w := c.do(http.MethodGet, "/ping", "")
	assert.NotEmpty(t, w.Header().Get(common.RequestIDHeaderName))
	assert.Equal(t, "https://example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = c.do(http.MethodGet, "/ping", "", common.RequestIDHeaderName, "req-1")
	assert.Equal(t, "req-1", w.Header().Get(common.RequestIDHeaderName))

	plain := newClient(t, "alice", Options{})
	w = plain.do(http.MethodGet, "/ping", "")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, statusForError(&common.NoSuchUserError{User: "x"}))
	assert.Equal(t, http.StatusInsufficientStorage, statusForError(common.ErrStoreFull))
	assert.Equal(t, http.StatusInternalServerError, statusForError(common.Internal("load", io.ErrUnexpectedEOF)))
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, common.Internal("load /secret/path", io.ErrUnexpectedEOF))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}
