package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/server/auth"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ctxKey string

const requestInfoKey ctxKey = "requestInfo"

// requestInfo is filled in as the request passes through the middleware
// chain and read back when the request is logged.
type requestInfo struct {
	id   string
	user string
}

func infoFrom(ctx context.Context) *requestInfo {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info
	}
	return &requestInfo{}
}

// userFrom returns the user set by authMiddleware.
func userFrom(ctx context.Context) string {
	return infoFrom(ctx).user
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// requestIDMiddleware reuses a client-supplied request id or generates one.
func (s *RESTServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)

		ctx := context.WithValue(r.Context(), requestInfoKey, &requestInfo{id: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *RESTServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", s.corsOrigin)
			h.Set("Access-Control-Expose-Headers", common.LastModifiedHeaderName+", "+common.RequestIDHeaderName)
		}
		next.ServeHTTP(w, r)
	})
}

// observeMiddleware logs one line per request and records HTTP metrics.
func (s *RESTServer) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(started)
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		httpRequestSeconds.WithLabelValues(route).Observe(elapsed.Seconds())

		info := infoFrom(r.Context())
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", elapsed,
			"request_id", info.id,
			"user", info.user,
		)
	})
}

// authMiddleware requires a valid bearer token and records its user.
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, common.ErrUnauthorized)
			return
		}

		user, err := auth.GetUserFromToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			writeError(w, err)
			return
		}

		infoFrom(r.Context()).user = user
		next.ServeHTTP(w, r)
	})
}
