package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/logging"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Options tune request handling.
type Options struct {
	CORSOrigin   string
	MaxBodyBytes int64
}

type RESTServer struct {
	address    string
	services   *services.Services
	logger     logging.Logger
	jwtSecret  []byte
	corsOrigin string
	maxBody    int64
	decoder    *schema.Decoder
}

func NewRESTServer(a string, l logging.Logger, svc *services.Services, secretKey string, opts Options) *RESTServer {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)
	decoder.SetAliasTag("json")

	return &RESTServer{
		address:    a,
		services:   svc,
		logger:     l.With("module", "rest_server"),
		jwtSecret:  []byte(secretKey),
		corsOrigin: opts.CORSOrigin,
		maxBody:    opts.MaxBodyBytes,
		decoder:    decoder,
	}
}

// Handler builds the routing tree.
func (s *RESTServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestIDMiddleware, s.corsMiddleware, s.observeMiddleware)

	router.Path("/ping").Methods(http.MethodGet).HandlerFunc(s.ping)
	router.Path("/metrics").Methods(http.MethodGet).Handler(promhttp.Handler())

	api := router.NewRoute().Subrouter()
	api.Use(s.authMiddleware)

	api.Path("/" + models.KindOccurrence.String() + "/search").Methods(http.MethodGet).HandlerFunc(s.searchOccurrences)
	newResource(s, s.services.Skulls).Register(api)
	newResource(s, s.services.Quicks).Register(api)
	newResource(s, s.services.Occurrences.CrudService).Register(api)

	return router
}

func (s *RESTServer) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *RESTServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting REST server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
