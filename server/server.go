package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"entracker/pkg/manager"
	"entracker/pkg/oracle"
	"entracker/pkg/sheets"
	"entracker/pkg/tmdb"
)

// Server houses all dependencies the tracking endpoints need: logger,
// manager, request validation.
type Server struct {
	baseLogger *zap.SugaredLogger
	manager    manager.MediaManager
	validate   *validator.Validate
}

// New creates a new tracking server
func New(logger *zap.SugaredLogger, manager manager.MediaManager) Server {
	return Server{
		baseLogger: logger,
		manager:    manager,
		validate:   validator.New(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type dataResponse struct {
	Data any `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeResponse(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	w.Write(b)
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, errorResponse{Error: msg})
}

// statusFromError maps the sentinel taxonomy onto HTTP statuses. Anything
// unrecognized is a 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, manager.ErrInvalidMediaType):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, manager.ErrNotFound), errors.Is(err, tmdb.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tmdb.ErrUpstream),
		errors.Is(err, oracle.ErrUnavailable),
		errors.Is(err, oracle.ErrMalformedOutput),
		errors.Is(err, sheets.ErrUnavailable):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Serve starts the http server and is a blocking call
func (s Server) Serve(port int) error {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())

	rtr.HandleFunc("/", s.Landing()).Methods(http.MethodGet)
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)

	rtr.HandleFunc("/api/search-tmdb", s.SearchMedia()).Methods(http.MethodGet)
	rtr.HandleFunc("/add-media", s.AddMedia()).Methods(http.MethodPost)
	rtr.HandleFunc("/get-media/{mediaType}", s.GetMedia()).Methods(http.MethodGet)
	rtr.HandleFunc("/api/franchises/{mediaType}", s.ListFranchises()).Methods(http.MethodGet)
	rtr.HandleFunc("/api/franchise/{mediaType}/{name}", s.GetFranchise()).Methods(http.MethodGet)
	rtr.HandleFunc("/api/details/{mediaType}/{name}", s.GetDetails()).Methods(http.MethodGet)
	rtr.HandleFunc("/update-media", s.UpdateMedia()).Methods(http.MethodPut)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(rtr)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: corsHandler,
	}

	go func() {
		s.baseLogger.Info("serving...", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil {
			s.baseLogger.Error(err.Error())
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	return srv.Shutdown(ctx)
}

// Landing is a plain HTML index of the endpoints.
func (s Server) Landing() http.HandlerFunc {
	const page = `<h1>Entracker Backend is Running</h1>
<p>Welcome to the Entracker API server.</p>
<ul>
  <li>POST <code>/add-media</code> to add a new entry.</li>
  <li>GET  <code>/get-media/:mediaType</code> to fetch all media of a type.</li>
  <li>PUT  <code>/update-media</code> to update an existing entry.</li>
</ul>`

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}
}

// Healthz is an endpoint that can be used for probes
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, messageResponse{Message: "ok"})
	}
}
