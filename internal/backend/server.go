package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"rezepte/internal/api"
	"rezepte/internal/logging"
	"rezepte/internal/recipe"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the recipe API over a Store.
type Server struct {
	store Store
	log   *zap.SugaredLogger
	mux   *http.ServeMux
}

// NewServer creates a Server. A nil logger uses the server category.
func NewServer(store Store, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = logging.Get(logging.CategoryServer)
	}
	s := &Server{store: store, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET "+api.RecipesPath, s.handleList)
	s.mux.HandleFunc("POST "+api.RecipesPath, s.handleCreate)
	s.mux.HandleFunc("DELETE "+api.RecipesPath+"/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// ServeHTTP tags every request with a request id and logs it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(api.RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(api.RequestIDHeader, id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r)
	s.log.Infow("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"request_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Run serves on addr until ctx is cancelled, then shuts down within
// shutdownTimeout. If ready is non-nil it receives the bound address.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	logging.Server("Listening on %s", ln.Addr())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ServerError("Serve failed: %v", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Server("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleList answers with the caller's recipes only. Without an owner there
// is nothing to show.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok, err := ownerParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, []recipe.Recipe{})
		return
	}

	recipes, err := s.store.List(r.Context(), userID)
	if err != nil {
		s.log.Errorw("list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req recipe.CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.Create(r.Context(), req)
	if err != nil {
		s.log.Errorw("create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID, ok, err := ownerParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	switch err := s.store.Delete(r.Context(), id, userID); {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.log.Errorw("delete failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// ownerParam parses the userId query parameter. ok is false when it is absent.
func ownerParam(r *http.Request) (userID int, ok bool, err error) {
	v := r.URL.Query().Get(api.UserIDParam)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false, errors.New("invalid userId")
	}
	return n, true, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
