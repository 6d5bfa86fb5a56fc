package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/modelaudit/trustgate/pkg/logging"
	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/modelaudit/trustgate/pkg/registry"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = 8080
)

var (
	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen",
		Value: serverPortDefault,
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start the artifact registry HTTP API",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			debugFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	cfg := getConfig(c)
	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	logging.SetDefaultServerLogger(level)

	address := fmt.Sprintf("0.0.0.0:%d", c.Int(portFlag.Name))

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(cfg),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address))

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(cfg *appConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("POST /artifacts/{category}", createArtifactHandler(cfg))
	mux.HandleFunc("GET /artifacts", listArtifactsHandler(cfg))
	mux.HandleFunc("GET /artifacts/{id}", getArtifactHandler(cfg))
	mux.HandleFunc("DELETE /artifacts/{id}", deleteArtifactHandler(cfg))
	mux.HandleFunc("DELETE /reset", resetHandler(cfg))

	return mux
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
}

type createArtifactRequest struct {
	URL string `json:"url"`
}

func createArtifactHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := meta.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		var req createArtifactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			writeError(w, http.StatusBadRequest, errors.New("request body must carry an artifact url"))
			return
		}

		ref, snap, rating, err := scoreArtifact(r.Context(), cfg, req.URL, string(category))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		ratingJSON, err := json.Marshal(rating)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		name := snap.Str(meta.KeyName)
		if name == "" {
			name = ref.Identifier
		}

		artifact := registry.NewArtifact(ref, name, rating.NetScore, ratingJSON)
		if err := cfg.Store.Save(r.Context(), artifact); err != nil {
			if errors.Is(err, registry.ErrDuplicate) {
				writeError(w, http.StatusConflict, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		// The record is kept either way; a failing score still rejects
		// the upload with 424.
		status := http.StatusCreated
		if artifact.Status == registry.StatusDisqualified {
			status = http.StatusFailedDependency
		}
		writeJSON(w, status, newArtifactDetail(artifact))
	}
}

func listArtifactsHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := registry.ListQuery{Limit: listResultLimitDefault}

		if cat := r.URL.Query().Get("category"); cat != "" {
			parsed, err := meta.ParseCategory(cat)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			q.Category = parsed
		}
		if status := r.URL.Query().Get("status"); status != "" {
			parsed, err := parseStatus(status)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			q.Status = parsed
		}
		if limit := r.URL.Query().Get("limit"); limit != "" {
			n, err := strconv.Atoi(limit)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
				return
			}
			q.Limit = n
		}

		list, err := cfg.Store.List(r.Context(), q)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func getArtifactHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := cfg.Store.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, newArtifactDetail(a))
	}
}

func deleteArtifactHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Store.Delete(r.Context(), r.PathValue("id")); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func resetHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Store.Reset(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	slog.Debug("request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
