package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lexhulp/lookup-cli/internal/model"
)

var servePort int

// lookupRunner is the slice of the engine the HTTP layer needs.
type lookupRunner interface {
	Lookup(ctx context.Context, req model.LookupRequest) (model.Outcome, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lookup API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine()
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: buildRouter(env.Engine),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func buildRouter(engine lookupRunner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/lookup", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Term                 string   `json:"term"`
			Context              []string `json:"context"`
			MaxResults           int      `json:"max_results"`
			TimeoutSecs          int      `json:"timeout_secs"`
			ExcludeJurisdictions []string `json:"exclude_jurisdictions"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if in.Term == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "term is required"})
			return
		}

		out, err := engine.Lookup(req.Context(), model.LookupRequest{
			ID:                   middleware.GetReqID(req.Context()),
			Term:                 in.Term,
			Context:              in.Context,
			MaxResults:           in.MaxResults,
			Timeout:              time.Duration(in.TimeoutSecs) * time.Second,
			ExcludeJurisdictions: in.ExcludeJurisdictions,
		})
		if err != nil {
			zap.L().Error("lookup request failed",
				zap.String("term", in.Term),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
