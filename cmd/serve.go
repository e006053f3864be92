package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
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

	"github.com/biotrack/biotrack-cli/internal/extract"
	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/internal/plan"
	"github.com/biotrack/biotrack-cli/internal/store"
)

// maxUploadBytes bounds one analyze request's multipart payload.
const maxUploadBytes = 32 << 20

// shutdownGrace bounds how long in-flight requests may drain on shutdown.
const shutdownGrace = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		api := &apiServer{
			store:    st,
			analyzer: newAnalyzer(),
			runner:   newRunner(st),
			profile:  profileFromConfig(),
			userID:   cfg.User.ID,
			language: cfg.Plan.Language,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownServer(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownServer drains in-flight requests under a fresh deadline. The
// signal context is already canceled by the time shutdown starts, so it
// cannot be reused here.
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// apiServer bundles the dependencies the HTTP handlers need.
type apiServer struct {
	store    store.Store
	analyzer *extract.Analyzer
	runner   *plan.Runner
	profile  model.Profile
	userID   string
	language string
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/tests", s.handleListTests)
		r.Delete("/tests/{resultID}", s.handleDeleteTest)
		r.Get("/compare", s.handleCompare)
		r.Get("/reminders", s.handleListReminders)
		r.Patch("/reminders/{reminderID}", s.handleUpdateReminder)
		r.Delete("/reminders/{reminderID}", s.handleDeleteReminder)
		r.Post("/diet-plan", s.handleStartPlan)
		r.Get("/diet-plan/job/{jobID}", s.handleJobStatus)
	})
	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	var docs []extract.Document
	for _, fh := range files {
		mt, err := mediaTypeFor(fh.Filename)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("open %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("read %s", fh.Filename))
			return
		}
		docs = append(docs, extract.Document{
			Name:      fh.Filename,
			MediaType: mt,
			Data:      data,
		})
	}

	readings, err := s.analyzer.AnalyzeAll(r.Context(), docs)
	if err != nil {
		if eris.Is(err, extract.ErrUnreadableDocument) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		zap.L().Error("analyze request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "document analysis failed")
		return
	}

	stored, err := storeReadings(r.Context(), s.store, s.userID, readings)
	if err != nil {
		zap.L().Error("store readings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store results")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": len(docs),
		"results":   stored,
	})
}

func (s *apiServer) handleListTests(w http.ResponseWriter, r *http.Request) {
	var (
		results []model.TestResult
		err     error
	)
	if metric := r.URL.Query().Get("metric"); metric != "" {
		results, err = s.store.ListTestResultsByMetric(r.Context(), s.userID, metric)
	} else {
		results, err = s.store.ListTestResults(r.Context(), s.userID)
	}
	if err != nil {
		zap.L().Error("list tests failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *apiServer) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "resultID")
	if err := s.store.DeleteTestResult(r.Context(), id); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		zap.L().Error("delete test failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	comparisons, err := compareAll(r.Context(), s.store, s.userID)
	if err != nil {
		zap.L().Error("compare failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compare results")
		return
	}
	writeJSON(w, http.StatusOK, comparisons)
}

func (s *apiServer) handleListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.store.ListReminders(r.Context(), s.userID)
	if err != nil {
		zap.L().Error("list reminders failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (s *apiServer) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sent bool `json:"sent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "reminderID")
	if err := s.store.MarkReminderSent(r.Context(), id, req.Sent); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reminder not found")
			return
		}
		zap.L().Error("update reminder failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update reminder")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reminderID")
	if err := s.store.DeleteReminder(r.Context(), id); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reminder not found")
			return
		}
		zap.L().Error("delete reminder failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleStartPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if r.Body != nil {
		// An empty body means config-default language.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	lang := req.Language
	if lang == "" {
		lang = s.language
	}

	jobID, err := s.runner.Start(r.Context(), s.profile, lang)
	if err != nil {
		zap.L().Error("start plan job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start generation")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *apiServer) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	status, err := s.runner.Status(r.Context(), jobID)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		zap.L().Error("job status failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
