package main

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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"smart-docs/internal/app"
	"smart-docs/internal/httputil"
	"smart-docs/internal/ingest"
	"smart-docs/internal/render"
	"smart-docs/internal/source"
	"smart-docs/internal/store"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type repositoryRequest struct {
	URL string `json:"url" validate:"required"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord := deps.NewCoordinator(ctx)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps, coord),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httputil.Serve(ctx, deps.Log, srv, "gateway")
	})
	// Let in-flight summaries resolve before the store and queue close.
	g.Go(func() error {
		<-ctx.Done()
		coord.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("gateway stopped", "err", err)
	}
}

func newRouter(deps app.Deps, coord *ingest.Coordinator) http.Handler {
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/documents/upload", uploadHandler(deps, coord))
	r.Post("/api/documents/repository", repositoryHandler(deps, coord))
	r.Get("/api/document", documentHandler(deps, coord))
	r.Post("/api/summary", requestSummaryHandler(deps, coord))
	r.Get("/api/summary", summaryHandler(deps, coord))
	r.Get("/api/history", historyHandler(deps))
	r.Get("/api/history/{id}/summary", historySummaryHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))
	return r
}

func uploadHandler(deps app.Deps, coord *ingest.Coordinator) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		// Leave room for multipart framing; the file itself is bounded by the source.
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1<<20)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				httputil.Fail(deps.Log, w, fmt.Sprintf("File too large (max %d bytes).", maxFileSize), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		doc, err := coord.Load(r.Context(), source.File{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Body:     file,
			MaxBytes: maxFileSize,
		})
		if err != nil {
			httputil.FailErr(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, doc)
	}
}

func repositoryHandler(deps app.Deps, coord *ingest.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req repositoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		doc, err := coord.Load(r.Context(), source.Repository{URL: req.URL, Fetcher: deps.Fetcher})
		if err != nil {
			httputil.FailErr(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, doc)
	}
}

func documentHandler(deps app.Deps, coord *ingest.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := coord.Snapshot()
		if v.Document == nil {
			httputil.Fail(deps.Log, w, "no document loaded", nil, http.StatusNotFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document": v.Document,
			"loads":    v.Loads,
		})
	}
}

func requestSummaryHandler(deps app.Deps, coord *ingest.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f := coord.RequestSummary(); f == nil {
			httputil.Fail(deps.Log, w, "Load a document before requesting a summary.", nil, http.StatusConflict)
			return
		}
		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"state": coord.Snapshot().SummaryState,
		})
	}
}

func summaryHandler(deps app.Deps, coord *ingest.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := coord.Snapshot()
		if r.URL.Query().Get("format") == "markdown" {
			if v.Summary == nil {
				httputil.Fail(deps.Log, w, "no summary available", nil, http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte(render.Markdown(v.Document, *v.Summary))); err != nil {
				deps.Log.Warn("summary write failed", "err", err)
			}
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"state":   v.SummaryState,
			"summary": v.Summary,
			"error":   v.SummaryError,
		})
	}
}

func historyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxHistoryLimit {
				httputil.Fail(deps.Log, w, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit), err, http.StatusBadRequest)
				return
			}
			limit = n
		}
		records, err := deps.Store.ListDocuments(r.Context(), limit)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list history", err, http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []store.Record{}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": records})
	}
}

func historySummaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		sum, err := deps.Store.GetSummary(r.Context(), docID)
		if errors.Is(err, store.ErrSummaryNotFound) {
			httputil.Fail(deps.Log.With("document_id", docID), w, "summary not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log.With("document_id", docID), w, "failed to load summary", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, sum)
	}
}
