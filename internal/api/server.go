// Package api exposes the HTTP interface for the crawler service: job
// submission and status plus the query surface over stored articles.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prensa-rd/newscrawler/internal/crawler"
	"github.com/prensa-rd/newscrawler/internal/jobs"
	"github.com/prensa-rd/newscrawler/internal/sites"
	"github.com/prensa-rd/newscrawler/internal/store"
)

// CrawlService starts crawl jobs. The API submits and returns immediately;
// the service owns the background run and the job's terminal transition.
type CrawlService interface {
	Start(ctx context.Context, site string, seedURLs []string) (crawler.Job, error)
}

// Server wires HTTP handlers to the crawl service and stores.
type Server struct {
	router chi.Router
	crawls CrawlService
	jobs   *jobs.Registry
	store  store.ArticleStore
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(crawls CrawlService, registry *jobs.Registry, articles store.ArticleStore, logger *zap.Logger) *Server {
	s := &Server{
		crawls: crawls,
		jobs:   registry,
		store:  articles,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scrape", s.submitScrape)
		r.Get("/sites", s.listSites)
		r.Get("/jobs/{job_id}", s.getJob)
		r.Route("/news", func(r chi.Router) {
			r.Get("/", s.listNews)
			r.Get("/filter", s.filterNews)
			r.Get("/categories", s.listCategories)
			r.Get("/sources", s.listSources)
			r.Get("/{job_id}", s.getJobNews)
			r.Delete("/{job_id}", s.deleteJobNews)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scrapeRequest struct {
	Site string   `json:"site"`
	URLs []string `json:"urls,omitempty"`
}

type scrapeResponse struct {
	JobID  string `json:"job_id"`
	Site   string `json:"site"`
	Status string `json:"status"`
}

func (s *Server) submitScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Site = strings.TrimSpace(req.Site)
	if req.Site == "" {
		writeError(w, http.StatusBadRequest, "site is required")
		return
	}
	if _, err := sites.Lookup(req.Site); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.crawls.Start(r.Context(), req.Site, req.URLs)
	if err != nil {
		s.logger.Error("crawl submission failed", zap.String("site", req.Site), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start crawl")
		return
	}
	writeJSON(w, http.StatusAccepted, scrapeResponse{
		JobID:  job.ID,
		Site:   job.Site,
		Status: string(job.Status),
	})
}

func (s *Server) listSites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sites": sites.Names()})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobs.Get(r.Context(), jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type newsResponse struct {
	Total    int                     `json:"total"`
	Articles []crawler.ArticleRecord `json:"articles"`
}

func (s *Server) listNews(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 100)
	if !ok {
		return
	}
	records, err := s.store.ListAll(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing articles failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load articles")
		return
	}
	writeJSON(w, http.StatusOK, newsResponse{Total: len(records), Articles: emptyIfNil(records)})
}

func (s *Server) filterNews(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 100)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := store.Filter{
		Category: q.Get("category"),
		Source:   q.Get("source"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Limit:    limit,
	}
	records, err := s.store.Search(r.Context(), filter)
	if err != nil {
		s.logger.Error("article search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to search articles")
		return
	}
	writeJSON(w, http.StatusOK, newsResponse{Total: len(records), Articles: emptyIfNil(records)})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByCategory(r.Context())
	if err != nil {
		s.logger.Error("category aggregation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	if counts == nil {
		counts = []store.CategoryCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": counts})
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountBySource(r.Context())
	if err != nil {
		s.logger.Error("source aggregation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load sources")
		return
	}
	if counts == nil {
		counts = []store.SourceCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": counts})
}

func (s *Server) getJobNews(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	records, err := s.store.ListJob(r.Context(), jobID)
	if errors.Is(err, store.ErrNoRecords) {
		writeError(w, http.StatusNotFound, "no articles for job")
		return
	}
	if err != nil {
		s.logger.Error("job articles load failed", zap.String("job_id", jobID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load articles")
		return
	}
	writeJSON(w, http.StatusOK, newsResponse{Total: len(records), Articles: records})
}

func (s *Server) deleteJobNews(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if err := s.store.DeleteJob(r.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNoRecords) {
			writeError(w, http.StatusNotFound, "no articles for job")
			return
		}
		s.logger.Error("job articles delete failed", zap.String("job_id", jobID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete articles")
		return
	}
	s.jobs.Delete(r.Context(), jobID)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": jobID})
}

func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return limit, true
}

func emptyIfNil(records []crawler.ArticleRecord) []crawler.ArticleRecord {
	if records == nil {
		return []crawler.ArticleRecord{}
	}
	return records
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
