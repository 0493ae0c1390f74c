package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/paperview/paperview"
	"github.com/paperview/paperview/extract"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>paperview</title>
    <style>
        form {
            display: flex;
            flex-direction: column;
            align-items: center;
        }
        input[type=text] {
            width: 50%;
            padding: 12px 20px;
            margin: 8px 0;
            box-sizing: border-box;
            border: 2px solid #ccc;
            border-radius: 4px;
        }
        input[type=submit] {
            width: 50%;
            background-color: #4CAF50;
            color: white;
            padding: 14px 20px;
            margin: 8px 0;
            border: none;
            border-radius: 4px;
            cursor: pointer;
        }
        input[type=submit]:hover {
            background-color: #45a049;
        }
    </style>
</head>
<body>
    <form action="/form-start-overview" method="post">
        <label for="doi">DOI:</label><br>
        <input type="text" id="doi" name="doi"><br>
        <label for="url">URL:</label><br>
        <input type="text" id="url" name="url"><br><br>
        <input type="submit" value="Submit">
    </form>
{{if .ResultURL}}
    <br>
    <a href="{{.ResultURL}}">Click here to view the overview result</a>
{{end}}
</body>
</html>
`))

// Overview jobs run in the background; clients poll for the result.
const (
	jobPending = "pending"
	jobDone    = "done"
	jobFailed  = "failed"
)

type overviewJob struct {
	ID      string    `json:"call_id"`
	DOI     string    `json:"doi,omitempty"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
	Started time.Time `json:"started"`

	html string
}

type server struct {
	cache *paperview.Cache
	log   zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*overviewJob
}

func cmdServe(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 8080, "Port to listen on")
	fs.Parse(args)

	cache := openCache(cacheDir)
	defer cache.Close()

	srv := &server{
		cache: cache,
		log:   zerolog.New(os.Stderr).With().Timestamp().Logger(),
		jobs:  make(map[string]*overviewJob),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(srv.requestLogger)

	r.Get("/", srv.handleIndex)
	r.Get("/metadata", srv.handleMetadata)
	r.Post("/start-overview", srv.handleStartOverview)
	r.Post("/form-start-overview", srv.handleFormStartOverview)
	r.Get("/overview", srv.handleOverviewQuery)
	r.Post("/overview", srv.handleStartOverview)
	r.Get("/overview/{callID}", srv.handleOverviewResult)
	r.Get("/overview_result/{callID}", srv.handleOverviewResult)
	r.Get("/stats", srv.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	httpSrv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Serving on http://localhost%s\n", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve: %v", err)
	}
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexTemplate.Execute(w, struct{ ResultURL string }{})
}

// handleMetadata resolves a manuscript by DOI or by its content page URL.
func (s *server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	doi := r.URL.Query().Get("doi")
	page := r.URL.Query().Get("page")

	if doi == "" && page != "" {
		var err error
		doi, err = paperview.ScrapeDOI(r.Context(), page)
		if err != nil {
			s.jsonError(w, http.StatusBadGateway, fmt.Sprintf("resolve page: %v", err))
			return
		}
	}
	if doi == "" {
		s.jsonError(w, http.StatusBadRequest, "doi or page required")
		return
	}

	m, err := s.cache.FetchDetail(r.Context(), doi)
	if err != nil {
		s.jsonError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

type overviewInput struct {
	DOI string `json:"doi"`
	URL string `json:"url"`
}

func (s *server) handleStartOverview(w http.ResponseWriter, r *http.Request) {
	var input overviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.DOI == "" && input.URL == "" {
		s.jsonError(w, http.StatusBadRequest, "doi or url required")
		return
	}

	job := s.startJob(input.DOI, input.URL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"call_id": job.ID})
}

func (s *server) handleFormStartOverview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	doi := r.PostFormValue("doi")
	url := r.PostFormValue("url")
	if doi == "" && url == "" {
		http.Error(w, "doi or url required", http.StatusBadRequest)
		return
	}

	job := s.startJob(doi, url)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexTemplate.Execute(w, struct{ ResultURL string }{
		ResultURL: "/overview_result/" + job.ID,
	})
}

// handleOverviewQuery is a GET alias for starting an overview job.
func (s *server) handleOverviewQuery(w http.ResponseWriter, r *http.Request) {
	doi := r.URL.Query().Get("doi")
	page := r.URL.Query().Get("page")
	if doi == "" && page == "" {
		s.jsonError(w, http.StatusBadRequest, "doi or page required")
		return
	}

	job := s.startJob(doi, page)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"call_id": job.ID})
}

func (s *server) handleOverviewResult(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	s.mu.Lock()
	job, ok := s.jobs[callID]
	var snapshot overviewJob
	if ok {
		snapshot = *job
	}
	s.mu.Unlock()

	if !ok {
		s.jsonError(w, http.StatusNotFound, "unknown call id")
		return
	}

	switch snapshot.Status {
	case jobPending:
		w.WriteHeader(http.StatusAccepted)
	case jobFailed:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(snapshot)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, snapshot.html)
	}
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cache.Stats(r.Context())
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// startJob launches overview generation in the background and returns
// the job handle immediately.
func (s *server) startJob(doi, pageURL string) *overviewJob {
	job := &overviewJob{
		ID:      uuid.NewString(),
		DOI:     doi,
		Status:  jobPending,
		Started: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.runJob(job, doi, pageURL)
	return job
}

func (s *server) runJob(job *overviewJob, doi, pageURL string) {
	// Full builds download the PDF and rasterize pages; allow plenty.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	logger := s.log.With().Str("call_id", job.ID).Logger()

	if doi == "" {
		var err error
		doi, err = paperview.ScrapeDOI(ctx, pageURL)
		if err != nil {
			logger.Error().Err(err).Str("page", pageURL).Msg("resolve page")
			s.finishJob(job, "", fmt.Errorf("resolve page: %w", err))
			return
		}
	}

	logger.Info().Str("doi", doi).Msg("overview job started")

	html, err := s.cache.Overview(ctx, doi, extract.All)
	if err != nil {
		logger.Error().Err(err).Str("doi", doi).Msg("overview job failed")
	} else {
		logger.Info().Str("doi", doi).Msg("overview job done")
	}
	s.finishJob(job, html, err)
}

func (s *server) finishJob(job *overviewJob, html string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		job.Status = jobFailed
		job.Error = err.Error()
		return
	}
	job.Status = jobDone
	job.html = html
}

func (s *server) jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
