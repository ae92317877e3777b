package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appgrants "github.com/bryanwahyu/grantsheet/internal/application/grants"
	"github.com/bryanwahyu/grantsheet/internal/domain/ai"
	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
	"github.com/bryanwahyu/grantsheet/internal/middleware"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope before the body is cut off.
const multipartOverhead = 1 << 20

type Options struct {
	Service        *appgrants.Service
	Logger         *zap.Logger
	AllowedOrigins []string
	// Limiter throttles POST /analyze per client; nil disables it.
	Limiter        *middleware.RateLimiter
	HealthCheckers map[string]middleware.HealthChecker
	MaxUploadBytes int64
}

type Router struct {
	svc       *appgrants.Service
	log       *zap.Logger
	maxUpload int64
}

func NewRouter(opts Options) http.Handler {
	r := &Router{svc: opts.Service, log: opts.Logger, maxUpload: opts.MaxUploadBytes}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.maxUpload <= 0 {
		r.maxUpload = appgrants.DefaultMaxUploadBytes
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(r.log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Retry-After", persistedHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	analyze := mux.With()
	if opts.Limiter != nil {
		analyze = mux.With(middleware.RateLimit(opts.Limiter))
	}
	analyze.Post("/analyze", r.wrap(msgUnexpected, r.handleAnalyze))

	mux.Route("/history", func(rt chi.Router) {
		rt.Get("/", r.wrap(msgHistory, r.handleHistory))
		rt.Delete("/", r.wrap(msgDelete, r.handleDelete))
		rt.Get("/{id}", r.wrap(msgFetch, r.handleGet))
		rt.Patch("/{id}", r.wrap(msgUpdate, r.handleUpdateNotes))
		rt.Get("/{id}/text", r.wrap(msgFetch, r.handleExportText))
		rt.Get("/{id}/document", r.wrap(msgFetch, r.handleDocument))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap renders a handler error as {"error": "..."}; the raw error is only logged.
func (r *Router) wrap(fallback string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		e := classify(err, fallback, r.maxUpload)
		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", e.status),
			zap.Error(err),
		}
		if e.status >= http.StatusInternalServerError {
			r.log.Error("request failed", fields...)
		} else {
			r.log.Info("request rejected", fields...)
		}
		if e.retryAfter != "" {
			w.Header().Set("Retry-After", e.retryAfter)
		}
		writeJSON(w, e.status, map[string]string{"error": e.message})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

var success = map[string]bool{"success": true}

const persistedHeader = "X-Analysis-Persisted"

// POST /analyze (multipart, field "file")
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	upload, err := r.readUpload(w, req)
	if err != nil {
		return err
	}

	res, err := r.svc.Analyze(req.Context(), upload)
	var ue *grants.UploadError
	if errors.As(err, &ue) {
		return err
	}
	middleware.IncrementAnalysesStarted()
	if err != nil {
		middleware.IncrementAnalysesFailed()
		if errors.Is(err, ai.ErrRateLimited) {
			middleware.IncrementUpstreamRateLimited()
		}
		return err
	}
	middleware.IncrementAnalysesSucceeded()

	if !res.Persisted {
		middleware.IncrementPersistFailures()
		w.Header().Set(persistedHeader, "false")
	} else {
		w.Header().Set(persistedHeader, "true")
	}
	return writeJSON(w, http.StatusOK, res.Analysis)
}

// readUpload returns nil when the request carries no file part.
func (r *Router) readUpload(w http.ResponseWriter, req *http.Request) (*appgrants.UploadedFile, error) {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+multipartOverhead)
	if err := req.ParseMultipartForm(r.maxUpload + multipartOverhead); err != nil {
		if tooLarge(err) {
			return nil, &grants.UploadError{Reason: grants.UploadTooLarge}
		}
		return nil, nil
	}
	defer req.MultipartForm.RemoveAll()

	file, hdr, err := req.FormFile("file")
	if err != nil {
		return nil, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &appgrants.UploadedFile{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Data:        data,
	}, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// GET /history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.History(req.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*grants.GrantAnalysis{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// DELETE /history?id=<id>
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id := req.URL.Query().Get("id")
	if id == "" {
		return &badRequest{msgMissingID}
	}
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return &badRequest{msgInvalidID}
	}
	if err := r.svc.Delete(req.Context(), grants.AnalysisID(id)); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, success)
}

// pathID reads {id}; a malformed id can never exist, so it is reported as not found.
func pathID(req *http.Request) (grants.AnalysisID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return "", grants.ErrNotFound
	}
	return grants.AnalysisID(id), nil
}

// GET /history/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	a, err := r.svc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// PATCH /history/{id}
// Body: {"personalNotes": "..."}
func (r *Router) handleUpdateNotes(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(req.Body, 1<<20)).Decode(&body); err != nil {
		return &badRequest{msgMissingNotes}
	}
	raw, ok := body["personalNotes"]
	if !ok {
		return &badRequest{msgMissingNotes}
	}
	// null clears the notes
	var notes *string
	if err := json.Unmarshal(raw, &notes); err != nil {
		return &badRequest{msgInvalidNotes}
	}
	value := ""
	if notes != nil {
		value = *notes
	}
	if err := middleware.ValidateNotes(value); err != nil {
		return &badRequest{msgInvalidNotes}
	}

	if err := r.svc.UpdateNotes(req.Context(), id, value); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, success)
}

// GET /history/{id}/text
func (r *Router) handleExportText(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	txt, err := r.svc.ExportText(req.Context(), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err = io.WriteString(w, txt)
	return err
}

// GET /history/{id}/document
func (r *Router) handleDocument(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	rc, name, err := r.svc.Document(req.Context(), id)
	if err != nil {
		return err
	}
	defer rc.Close()

	w.Header().Set("Content-Type", appgrants.PDFContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	if _, err := io.Copy(w, rc); err != nil {
		// headers are gone; nothing left but logging
		r.log.Warn("document stream interrupted", zap.String("id", string(id)), zap.Error(err))
	}
	return nil
}
