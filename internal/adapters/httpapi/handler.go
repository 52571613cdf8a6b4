// Package httpapi exposes the directory engine over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"orgdirectory/pkg/domain"
)

// Directory is the engine surface the handlers call.
type Directory interface {
	SearchPage(ctx context.Context, filter domain.OrganisationFilter, page domain.Page) ([]domain.OrganisationSummary, error)
	Detail(ctx context.Context, id int64) (domain.OrganisationDetail, error)
}

// Options configures the HTTP surface.
type Options struct {
	// APIVersion is the only accepted {version} path segment (default v1).
	APIVersion string
	// APIKey is compared with the X-AUTH-KEY header on organisation routes.
	APIKey string
	// MaxInFlight bounds concurrently served requests (default 450).
	MaxInFlight int
	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration
	Logger         *slog.Logger
	// MetricsPath and MetricsHandler mount an exporter such as promhttp.
	MetricsPath    string
	MetricsHandler http.Handler
	// Registerer receives HTTP request metrics when set.
	Registerer prometheus.Registerer
}

// APIKeyHeader carries the client credential.
const APIKeyHeader = "X-AUTH-KEY"

// Handler serves the directory routes.
type Handler struct {
	dir    Directory
	opts   Options
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler wires routes and middleware around dir.
func NewHandler(dir Directory, opts Options) (http.Handler, error) {
	if opts.APIVersion == "" {
		opts.APIVersion = "v1"
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 450
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	h := &Handler{dir: dir, opts: opts, logger: opts.Logger, mux: http.NewServeMux()}
	h.routes()

	var next http.Handler = h.mux
	gz, err := gzipMiddleware()
	if err != nil {
		return nil, err
	}
	next = gz(next)
	if opts.Registerer != nil {
		instrumented, err := instrument(opts.Registerer, next)
		if err != nil {
			return nil, err
		}
		next = instrumented
	}
	next = timeout(opts.RequestTimeout, next)
	next = limit(opts.MaxInFlight, next)
	next = cors(next)
	next = accessLog(h.logger, next)
	next = requestID(next)
	return next, nil
}

func (h *Handler) routes() {
	for _, suffix := range []string{"", "/{$}"} {
		h.mux.HandleFunc("GET /api/{version}/ping"+suffix, h.versioned(h.handlePing))
		h.mux.HandleFunc("GET /api/{version}/organisations"+suffix, h.versioned(h.authorized(h.handleList)))
		h.mux.HandleFunc("GET /api/{version}/organisations/{id}"+suffix, h.versioned(h.authorized(h.handleDetail)))
	}
	if h.opts.MetricsHandler != nil {
		path := h.opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		h.mux.Handle("GET "+path, h.opts.MetricsHandler)
	}
	h.mux.HandleFunc("/", h.fallback)
}

// fallback answers paths no route accepts. A path that a GET route would
// serve gets 405 so clients can tell a wrong method from a wrong URL.
func (h *Handler) fallback(w http.ResponseWriter, r *http.Request) {
	asGet := r.Clone(r.Context())
	asGet.Method = http.MethodGet
	if _, pattern := h.mux.Handler(asGet); pattern != "/" && pattern != "" {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method Not Allowed"})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
}

func (h *Handler) versioned(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("version") != h.opts.APIVersion {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
			return
		}
		next(w, r)
	}
}

func (h *Handler) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Not authenticated"})
			return
		}
		if key != h.opts.APIKey {
			writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (h *Handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, page, details := parseListQuery(r.URL.Query())
	if len(details) > 0 {
		writeValidation(w, details)
		return
	}
	rows, err := h.dir.SearchPage(r.Context(), filter, page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, detail, ok := parseID(r.PathValue("id"))
	if !ok {
		writeValidation(w, []FieldError{detail})
		return
	}
	org, err := h.dir.Detail(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}
