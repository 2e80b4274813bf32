package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/store"
	"github.com/AngelCh415/signups-report/internal/utils"
)

// Reporter is the engine surface the router serves.
type Reporter interface {
	Refresh(ctx context.Context) (models.Dashboard, error)
	Companies(ctx context.Context) (models.CompanyTable, error)
	Signups(ctx context.Context) (models.SignupSeries, error)
	Counters(ctx context.Context) []models.Counter
	Ping(ctx context.Context) error
}

func NewRouter(log *slog.Logger, rep Reporter, gatherer prometheus.Gatherer) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := rep.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})

	mux.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		d, err := rep.Refresh(r.Context())
		if err != nil {
			storeError(w, log, err)
			return
		}
		writeJSON(w, d)
	})

	mux.Route("/report", func(rt chi.Router) {
		rt.Get("/companies", func(w http.ResponseWriter, r *http.Request) {
			t, err := rep.Companies(r.Context())
			if err != nil {
				storeError(w, log, err)
				return
			}
			q := r.URL.Query()
			limit, offset := clampLimitOffset(atoiDef(q.Get("limit"), 0), atoiDef(q.Get("offset"), 0), len(t.Rows))
			t.Rows = paginate(t.Rows, limit, offset)
			writeJSON(w, t)
		})
		rt.Get("/signups", func(w http.ResponseWriter, r *http.Request) {
			s, err := rep.Signups(r.Context())
			if err != nil {
				storeError(w, log, err)
				return
			}
			writeJSON(w, s)
		})
		rt.Get("/counters", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, rep.Counters(r.Context()))
		})
	})

	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

func storeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, store.ErrUnavailable) {
		code = http.StatusBadGateway
	}
	log.Error("report request failed", slog.Int("status", code), slog.String("err", err.Error()))
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
