package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/accounts"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/reports"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/vouchers"
	"github.com/ledgerdesk/ledgerdesk/internal/auth"
	"github.com/ledgerdesk/ledgerdesk/internal/masterdata/brands"
	"github.com/ledgerdesk/ledgerdesk/internal/masterdata/categories"
	"github.com/ledgerdesk/ledgerdesk/internal/observability"
	"github.com/ledgerdesk/ledgerdesk/internal/users"
	"github.com/ledgerdesk/ledgerdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Tokens            *auth.TokenIssuer
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	CategoriesHandler *categories.Handler
	BrandsHandler     *brands.Handler
	GroupsHandler     *groups.Handler
	AccountsHandler   *accounts.Handler
	VouchersHandler   *vouchers.Handler
	LedgerHandler     *ledger.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with ledgerdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(params.Tokens))

		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/brands", params.BrandsHandler.MountRoutes)
		r.Route("/account-groups", func(r chi.Router) {
			r.Get("/tree", params.ReportsHandler.Tree)
			params.GroupsHandler.MountRoutes(r)
		})
		r.Route("/accounts", params.AccountsHandler.MountRoutes)
		r.Route("/vouchers", params.VouchersHandler.MountRoutes)
		r.Route("/ledger", params.LedgerHandler.MountRoutes)
	})

	return r
}
