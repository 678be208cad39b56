// Package httpapi is the HTTP layer: routing, authentication, role gating
// and the JSON response envelope.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"scanid.app/internal/access"
	"scanid.app/internal/audit"
	"scanid.app/internal/companies"
	"scanid.app/internal/delegates"
	"scanid.app/internal/obs"
	"scanid.app/internal/stream"
	"scanid.app/internal/superadmin"
	"scanid.app/internal/tags"
	"scanid.app/internal/users"
)

const serviceName = "scanid-admin"

// ReadyProbe reports readiness, pinging the database when one is attached.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries everything the API serves.
type Deps struct {
	Ready     ReadyProbe
	Version   string
	Users     *users.Service
	Companies *companies.Service
	Tags      *tags.Service
	Delegates *delegates.Service
	Audit     *audit.Recorder
	Dashboard *superadmin.Service
	Resolver  *access.Resolver
	Stream    *stream.Stream

	TokenTTL    time.Duration
	CORSOrigins []string
	RateBurst   int
	RatePerSec  float64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	users     *users.Service
	companies *companies.Service
	tags      *tags.Service
	delegates *delegates.Service
	recorder  *audit.Recorder
	dashboard *superadmin.Service
	resolver  *access.Resolver
	stream    *stream.Stream

	tokenTTL    time.Duration
	corsOrigins []string
	rateBurst   int
	ratePerSec  float64
}

func New(d Deps) *API {
	a := &API{
		mux:         http.NewServeMux(),
		readyProbe:  d.Ready,
		version:     d.Version,
		users:       d.Users,
		companies:   d.Companies,
		tags:        d.Tags,
		delegates:   d.Delegates,
		recorder:    d.Audit,
		dashboard:   d.Dashboard,
		resolver:    d.Resolver,
		stream:      d.Stream,
		tokenTTL:    d.TokenTTL,
		corsOrigins: d.CORSOrigins,
		rateBurst:   d.RateBurst,
		ratePerSec:  d.RatePerSec,
	}
	if a.tokenTTL <= 0 {
		a.tokenTTL = 24 * time.Hour
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 100
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 50
	}

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReadyz)
	a.mux.HandleFunc("/v1/info", a.handleInfo)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	a.mux.HandleFunc("/v1/companies", a.handleCompaniesCollection)
	a.mux.HandleFunc("/v1/companies/", a.handleCompanyResource)

	a.mux.HandleFunc("/v1/tags", a.handleTagsCollection)
	a.mux.HandleFunc("/v1/tags/", a.handleTagResource)

	a.mux.HandleFunc("/v1/delegate-access", a.handleDelegatesCollection)
	a.mux.HandleFunc("/v1/delegate-access/", a.handleDelegateResource)

	a.mux.HandleFunc("/v1/audit-logs", a.handleAuditLogs)

	a.mux.HandleFunc("/v1/super-admin/dashboard-metrics", a.handleDashboardMetrics)
	a.mux.HandleFunc("/v1/super-admin/audit-feed", a.handleAuditFeed)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h, a.corsOrigins)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// record writes an audit entry for a mutation. Audit failures are logged by
// the recorder and never fail the request.
func (a *API) record(r *http.Request, pc access.PermissionContext, action, module, description string, entry audit.Entry) {
	if a.recorder == nil {
		return
	}
	entry.Action = action
	entry.Module = module
	entry.Description = description
	entry.UserID = pc.UserID
	if entry.SystemEditionID == "" {
		entry.SystemEditionID = pc.SystemEditionID
	}
	entry.IPAddress = clientIP(r)
	entry.UserAgent = r.UserAgent()
	_ = a.recorder.Record(r.Context(), entry)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "not ready: "+err.Error())
		return
	}
	writeData(w, r, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
