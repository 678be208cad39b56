package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"scanid.app/internal/access"
	"scanid.app/internal/audit"
	"scanid.app/internal/companies"
	"scanid.app/internal/config"
	"scanid.app/internal/delegates"
	"scanid.app/internal/httpapi"
	"scanid.app/internal/obs"
	"scanid.app/internal/pagination"
	"scanid.app/internal/store/pg"
	"scanid.app/internal/stream"
	"scanid.app/internal/superadmin"
	"scanid.app/internal/tags"
	"scanid.app/internal/users"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	deps, cleanup, err := buildDeps(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer cleanup()

	api := httpapi.New(deps)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Long for the sake of the SSE audit feed.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("starting scanid-admin %s on %s", version, cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Println("stopped")
}

// buildDeps wires services against Postgres when a DSN is configured, and
// against in-memory stores otherwise. The in-memory mode exists for local
// development and loses all state on restart.
func buildDeps(cfg config.Config) (httpapi.Deps, func(), error) {
	cleanup := func() {}

	var (
		userStore     users.Store
		companyStore  companies.Store
		tagStore      tags.Store
		delegateStore delegates.Store
		auditStore    audit.Store
		directory     access.DirectoryStore
		metricsStore  superadmin.Store
		ready         httpapi.ReadyProbe
	)

	if cfg.PostgresDSN != "" {
		db, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			return httpapi.Deps{}, cleanup, fmt.Errorf("open postgres: %w", err)
		}
		cleanup = func() { _ = db.Close() }

		userStore = pg.NewUserStore(db)
		companyStore = pg.NewCompanyStore(db)
		tagStore = pg.NewTagStore(db)
		delegateStore = pg.NewDelegateStore(db)
		auditStore = pg.NewAuditStore(db)
		dir := pg.NewDirectory(db)
		directory = dir
		metricsStore = dir
		ready = httpapi.ReadyProbe{DB: db.DB()}
	} else {
		log.Println("no SCANID_PG_DSN set, using in-memory stores")
		mem := users.NewInMemory()
		userStore = mem
		companyStore = companies.NewInMemory()
		tagStore = tags.NewInMemory()
		delegateStore = delegates.NewInMemory()
		auditStore = audit.NewInMemory()
		directory = &userDirectory{store: mem}
	}

	userSvc, err := users.NewService(userStore)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	companySvc, err := companies.NewService(companyStore)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	tagSvc, err := tags.NewService(tagStore)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	delegateSvc, err := delegates.NewService(delegateStore)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	if metricsStore == nil {
		metricsStore = &serviceSnapshot{
			users:     userSvc,
			companies: companySvc,
			tags:      tagSvc,
			delegates: delegateSvc,
		}
	}

	st := stream.New()
	recorder, err := audit.NewRecorder(auditStore, st)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}
	resolver, err := access.NewResolver(directory)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}

	var dashboardOpts []superadmin.Option
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		dashboardOpts = append(dashboardOpts,
			superadmin.WithCache(superadmin.NewRedisCache(client), cfg.DashboardTTL))
	}
	dashboard, err := superadmin.NewService(metricsStore, dashboardOpts...)
	if err != nil {
		return httpapi.Deps{}, cleanup, err
	}

	return httpapi.Deps{
		Ready:       ready,
		Version:     version,
		Users:       userSvc,
		Companies:   companySvc,
		Tags:        tagSvc,
		Delegates:   delegateSvc,
		Audit:       recorder,
		Dashboard:   dashboard,
		Resolver:    resolver,
		Stream:      st,
		TokenTTL:    cfg.TokenTTL,
		CORSOrigins: cfg.CORSOrigins,
		RateBurst:   cfg.RateLimitBurst,
		RatePerSec:  cfg.RateLimitRPS,
	}, cleanup, nil
}

// userDirectory adapts the in-memory user store to the access resolver.
type userDirectory struct {
	store *users.InMemory
}

func (d *userDirectory) Subject(ctx context.Context, userID string) (access.Subject, error) {
	u, err := d.store.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return access.Subject{}, fmt.Errorf("%w: user %s", access.ErrNotFound, userID)
		}
		return access.Subject{}, err
	}
	return access.Subject{
		UserID:          u.ID,
		Role:            u.Role,
		CompanyID:       u.CompanyID,
		SystemEditionID: u.SystemEditionID,
		Status:          u.Status,
	}, nil
}

// serviceSnapshot derives dashboard totals through the service layer, for
// the in-memory mode where no aggregate query exists.
type serviceSnapshot struct {
	users     *users.Service
	companies *companies.Service
	tags      *tags.Service
	delegates *delegates.Service
}

func (s *serviceSnapshot) Snapshot(ctx context.Context) (superadmin.Metrics, error) {
	one := pagination.Filter{Page: 1, Limit: 1}
	var m superadmin.Metrics

	var total int
	var err error
	if _, total, err = s.users.List(ctx, users.ListQuery{Filter: one}); err != nil {
		return superadmin.Metrics{}, err
	}
	m.TotalUsers = total
	// The in-memory mode has no status index; treat all users as active.
	m.ActiveUsers = total
	if _, total, err = s.companies.List(ctx, companies.ListQuery{Filter: one}); err != nil {
		return superadmin.Metrics{}, err
	}
	m.TotalCompanies = total
	if _, total, err = s.tags.List(ctx, tags.ListQuery{IncludeInactive: true, Filter: one}); err != nil {
		return superadmin.Metrics{}, err
	}
	m.TotalTags = total
	if _, total, err = s.delegates.List(ctx, delegates.ListQuery{Status: delegates.StatusPending, Filter: one}); err != nil {
		return superadmin.Metrics{}, err
	}
	m.PendingDelegateInvites = total
	return m, nil
}
