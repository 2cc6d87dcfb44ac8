package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/offroadmga/club-manager-api/internal/adapters/httpapi"
	localidentity "github.com/offroadmga/club-manager-api/internal/adapters/identity/local"
	kveventrepo "github.com/offroadmga/club-manager-api/internal/adapters/kv/eventrepo"
	kvfinancerepo "github.com/offroadmga/club-manager-api/internal/adapters/kv/financerepo"
	kvgaragerepo "github.com/offroadmga/club-manager-api/internal/adapters/kv/garagerepo"
	kvmemberrepo "github.com/offroadmga/club-manager-api/internal/adapters/kv/memberrepo"
	memeventrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/eventrepo"
	memfinancerepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/financerepo"
	memgaragerepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/garagerepo"
	memkvstore "github.com/offroadmga/club-manager-api/internal/adapters/memory/kvstore"
	memmemberrepo "github.com/offroadmga/club-manager-api/internal/adapters/memory/memberrepo"
	"github.com/offroadmga/club-manager-api/internal/adapters/postgres"
	pgeventrepo "github.com/offroadmga/club-manager-api/internal/adapters/postgres/eventrepo"
	pgfinancerepo "github.com/offroadmga/club-manager-api/internal/adapters/postgres/financerepo"
	pggaragerepo "github.com/offroadmga/club-manager-api/internal/adapters/postgres/garagerepo"
	pgmemberrepo "github.com/offroadmga/club-manager-api/internal/adapters/postgres/memberrepo"
	sqlitekvstore "github.com/offroadmga/club-manager-api/internal/adapters/sqlite/kvstore"
	"github.com/offroadmga/club-manager-api/internal/app/events"
	"github.com/offroadmga/club-manager-api/internal/app/finance"
	"github.com/offroadmga/club-manager-api/internal/app/garage"
	"github.com/offroadmga/club-manager-api/internal/app/members"
	"github.com/offroadmga/club-manager-api/internal/app/session"
	platformclock "github.com/offroadmga/club-manager-api/internal/platform/clock"
	"github.com/offroadmga/club-manager-api/internal/platform/config"
	"github.com/offroadmga/club-manager-api/internal/platform/security"
	eventrepoport "github.com/offroadmga/club-manager-api/internal/ports/out/eventrepo"
	financerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
	garagerepoport "github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
	kvstoreport "github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
	memberrepoport "github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	clk := platformclock.NewSystemClock()

	var (
		memberRepo  memberrepoport.Repository
		eventRepo   eventrepoport.Repository
		financeRepo financerepoport.Repository
		garageRepo  garagerepoport.Repository
		kv          kvstoreport.Store
		cleanup     func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		if err := postgres.Migrate(context.Background(), pool); err != nil {
			log.Fatalf("postgres migrate: %v", err)
		}
		cleanup = pool.Close

		memberRepo = pgmemberrepo.NewRepo(pool)
		eventRepo = pgeventrepo.NewRepo(pool)
		financeRepo = pgfinancerepo.NewRepo(pool)
		garageRepo = pggaragerepo.NewRepo(pool)
		// Credential records and the session cache stay on a local kv
		// surface even with Postgres storage.
		kv = memkvstore.NewStore()
	case "sqlite":
		store, err := sqlitekvstore.NewStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite store: %v", err)
		}
		cleanup = func() { _ = store.Close() }

		kv = store
		memberRepo = kvmemberrepo.NewRepo(store)
		eventRepo = kveventrepo.NewRepo(store)
		financeRepo = kvfinancerepo.NewRepo(store)
		garageRepo = kvgaragerepo.NewRepo(store)
	default:
		kv = memkvstore.NewStore()
		memberRepo = memmemberrepo.NewRepo()
		eventRepo = memeventrepo.NewRepo()
		financeRepo = memfinancerepo.NewRepo()
		garageRepo = memgaragerepo.NewRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	ttl, _ := cfg.ParseTokenTTL()
	initTimeout, _ := cfg.ParseSessionInitTimeout()

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider([]byte(cfg.TokenSecret), cfg.TokenIssuer, ttl)
	provider := localidentity.NewProvider(kv, hasher, tokens, clk)

	memberSvc := members.NewService(memberRepo, eventRepo, financeRepo, garageRepo, clk)
	eventSvc := events.NewService(eventRepo)
	financeSvc := finance.NewService(financeRepo, memberRepo)
	garageSvc := garage.NewService(garageRepo, memberRepo)

	coord := session.NewCoordinator(provider, memberSvc, kv, log.Default())
	coord.SetInitTimeout(initTimeout)
	coord.Start(context.Background())
	defer coord.Stop()

	api := httpapi.NewServer(coord, memberSvc, eventSvc, financeSvc, garageSvc, log.Default())
	handler := httpapi.NewRouter(api, provider)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("api listening on %s (storage=%s)", cfg.HTTPAddr, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
