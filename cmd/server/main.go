// main wires configuration, stores, services, and the HTTP server, and keeps
// the process lifecycle small. Business logic lives under internal/.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dropforge/internal/activity"
	"dropforge/internal/allowlist"
	"dropforge/internal/bank"
	"dropforge/internal/creator"
	"dropforge/internal/drop"
	"dropforge/internal/ledger"
	"dropforge/internal/mint"
	"dropforge/internal/platform/chain"
	"dropforge/internal/platform/config"
	"dropforge/internal/platform/httpserver"
	"dropforge/internal/platform/kafka"
	"dropforge/internal/platform/locks"
	"dropforge/internal/platform/logger"
	"dropforge/internal/platform/metrics"
	"dropforge/internal/system"
	httptransport "dropforge/internal/transport/http"
	"dropforge/internal/transport/http/middleware"
	"dropforge/pkg/domain"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	heights := chain.NewCounter(1)

	// Stores: postgres/redis when configured, in-memory otherwise so the
	// service runs standalone in development.
	var (
		creatorStore creator.Store
		dropStore    drop.Store
		ledgerStore  ledger.Store
		outboxStore  activity.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		for _, schema := range []string{creator.SchemaCreators, drop.SchemaDrops, ledger.SchemaProceeds, activity.Schema} {
			if _, err := db.ExecContext(ctx, schema); err != nil {
				log.Error("failed to apply schema", "error", err)
				os.Exit(1)
			}
		}
		creatorStore = creator.NewPostgres(db, cfg.MaxCreators)
		dropStore = drop.NewPostgres(db, cfg.MaxDrops)
		ledgerStore = ledger.NewPostgres(db)
		outboxStore = activity.NewPostgres(db)
	} else {
		creatorStore = creator.NewInMemory(cfg.MaxCreators)
		dropStore = drop.NewInMemory(cfg.MaxDrops)
		ledgerStore = ledger.NewInMemory()
		outboxStore = activity.NewInMemoryStore()
	}

	var mintStore mint.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		mintStore = mint.NewRedis(client)
	} else {
		mintStore = mint.NewInMemory()
	}

	publisher := activity.NewPublisher(outboxStore, log)
	sys := system.New(system.Roles{
		Admin:        cfg.Admin,
		Keeper:       cfg.Keeper,
		Treasury:     cfg.Treasury,
		FeeRecipient: cfg.FeeRecipient,
	}, log)
	bankSvc := bank.NewService()
	dropLock := locks.NewKeyed[domain.DropID]()
	verifier := allowlist.NewVerifier(cfg.NetworkID, cfg.DeploymentSeed, cfg.MaxProofLength)

	creatorSvc := creator.NewService(creatorStore, heights, publisher, log, creator.WithMetrics(m))
	dropSvc := drop.NewService(dropStore, creatorSvc, heights, dropLock, publisher, log, drop.Config{
		Keeper:        cfg.Keeper,
		FeeBpsCeiling: cfg.FeeBpsCeiling,
		PhaseCapacity: cfg.MaxPhasesPerDrop,
	}, drop.WithMetrics(m))
	ledgerSvc := ledger.NewService(ledgerStore, dropSvc, creatorSvc, sys, bankSvc, heights, dropLock, publisher, log, ledger.WithMetrics(m))
	engine := mint.NewEngine(mintStore, dropStore, creatorSvc, ledgerSvc, verifier, sys, bankSvc, heights, dropLock, publisher, log, mint.WithMetrics(m))

	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)
	router := httptransport.NewRouter(log, validator,
		httptransport.NewCreatorHandler(creatorSvc, dropSvc, sys, log),
		httptransport.NewDropHandler(dropSvc, log),
		httptransport.NewMintHandler(engine, log),
		httptransport.NewProceedsHandler(ledgerSvc, log),
		httptransport.NewAdminHandler(sys, heights, bankSvc, publisher, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.KafkaBrokers != "" {
		producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.ActivityTopic)
		if err != nil {
			log.Error("failed to connect kafka", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := activity.NewWorker(outboxStore, producer, log, m)
		group.Go(func() error {
			err := worker.Run(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	group.Go(func() error {
		log.Info("starting dropforge", "addr", cfg.Addr, "network", cfg.NetworkID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
