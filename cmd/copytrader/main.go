package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoPolymarket/polycopy/internal/config"
	"github.com/GoPolymarket/polycopy/internal/executor"
	"github.com/GoPolymarket/polycopy/internal/feed"
	"github.com/GoPolymarket/polycopy/internal/handler"
	"github.com/GoPolymarket/polycopy/internal/pkg/logger"
	"github.com/GoPolymarket/polycopy/internal/repository"
	"github.com/GoPolymarket/polycopy/internal/service"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	sizingCfg, err := cfg.SizingConfig()
	if err != nil {
		log.Fatalf("Invalid sizing configuration: %v", err)
	}
	tracked := cfg.TrackedWallets()

	// 2. Initialize Persistence
	// Usage counters (Redis > Memory)
	var usageRepo service.UsageRepo
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			logger.Info("Connected to Redis")
			usageRepo = redisClient
		} else {
			logger.Error("Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if usageRepo == nil {
		usageRepo = service.NewMemoryUsage()
	}

	// Trade journal (Postgres, optional)
	var journalRepo *repository.JournalRepo
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg.Database.DSN)
		if err == nil {
			logger.Info("Connected to PostgreSQL")
			journalRepo = repository.NewJournalRepo(db)
		} else {
			logger.Error("Failed to connect to DB, journal disabled", "error", err)
		}
	}

	// 3. Initialize Core Services
	chainSvc, err := service.NewChainService(cfg.Chain.RPCURL, cfg.Chain.USDCContract)
	if err != nil {
		log.Fatalf("Failed to initialize chain service: %v", err)
	}
	positionsSvc := service.NewPositionsClient(
		cfg.Account.DataApiURL, cfg.RequestTimeout(), cfg.HTTP.RetryLimit, cfg.HTTP.RateLimitRPS)
	orderSvc, err := service.NewOrderService(
		cfg.Account.PrivateKey, cfg.Account.ProxyWallet,
		auth.APIKey{
			Key:        cfg.Account.ApiKey,
			Secret:     cfg.Account.ApiSecret,
			Passphrase: cfg.Account.ApiPassphrase,
		},
		cfg.RequestTimeout())
	if err != nil {
		log.Fatalf("Failed to initialize order service: %v", err)
	}

	// 4. Startup System Check
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	systemCheck(startupCtx, cfg, chainSvc, orderSvc)
	service.LogSnapshot(startupCtx, positionsSvc, append(tracked, cfg.Account.ProxyWallet))
	cancelStartup()

	// 5. Start Feed and Executor
	monitor := feed.NewMonitor(feed.Options{
		URL:            cfg.Account.RtdsURL,
		TrackedWallets: tracked,
		BaseDelay:      cfg.ReconnectBaseDelay(),
		MaxAttempts:    cfg.Feed.MaxReconnectAttempts,
		Capacity:       cfg.Feed.ChannelCapacity,
	})

	exec := executor.New(executor.Options{
		Sizing:      sizingCfg,
		ProxyWallet: cfg.Account.ProxyWallet,
		MaxEventAge: cfg.MaxEventAge(),
		Ledger:      executor.NewLedger(cfg.Feed.DedupCapacity),
		Positions:   positionsSvc,
		Balance:     chainSvc,
		Orders:      orderSvc,
		Usage:       usageRepo,
		Journal:     journalOrNil(journalRepo),
	})

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	monitor.Start()
	execDone := make(chan struct{})
	go func() {
		exec.Run(runCtx, monitor.Events())
		close(execDone)
	}()

	// 6. Setup Router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	statusHandler := handler.NewStatusHandler(monitor, exec, journalRepo, tracked, string(sizingCfg.Strategy))
	r.GET("/health", statusHandler.Health)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	v1 := r.Group("/v1")
	{
		v1.GET("/status", statusHandler.Status)
		v1.GET("/decisions", statusHandler.Decisions)
		v1.GET("/journal", statusHandler.JournalList)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		logger.Info("Copy trader started",
			"port", cfg.Server.Port,
			"tracked", len(tracked),
			"strategy", sizingCfg.Strategy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	// 7. Wait for Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	feedDead := false
	select {
	case <-quit:
		logger.Info("Shutting down...")
	case err := <-monitor.Fatal():
		// The feed gave up permanently; shut down cleanly so a supervisor
		// restarts the process with a fresh attempt budget.
		logger.Error("Feed permanently stopped", "error", err)
		feedDead = true
	}

	monitor.Stop()
	cancelRun()
	select {
	case <-execDone:
	case <-time.After(5 * time.Second):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	chainSvc.Close()

	if feedDead {
		os.Exit(1)
	}
	logger.Info("Copy trader exiting")
}

// systemCheck verifies chain connectivity and selects the order signature
// type. Failures degrade with warnings; trading then relies on per-event
// lookups succeeding later.
func systemCheck(ctx context.Context, cfg *config.Config, chain *service.ChainService, orders *service.OrderService) {
	balance, err := chain.USDCBalance(ctx, cfg.Account.ProxyWallet)
	if err != nil {
		logger.Warn("Startup balance check failed", "error", err)
	} else {
		logger.Info("Account funded", "wallet", cfg.Account.ProxyWallet, "usdc", balance.StringFixed(2))
	}

	isContract, err := chain.IsContract(ctx, cfg.Account.ProxyWallet)
	if err != nil {
		logger.Warn("Wallet type detection failed, assuming EOA", "error", err)
		return
	}
	if isContract {
		orders.UseSafeSignature()
		logger.Info("Proxy wallet is a contract, using Safe signatures",
			"wallet", cfg.Account.ProxyWallet, "signer", orders.SignerAddress().Hex())
	} else {
		logger.Info("Proxy wallet is an EOA", "wallet", cfg.Account.ProxyWallet)
	}
}

// journalOrNil avoids a typed-nil interface when the database is absent.
func journalOrNil(repo *repository.JournalRepo) executor.Journal {
	if repo == nil {
		return nil
	}
	return repo
}
