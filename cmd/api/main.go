package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"findoc-pipeline/internal/adapter/ai"
	httpadp "findoc-pipeline/internal/adapter/http"
	"findoc-pipeline/internal/adapter/ingestion"
	mw "findoc-pipeline/internal/adapter/middleware"
	"findoc-pipeline/internal/adapter/notification"
	"findoc-pipeline/internal/adapter/repository/mysql"
	"findoc-pipeline/internal/config"
	"findoc-pipeline/internal/domain/aggregate"
	"findoc-pipeline/internal/domain/invaliddoc"
	"findoc-pipeline/internal/domain/ledger"
	"findoc-pipeline/internal/infrastructure/cache"
	"findoc-pipeline/internal/infrastructure/db"
	ucApproval "findoc-pipeline/internal/usecase/approval"
	ucReview "findoc-pipeline/internal/usecase/invalidreview"
	"findoc-pipeline/internal/usecase/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	dsn := cfg.MySQLDSN()
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	gdb, err := db.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&ledger.Entry{},
		&aggregate.Aggregate{},
		&aggregate.LineItem{},
		&invaliddoc.Record{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	ledgerRepo := mysql.NewLedgerRepository(gdb)
	aggRepo := mysql.NewAggregateRepository(gdb)
	invalidRepo := mysql.NewInvalidDocRepository(gdb)
	unitOfWork := mysql.NewGormUoW(gdb)

	extractor := ai.NewClient(ai.Config{
		Endpoint:         cfg.AIEndpoint,
		APIKey:           cfg.AIAPIKey,
		PromptTemplateID: cfg.AIPromptTemplate,
		Timeout:          time.Duration(cfg.AITimeoutSecs) * time.Second,
		MaxRetries:       cfg.AIMaxRetries,
		InitialBackoff:   time.Duration(cfg.AIBackoffMillis) * time.Millisecond,
	})
	notifier := notification.NewRedisNotifier(rdb, cfg.NotifyChannel, cfg.NotifyQueueKey)
	coordinator := pipeline.NewCoordinator(ledgerRepo, unitOfWork, extractor, notifier, pipeline.Config{
		LeaseTTL:     time.Duration(cfg.LeaseTTLSecs) * time.Second,
		WriteRetries: cfg.WriteRetries,
	})
	source := ingestion.NewRedisSource(rdb, cfg.IngestQueueKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		pipeline.RunWorkers(ctx, cfg.WorkerCount, source, coordinator)
	}()

	approvalUC := ucApproval.NewUsecase(aggRepo, unitOfWork)
	reviewUC := ucReview.NewUsecase(invalidRepo)

	h := httpadp.NewHandler()
	ah := httpadp.NewApprovalHandler(approvalUC)
	ih := httpadp.NewInvalidDocHandler(reviewUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	// routes
	e.GET("/health", h.Health)
	e.GET("/aggregates/:aggregate_id", ah.GetAggregate)
	e.GET("/invalid-documents", ih.ListInvalidDocuments)

	idemp := mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
	e.POST("/aggregates/:aggregate_id/approve", ah.ApproveAggregate, idemp)
	e.POST("/aggregates/:aggregate_id/reject", ah.RejectAggregate, idemp)
	e.POST("/invalid-documents/:record_id/review", ih.ReviewInvalidDocument, idemp)

	addr := ":" + cfg.AppPort
	go func() {
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workersDone
}
