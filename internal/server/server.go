package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"inciq/internal/queue"
	mid "inciq/internal/server/middleware"
	"inciq/internal/storage"
	"inciq/internal/util"
	"inciq/pkg/knowledge"
	"inciq/pkg/logger"
	"inciq/pkg/rank"
	"inciq/pkg/rank/remote"
	pgxstore "inciq/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	runMigrations()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.ImportQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	// JWKS is optional: without AUTH_URL, admin routes only accept the
	// master API key.
	var key *keyfunc.Keyfunc
	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	}

	var scorer rank.Scorer = rank.HeuristicScorer{}
	if scorerURL := util.GetEnv("SCORER_URL"); scorerURL != "" {
		remoteScorer, err := remote.NewScorer(remote.NewScorerParams{
			BaseURL: scorerURL,
			ApiKey:  util.GetEnv("SCORER_API_KEY"),
		})
		if err != nil {
			logger.Fatal("Invalid scorer URL", "err", err)
		}
		scorer = remoteScorer
	}
	scorerTimeout := time.Duration(util.GetEnvNumeric("SCORER_TIMEOUT_MS", 2000)) * time.Millisecond

	catalogStore := pgxstore.New(conn)
	if err := util.RetryErrWithContext(ctx, 5, catalogStore.Ping); err != nil {
		logger.Fatal("Database not reachable", "err", err)
	}

	graphs := knowledge.NewProvider(catalogStore)
	if util.GetEnvBool("GRAPH_WARMUP", false) {
		if _, err := graphs.Get(ctx); err != nil {
			logger.Warn("Graph warmup failed, serving without cached graph", "err", err)
		}
	}

	parsedMasterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)
	app := &mid.App{
		Store:          catalogStore,
		Graphs:         graphs,
		Scorer:         scorer,
		ScorerTimeout:  scorerTimeout,
		Queue:          ch,
		Key:            key,
		S3:             s3,
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterUserID:   parsedMasterUserID,
		MasterUserRole: util.GetEnv("MASTER_USER_ROLE"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("32M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations() {
	dir := util.GetEnvString("MIGRATIONS_DIR", "migrations")
	m, err := migrate.New("file://"+dir, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to open migrations", "err", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}
