package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"journey-backend/internal/convert"
	"journey-backend/internal/examples"
	"journey-backend/internal/jobs"
	"journey-backend/internal/lawfirms"
	"journey-backend/internal/llm"
	openai "journey-backend/internal/llm/openai"
	"journey-backend/internal/llm/vertex"
	"journey-backend/internal/queue"
	"journey-backend/internal/services/health"
	"journey-backend/internal/shared/config"
	"journey-backend/internal/shared/server"
	"journey-backend/internal/shared/storage/db"
	"journey-backend/internal/shared/storage/object"
	gcsstore "journey-backend/internal/shared/storage/object/gcs"
	localstore "journey-backend/internal/shared/storage/object/local"
	s3store "journey-backend/internal/shared/storage/object/s3"
	"journey-backend/internal/uploads"
	"journey-backend/internal/workspaces"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Queue     queue.Client
	Firestore *firestore.Client
	LLM       llm.Client
	Presigner *uploads.Presigner

	WorkspacesService *workspaces.Service
	LawFirmsService   *lawfirms.Service
	ExamplesService   *examples.Service
	JobsService       *jobs.Service
	ConvertService    *convert.Service
	// JobProcessor lets tests swap job processing for the worker entry points.
	JobProcessor JobProcessor

	WorkspacesHandler *workspaces.Handler
	LawFirmsHandler   *lawfirms.Handler
	ExamplesHandler   *examples.Handler
	JobsHandler       *jobs.Handler
	ConvertHandler    *convert.Handler
	UploadsHandler    *uploads.Handler

	closers []io.Closer
}

// JobProcessor runs one job to a terminal state.
type JobProcessor interface {
	Process(ctx context.Context, jobID string) error
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	// The remote clients are independent, so they are dialled concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store, err := buildStore(gctx, cfg)
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		app.Store = store
		return nil
	})
	g.Go(func() error {
		q, err := buildQueue(gctx, cfg)
		if err != nil {
			return fmt.Errorf("queue: %w", err)
		}
		app.Queue = q
		return nil
	})
	g.Go(func() error {
		fs, err := buildFirestore(gctx, cfg)
		if err != nil {
			return fmt.Errorf("firestore: %w", err)
		}
		app.Firestore = fs
		return nil
	})
	g.Go(func() error {
		client, err := buildLLM(gctx, cfg)
		if err != nil {
			return fmt.Errorf("llm: %w", err)
		}
		app.LLM = client
		return nil
	})
	g.Go(func() error {
		if cfg.UploadsBucket == "" {
			return nil
		}
		p, err := uploads.NewPresigner(gctx, cfg.AWSRegion, cfg.UploadsBucket, cfg.UploadsPrefix)
		if err != nil {
			return fmt.Errorf("uploads presign: %w", err)
		}
		app.Presigner = p
		return nil
	})
	err = g.Wait()
	app.trackClosers()
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	if err := buildServices(app); err != nil {
		_ = app.Close()
		return nil, err
	}

	healthSvc := health.NewService()
	if app.DB != nil {
		healthSvc.RegisterPinger("database", app.DB)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Health:            healthSvc,
		Config:            app.Config,
		Membership:        app.WorkspacesService,
		WorkspacesHandler: app.WorkspacesHandler,
		LawFirmsHandler:   app.LawFirmsHandler,
		ExamplesHandler:   app.ExamplesHandler,
		JobsHandler:       app.JobsHandler,
		ConvertHandler:    app.ConvertHandler,
		UploadsHandler:    app.UploadsHandler,
	})

	return app, nil
}

// Close releases the remote clients held by the app.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) trackClosers() {
	if c, ok := a.Store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	if c, ok := a.LLM.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	if a.Firestore != nil {
		a.closers = append(a.closers, a.Firestore)
	}
	if a.DB != nil && !db.IsServerlessRuntime() {
		a.closers = append(a.closers, a.DB)
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsServerlessRuntime() {
		opts := db.OptionsFromEnv(db.DefaultServerlessOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "gcs":
		return gcsstore.New(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if cfg.JobsQueueURL == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.JobsQueueURL, cfg.AWSRegion)
}

func buildFirestore(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	if cfg.JobStore != "firestore" {
		return nil, nil
	}
	if strings.TrimSpace(cfg.GCPProjectID) == "" {
		return nil, fmt.Errorf("JOB_STORE=firestore requires GCP_PROJECT_ID")
	}
	return firestore.NewClient(ctx, cfg.GCPProjectID)
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: OPENAI_API_KEY empty; AI features disabled")
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "vertex":
		return vertex.NewClient(ctx, cfg.GCPProjectID, cfg.VertexRegion, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func buildServices(app *App) error {
	var (
		workspaceRepo workspaces.Repo
		lawFirmRepo   lawfirms.Repo
		exampleRepo   examples.Repo
		jobRepo       jobs.Repo
	)
	if app.DB != nil {
		workspaceRepo = &workspaces.PGRepo{DB: app.DB}
		lawFirmRepo = &lawfirms.PGRepo{DB: app.DB}
		exampleRepo = &examples.PGRepo{DB: app.DB}
		jobRepo = &jobs.PGRepo{DB: app.DB}
	} else {
		workspaceRepo = workspaces.NewMemoryRepo()
		lawFirmRepo = lawfirms.NewMemoryRepo()
		exampleRepo = examples.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
	}
	if app.Firestore != nil {
		jobRepo = jobs.NewFirestoreRepo(app.Firestore)
	}

	app.WorkspacesService = &workspaces.Service{Repo: workspaceRepo}
	app.LawFirmsService = &lawfirms.Service{Repo: lawFirmRepo}
	app.ExamplesService = &examples.Service{Repo: exampleRepo}
	app.JobsService = &jobs.Service{
		Repo:  jobRepo,
		Store: app.Store,
		LLM:   app.LLM,
		Queue: app.Queue,
	}
	app.JobProcessor = app.JobsService
	app.ConvertService = &convert.Service{LLM: app.LLM, Store: app.Store}

	app.WorkspacesHandler = workspaces.NewHandler(app.WorkspacesService)
	app.LawFirmsHandler = lawfirms.NewHandler(app.LawFirmsService)
	app.ExamplesHandler = examples.NewHandler(app.ExamplesService)
	app.JobsHandler = jobs.NewHandler(app.JobsService)
	app.ConvertHandler = convert.NewHandler(app.ConvertService)
	app.UploadsHandler = uploads.NewHandler(app.Store, app.Presigner)

	if app.JobsHandler == nil || app.WorkspacesHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
