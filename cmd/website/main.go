package main

import (
	"context"
	"embed"
	"encoding/gob"
	"log/slog"
	"net/http"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/email"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/mediacatalog/cmd/website/internal/api"
	"github.com/adampresley/mediacatalog/cmd/website/internal/auth"
	"github.com/adampresley/mediacatalog/cmd/website/internal/catalog"
	"github.com/adampresley/mediacatalog/cmd/website/internal/configuration"
	"github.com/adampresley/mediacatalog/cmd/website/internal/live"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
	"github.com/adampresley/mediacatalog/pkg/storage"
	"github.com/gin-gonic/gin"
)

var (
	Version string = "development"
	appName string = "mediacatalog"

	//go:embed app
	appFS embed.FS

	config configuration.Config

	/* Services */
	catalogService services.CatalogService
	cookieSession  sessions.Session[*models.SessionCookie]
	hasher         services.PasswordHasher
	mediaService   services.MediaService
	renderer       rendering.TemplateRenderer
	seedService    services.SeedServicer
	sessionService *services.SessionService
	stores         *storage.Stores
	userService    services.UserService

	/* Controllers */
	apiController     api.ApiController
	authController    auth.AuthController
	catalogController catalog.CatalogController
	liveController    live.LiveController
)

func main() {
	var (
		err      error
		s3Client s3.S3Client
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("storeDriver", config.StoreDriver),
		slog.String("sessionDriver", config.SessionDriver),
		slog.String("passwordMode", config.PasswordMode),
		slog.Duration("sessionTTL", config.SessionTTL),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup storage
	 */
	stores, err = storage.Open(storage.Config{
		StoreDriver:   config.StoreDriver,
		DSN:           config.DSN,
		CloverDir:     config.CloverDir,
		SessionDriver: config.SessionDriver,
		RedisAddr:     config.RedisAddr,
		RedisPassword: config.RedisPassword,
	})

	if err != nil {
		panic(err)
	}

	defer stores.Close()

	gob.Register(&models.SessionCookie{})

	cookieStore := sessions.NewCookieStore(
		config.CookieSecret,
		sessions.WithHttpOnly(true),
		sessions.WithSameSite(http.SameSiteLaxMode),
	)

	cookieSession = sessions.NewSessionWrapper[*models.SessionCookie](cookieStore, "mediacatalog", "session")

	if config.AwsBucket != "" {
		if s3Client, err = setupS3(); err != nil {
			panic(err)
		}
	}

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	/*
	 * Setup services
	 */
	if hasher, err = services.NewPasswordHasher(config.PasswordMode, config.BcryptCost); err != nil {
		panic(err)
	}

	userService = services.NewUserService(services.UserServiceConfig{
		Hasher: hasher,
		Store:  stores.Users,
	})

	sessionService = services.NewSessionService(services.SessionServiceConfig{
		Store: stores.Sessions,
		TTL:   config.SessionTTL,
	})

	mediaService = services.NewMediaService(services.MediaServiceConfig{
		Bucket:      config.AwsBucket,
		PhotoFolder: config.PhotoFolder,
		S3Client:    s3Client,
	})

	hub := live.NewHub(live.HubConfig{
		Access:         services.NewAccessService(),
		SessionService: sessionService,
	})
	go hub.Run(shutdownCtx)

	commentListeners := []services.CommentListener{hub}

	if config.EmailApiKey != "" {
		notificationService := services.NewNotificationService(services.NotificationServiceConfig{
			BaseURL:     config.BaseURL,
			FromEmail:   config.EmailFromAddress,
			FromName:    config.EmailFromName,
			MailService: email.NewResendService(&email.Config{ApiKey: config.EmailApiKey}),
			UserStore:   stores.Users,
		})

		defer notificationService.Stop()
		commentListeners = append(commentListeners, notificationService)
	}

	catalogService = services.NewCatalogService(services.CatalogServiceConfig{
		Access:           services.NewAccessService(),
		AlbumStore:       stores.Albums,
		CommentListeners: commentListeners,
		PhotoStore:       stores.Photos,
		UserStore:        stores.Users,
	})

	seedService = services.NewSeedService(services.SeedServiceConfig{
		AlbumStore:  stores.Albums,
		Hasher:      hasher,
		MaxWorkers:  config.SeedWorkers,
		PhotoStore:  stores.Photos,
		ShutdownCtx: shutdownCtx,
		UserStore:   stores.Users,
	})

	/*
	 * Setup controllers
	 */
	authController = auth.NewAuthController(auth.AuthControllerConfig{
		CookieSession:  cookieSession,
		Renderer:       renderer,
		SessionService: sessionService,
		UserService:    userService,
	})

	catalogController = catalog.NewCatalogController(catalog.CatalogControllerConfig{
		CatalogService: catalogService,
		MediaService:   mediaService,
		Renderer:       renderer,
	})

	liveController = live.NewLiveController(live.LiveControllerConfig{
		CatalogService: catalogService,
		Hub:            hub,
	})

	apiController = api.NewApiController(api.ApiControllerConfig{
		CatalogService: catalogService,
		SessionService: sessionService,
		UserService:    userService,
	})

	if Version != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	sessionMiddleware := newSessionMiddleware(
		cookieSession,
		sessionService,
		userService,
		[]string{
			"/static",
		},
	)

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /{$}", HandlerFunc: authController.LoginPage},
		{Path: "GET /login", HandlerFunc: authController.LoginPage},
		{Path: "POST /login", HandlerFunc: authController.LoginAction},
		{Path: "GET /register", HandlerFunc: authController.RegisterPage},
		{Path: "POST /register", HandlerFunc: authController.RegisterAction},
		{Path: "GET /logout", HandlerFunc: authController.LogoutAction},
		{Path: "GET /home", HandlerFunc: catalogController.HomePage, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "GET /album/{name}", HandlerFunc: catalogController.AlbumPage, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "GET /photo/{id}", HandlerFunc: catalogController.PhotoPage, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "GET /photo/{id}/edit", HandlerFunc: catalogController.EditPhotoPage, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "POST /photo/{id}/edit", HandlerFunc: catalogController.EditPhotoAction, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "POST /photo/{id}/tags", HandlerFunc: catalogController.AddTagAction, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "POST /photo/{id}/visibility", HandlerFunc: catalogController.ChangeVisibilityAction, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "POST /photo/{id}/comments", HandlerFunc: catalogController.AddCommentAction, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "GET /photo/{id}/live", HandlerFunc: liveController.CommentFeed, Middlewares: []mux.MiddlewareFunc{sessionMiddleware}},
		{Path: "/api/", Handler: api.NewRouter(apiController)},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the expired session sweep
	 */
	sessionService.StartCleanupRoutine(config.SessionSweepInterval)
	defer sessionService.StopCleanupRoutine()

	/*
	 * Import seed data, once or on a schedule
	 */
	if config.SeedDir != "" {
		setupSeedImporter(shutdownCtx)
	}

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func setupS3() (s3.S3Client, error) {
	var (
		err error
	)

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	err = retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return s3.NewClient(awsConfig)
}

func setupSeedImporter(ctx context.Context) {
	runner := func() {
		result, err := seedService.Import(config.SeedDir)

		if err != nil {
			slog.Error("seed import failed", "error", err, "dir", config.SeedDir)
			return
		}

		slog.Info("seed import finished.",
			"users", result.Users,
			"albums", result.Albums,
			"photos", result.Photos,
			"skipped", result.Skipped,
		)
	}

	runner()

	if config.SeedInterval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(config.SeedInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				runner()
			}
		}
	}()
}
