package main

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/JamieOgun/PixelPanel/analytics"
	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/JamieOgun/PixelPanel/billing"
	"github.com/JamieOgun/PixelPanel/comics"
	"github.com/JamieOgun/PixelPanel/config"
	"github.com/JamieOgun/PixelPanel/credits"
	"github.com/JamieOgun/PixelPanel/storage"
	"github.com/JamieOgun/PixelPanel/voiceover"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
	"go.uber.org/zap"
)

// App holds the wired application.
type App struct {
	cfg     *config.App
	logger  *zap.Logger
	client  *persistence.Client
	db      *bun.DB
	srv     router.Server[*fiber.App]
	auther  *auth.RouteAuthenticator
	repo    auth.RepositoryManager
	store   storage.ObjectStore
	credits *credits.Service
	sink    auth.ActivitySink
}

func NewApp(cfg *config.App, logger *zap.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

func (a *App) Log(name string) zapLogger {
	return newZapLogger(a.logger, name)
}

// userTrackerAdapter narrows the users repository to the tracker
// interface the identity provider wants.
type userTrackerAdapter struct {
	users auth.Users
}

func (ad userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return ad.users.GetByIdentifier(ctx, identifier)
}

func (ad userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	return ad.users.TrackAttemptedLogin(ctx, user)
}

func (ad userTrackerAdapter) TrackSucccessfulLogin(ctx context.Context, user *auth.User) error {
	return ad.users.TrackSucccessfulLogin(ctx, user)
}

// WithPersistence opens the database, registers models and migrations,
// and runs pending migrations.
func (a *App) WithPersistence(ctx context.Context) error {
	var db *sql.DB
	var err error
	var dialect schema.Dialect

	if a.cfg.Database.Driver == "sqlite" {
		db, err = sql.Open(sqliteshim.ShimName, a.cfg.Database.DSN)
		dialect = sqlitedialect.New()
	} else {
		db = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(a.cfg.Database.DSN)))
		dialect = pgdialect.New()
	}
	if err != nil {
		return err
	}

	persistence.RegisterModel((*auth.User)(nil))
	persistence.RegisterModel((*auth.EmailVerification)(nil))
	persistence.RegisterModel((*auth.PasswordReset)(nil))
	persistence.RegisterModel((*credits.UserProfile)(nil))
	persistence.RegisterModel((*comics.Comic)(nil))
	persistence.RegisterModel((*comics.ComicPanel)(nil))

	client, err := persistence.New(a.cfg.Database, db, dialect)
	if err != nil {
		return err
	}

	for _, source := range []struct {
		label string
		fsys  fs.FS
	}{
		{"auth", auth.GetMigrationsFS()},
		{"credits", credits.GetMigrationsFS()},
		{"comics", comics.GetMigrationsFS()},
	} {
		migrations, err := fs.Sub(source.fsys, "data/sql/migrations")
		if err != nil {
			return err
		}
		client.RegisterDialectMigrations(
			migrations,
			persistence.WithDialectSourceLabel(source.label),
			persistence.WithValidationTargets("postgres", "sqlite"),
		)
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	a.client = client
	a.db = client.DB()

	return nil
}

// WithAnalytics connects the optional ClickHouse activity sink. When
// ClickHouse is off, activity events go to the application log instead.
func (a *App) WithAnalytics(ctx context.Context) error {
	if !a.cfg.ClickHouse.Enabled {
		log := a.Log("activity")
		a.sink = auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
			log.Info("%s user=%s actor=%s", event.EventType, event.UserID, event.Actor.ID)
			return nil
		})
		return nil
	}

	conn, err := analytics.NewConn(analytics.Config{
		Addr:     a.cfg.ClickHouse.Addr,
		Database: a.cfg.ClickHouse.Database,
		Username: a.cfg.ClickHouse.Username,
		Password: a.cfg.ClickHouse.Password,
	})
	if err != nil {
		return err
	}

	sink := analytics.NewSink(conn).WithLogger(a.Log("analytics"))
	if err := sink.EnsureSchema(ctx); err != nil {
		return err
	}

	a.sink = sink
	return nil
}

// WithHTTPServer builds the fiber server with the django view engine
// and static serving for locally stored panels.
func (a *App) WithHTTPServer(ctx context.Context) error {
	engine := django.New("./views", ".html")
	engine.AddFuncMap(auth.TemplateHelpers())

	srv := router.NewFiberAdapter(func(app *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().Use(mflash.New(mflash.ConfigDefault))
	srv.Router().Static("/public", "./public")
	srv.Router().Static(a.cfg.Storage.BaseURL, a.cfg.Storage.Root)

	a.srv = srv
	return nil
}

// WithAuth wires the identity provider, token validation, and the
// signup/login/password-reset routes.
func (a *App) WithAuth(ctx context.Context) error {
	repo := auth.NewRepositoryManager(a.db)
	if err := repo.Validate(); err != nil {
		return err
	}
	a.repo = repo

	provider := auth.NewUserProvider(userTrackerAdapter{users: repo.Users()})
	provider.WithLogger(a.Log("auth:provider"))

	authenticator := auth.NewAuthenticator(provider, a.cfg.Auth)
	authenticator.WithLogger(a.Log("auth:authn"))

	auther, err := auth.NewHTTPAuthenticator(authenticator, a.cfg.Auth)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenService(
		[]byte(a.cfg.Auth.GetSigningKey()),
		a.cfg.Auth.GetTokenExpiration(),
		a.cfg.Auth.GetIssuer(),
		a.cfg.Auth.GetAudience(),
		a.Log("auth:tokens"),
	)
	var validator auth.TokenValidator = tokens
	if len(a.cfg.Auth.JWKSURLs) > 0 {
		jwks, err := auth.NewJWKSValidator(a.cfg.Auth.JWKSURLs...)
		if err != nil {
			return err
		}
		validator = auth.NewMultiTokenValidator(validator, jwks)
	}
	auther.WithTokenValidator(auth.MiddlewareValidator{Validator: validator})

	a.auther = auther

	creditsRepo := credits.NewRepositoryManager(a.db)
	a.credits = credits.NewService(creditsRepo).WithLogger(a.Log("credits"))

	auth.RegisterAuthRoutes(a.srv.Router().Group("/"),
		func(ac *auth.AuthController) *auth.AuthController {
			ac.Debug = a.cfg.Debug
			ac.Auther = auther
			ac.Repo = repo
			ac.Activity = a.sink
			ac.Profiles = a.credits
			ac.Logger = a.Log("auth:ctrl")
			return ac
		})

	return nil
}

// WithControllers mounts the comics, credits, voiceover, and billing
// APIs behind the authenticated route guard.
func (a *App) WithControllers(ctx context.Context) error {
	protected := a.auther.ProtectedRoute(
		a.cfg.Auth,
		a.auther.MakeClientRouteAuthErrorHandler(false),
	)

	store, err := storage.NewLocalStore(a.cfg.Storage.Root, a.cfg.Storage.BaseURL)
	if err != nil {
		return err
	}
	a.store = store

	r := a.srv.Router()

	creditsCtrl := credits.NewHTTPController(a.credits, a.cfg.Auth.GetContextKey())
	creditsCtrl.RegisterRoutes(r, protected)

	generator, err := comics.NewGeminiGenerator(ctx, a.cfg.Google.APIKey, a.cfg.Google.ImageModel)
	if err != nil {
		return err
	}

	comicsRepo := comics.NewRepositoryManager(a.db)
	comicsService := comics.NewService(comicsRepo, store).WithLogger(a.Log("comics"))

	comicsCtrl := comics.NewHTTPController(
		comicsService,
		generator,
		comics.NewContextTracker(),
		a.credits,
		comics.NewSaveComicHandler(comicsRepo, store).WithLogger(a.Log("comics:save")),
		comics.NewSavePanelHandler(comicsRepo, store).WithLogger(a.Log("comics:panel")),
		comics.WithContextKey(a.cfg.Auth.GetContextKey()),
		comics.WithControllerLogger(a.Log("comics:http")),
	)
	comicsCtrl.RegisterRoutes(r, protected)

	stories, err := voiceover.NewStoryGenerator(ctx, a.cfg.Google.APIKey, a.cfg.Google.StoryModel)
	if err != nil {
		return err
	}
	stories.WithLogger(a.Log("voiceover:story"))

	speech, err := voiceover.NewSpeechGenerator(ctx, a.cfg.Google.APIKey, a.cfg.Google.TTSModel, a.cfg.Google.TTSVoice)
	if err != nil {
		return err
	}
	speech.WithLogger(a.Log("voiceover:speech"))

	voiceCtrl := voiceover.NewHTTPController(stories, speech).WithLogger(a.Log("voiceover:http"))
	voiceCtrl.RegisterRoutes(r, protected)

	billingService := billing.NewService(
		a.cfg.Stripe.SecretKey,
		a.cfg.Stripe.WebhookSecret,
		a.credits,
	).WithLogger(a.Log("billing"))

	billingCtrl := billing.NewHTTPController(billingService, a.cfg.Auth.GetContextKey())
	billingCtrl.RegisterRoutes(r, protected)

	return nil
}
