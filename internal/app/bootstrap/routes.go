// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	authgithubfeature "github.com/dalemusser/langis/internal/app/features/authgithub"
	authgooglefeature "github.com/dalemusser/langis/internal/app/features/authgoogle"
	chatfeature "github.com/dalemusser/langis/internal/app/features/chat"
	coursesfeature "github.com/dalemusser/langis/internal/app/features/courses"
	errorsfeature "github.com/dalemusser/langis/internal/app/features/errors"
	healthfeature "github.com/dalemusser/langis/internal/app/features/health"
	homefeature "github.com/dalemusser/langis/internal/app/features/home"
	loginfeature "github.com/dalemusser/langis/internal/app/features/login"
	logoutfeature "github.com/dalemusser/langis/internal/app/features/logout"
	mycoursesfeature "github.com/dalemusser/langis/internal/app/features/mycourses"
	profilefeature "github.com/dalemusser/langis/internal/app/features/profile"
	registerfeature "github.com/dalemusser/langis/internal/app/features/register"
	secretfeature "github.com/dalemusser/langis/internal/app/features/secret"
	oauthstatestore "github.com/dalemusser/langis/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/langis/internal/app/store/users"
	"github.com/dalemusser/langis/internal/app/system/auth"
	"github.com/dalemusser/langis/internal/app/system/i18n"
	"github.com/dalemusser/langis/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. LangIS initializes the template engine,
// the session manager, the language codec, CSRF protection, and blob
// storage, then mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.LangISMongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Role changes and profile edits take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Language codec: signed cookie keyed off the session key, resolved
	// per request by viewdata.
	langCodec := i18n.NewCodec([]byte(appCfg.SessionKey))
	viewdata.Init(langCodec)

	// Blob storage for lesson attachments and profile photos.
	var store storage.Store
	switch appCfg.StorageType {
	case "s3":
		store, err = storage.NewS3(context.Background(), storage.S3Config{
			Region: appCfg.StorageS3Region,
			Bucket: appCfg.StorageS3Bucket,
			Prefix: appCfg.StorageS3Prefix,
		})
	default:
		store, err = storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
	}
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Persist ?lang= switches into the signed language cookie.
	r.Use(persistLang(langCodec))

	// CSRF protection on everything except the health endpoint.
	csrfMW := csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"))

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.LangISMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli).
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Locally stored uploads (photos, lesson files) when using local storage.
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	r.Group(func(r chi.Router) {
		r.Use(csrfMW)

		// Public pages
		homeHandler := homefeature.NewHandler(db, logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		// Authentication
		googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""
		githubEnabled := appCfg.GitHubClientID != "" && appCfg.GitHubClientSecret != ""

		loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, googleEnabled, githubEnabled, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		registerHandler := registerfeature.NewHandler(db, sessionMgr, errLog, logger)
		r.Mount("/register", registerfeature.Routes(registerHandler))

		stateStore := oauthstatestore.New(db)
		googleHandler := authgooglefeature.NewHandler(db, sessionMgr, stateStore,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

		githubHandler := authgithubfeature.NewHandler(db, sessionMgr, stateStore,
			appCfg.GitHubClientID, appCfg.GitHubClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/github", authgithubfeature.Routes(githubHandler))

		profileHandler := profilefeature.NewHandler(db, store, errLog, logger)
		r.Mount("/profile", profilefeature.Routes(profileHandler))

		// Logout drops the identity's cached resolution state along with
		// the session.
		logoutHandler := logoutfeature.NewHandler(sessionMgr, profileHandler.Profiles, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		// Courses: browsing, enrollment, ratings, lesson management.
		coursesHandler := coursesfeature.NewHandler(db, sessionMgr, store, errLog, logger)
		r.Mount("/courses", coursesfeature.Routes(coursesHandler))

		// Per-course group chat lives under the course URL.
		chatHandler := chatfeature.NewHandler(db, errLog, logger)
		r.Mount("/courses/{courseID}/chat", chatfeature.Routes(chatHandler))

		myCoursesHandler := mycoursesfeature.NewHandler(db, errLog, logger)
		r.Mount("/my-courses", mycoursesfeature.Routes(myCoursesHandler))

		// Overview page for any signed-in user.
		secretHandler := secretfeature.NewHandler(db, errLog, logger)
		r.Group(func(r chi.Router) {
			r.Use(sessionMgr.RequireSignedIn)
			r.Mount("/secret", secretfeature.Routes(secretHandler))
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			errorsHandler.NotFound(w, r)
		})
	})

	return r, nil
}

// persistLang writes the signed language cookie when the request carries
// a valid ?lang= switch.
func persistLang(codec *i18n.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			codec.Persist(w, r)
			next.ServeHTTP(w, r)
		})
	}
}
