package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Daskott/rolodex/server/auth"
	"github.com/Daskott/rolodex/server/auth/key"
	"github.com/Daskott/rolodex/server/cron"
	"github.com/Daskott/rolodex/server/gstorage"
	"github.com/Daskott/rolodex/server/logger"
	"github.com/Daskott/rolodex/server/mailer"
	"github.com/Daskott/rolodex/server/models"
	"github.com/Daskott/rolodex/shared"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
)

type RequestContextKey string

type DecodedJWT struct {
	Claims   *auth.RolodexTokenClaims
	ErrorMsg string
}

var (
	logg     = logger.NewLogger()
	validate = validator.New()

	authKeyPair *key.KeyPair
	mail        mailer.Mailer
)

func init() {
	fatalOnError(RegisterValidators(validate))
}

// Start brings up the rolodex server & blocks until it's signalled to stop
func Start(config *shared.ServerConfig, devMode bool) {
	var err error

	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(config.Rolodex.PrivateKeyPem)
	fatalOnError(err)

	rootDir := configDirectory(devMode)

	var gcs *gstorage.GStorage
	if config.Google.Storage.EnableSqliteBackupAndSync == true {
		gcs, err = gstorage.NewGStorage(
			config.Google.ApplicationCredentials,
			config.Google.Storage.Bucket,
			config.Google.Storage.Prefix,
		)
		fatalOnError(err)

		restoreDbBackup(gcs, rootDir)
	}

	fatalOnError(models.Initialize(config.Sqlite.PassPhrase, rootDir))

	mail = mailer.NewClient(config.Smtp)

	cronScheduler := cron.NewCronScheduler(config.Rolodex.Cron.TimeZone)
	if gcs != nil {
		scheduleDbBackup(cronScheduler, gcs, rootDir, config.Google.Storage.SqliteBackupSchedule)
	}
	cronScheduler.StartAsync()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", config.Rolodex.Listener.Port),
		Handler: NewRouter(),
	}

	go serve(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(cronScheduler, server, gcs, rootDir)
}

// NewRouter wires up every route & middleware for the API
func NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware, initialContextMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/.well-known/jwks.json", jwks).Methods("GET")
	router.HandleFunc("/login", logIn).Methods("POST")

	signUpRouter := router.PathPrefix("/users").Subrouter()
	signUpRouter.Use(adminRouteMiddleware)
	signUpRouter.HandleFunc("", createUser).Methods("POST")

	protectedRouter := router.PathPrefix("/users/{uid:[0-9]+}").Subrouter()
	protectedRouter.Use(protectedRouteMiddleware)
	protectedRouter.HandleFunc("", findUser).Methods("GET")
	protectedRouter.HandleFunc("", updateUser).Methods("PUT")
	protectedRouter.HandleFunc("", deleteUser).Methods("DELETE")

	protectedRouter.HandleFunc("/contacts", contactsIndex).Methods("GET")
	protectedRouter.HandleFunc("/contacts", createContact).Methods("POST")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}", findContact).Methods("GET")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}", updateContact).Methods("PUT")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}", deleteContact).Methods("DELETE")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}/email", emailContactForm).Methods("GET")
	protectedRouter.HandleFunc("/contacts/{id:[0-9]+}/email", emailContact).Methods("POST")

	protectedRouter.HandleFunc("/categories", categoriesIndex).Methods("GET")
	protectedRouter.HandleFunc("/categories", createCategory).Methods("POST")
	protectedRouter.HandleFunc("/categories/{id:[0-9]+}", findCategory).Methods("GET")
	protectedRouter.HandleFunc("/categories/{id:[0-9]+}", updateCategory).Methods("PUT")
	protectedRouter.HandleFunc("/categories/{id:[0-9]+}", deleteCategory).Methods("DELETE")
	protectedRouter.HandleFunc("/categories/{id:[0-9]+}/email", emailCategoryForm).Methods("GET")
	protectedRouter.HandleFunc("/categories/{id:[0-9]+}/email", emailCategory).Methods("POST")

	return router
}
