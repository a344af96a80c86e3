package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/contactspro/server/ingest"
	"github.com/Daskott/contactspro/server/logger"
	"github.com/Daskott/contactspro/server/models"
	"github.com/Daskott/contactspro/server/validation"
	"github.com/Daskott/contactspro/server/work"
	"github.com/Daskott/contactspro/shared"
	"github.com/Daskott/contactspro/version"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/viper"
)

var (
	logg      = logger.NewLogger()
	startedAt = time.Now()
)

func Start(configValues *viper.Viper, devMode bool) {
	config, err := LoadConfig(configValues)
	fatalOnError(err)

	configDir := configDirectory(devMode)

	var backup *sqliteBackup
	if config.Google.Storage.EnableSqliteBackupAndSync {
		backup, err = newSqliteBackup(context.Background(), config.Google, configDir)
		fatalOnError(err)
		defer backup.close()

		fatalOnError(backup.restore(context.Background()))
	}

	fatalOnError(models.AutoMigrate(config.Sqlite, configDir))

	workerPool := work.NewWorkerAdapter(config.ContactsPro.Cron.TimeZone)
	fatalOnError(registerJobHandlers(workerPool, backup))
	fatalOnError(enqueueJobs(workerPool, config))
	workerPool.Start()

	// Clear references left behind by an interrupted group delete
	fatalOnError(workerPool.Perform(REPAIR_GROUP_REFERENCES_JOB))

	ingestor := ingest.NewIngestor(models.DBContactStore{}, config.ContactsPro.Ingest.Concurrency)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", config.ContactsPro.Listener.Port),
		Handler:           withCors(NewRouter(ingestor), config.ContactsPro.Cors),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go serve(server)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logg.Info("Shutting down ContactsPro server...")
	cleanup(workerPool, server, backup != nil)
}

// LoadConfig decodes & validates the server config
func LoadConfig(configValues *viper.Viper) (*shared.ServerConfig, error) {
	config := shared.ServerConfig{}

	if err := configValues.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unable to decode server config")
	}

	if err := validation.Validator().Struct(config); err != nil {
		return nil, errors.Wrap(err, "invalid server config")
	}

	return &config, nil
}

// OpenStore migrates & opens the contact store the server would use, for
// commands that work on contacts without starting the server
func OpenStore(configValues *viper.Viper, devMode bool) (*shared.ServerConfig, error) {
	config, err := LoadConfig(configValues)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(config.Sqlite, configDirectory(devMode)); err != nil {
		return nil, err
	}

	return config, nil
}

func NewRouter(ingestor *ingest.Ingestor) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(routeNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	router.Use(requestIDMiddleware, loggingMiddleware, initialContextMiddleware)

	router.HandleFunc("/", apiInfo).Methods(http.MethodGet)
	router.HandleFunc("/health", health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	contactsRouter := api.PathPrefix("/contacts").Subrouter()
	contactsRouter.HandleFunc("", listContacts).Methods(http.MethodGet)
	contactsRouter.HandleFunc("", createContact).Methods(http.MethodPost)
	contactsRouter.HandleFunc("/bulk", bulkDeleteContacts).Methods(http.MethodDelete)
	contactsRouter.HandleFunc("/bulk-delete", bulkDeleteContacts).Methods(http.MethodPost)
	contactsRouter.HandleFunc("/bulk/favorite", bulkFavoriteContacts).Methods(http.MethodPatch)
	contactsRouter.HandleFunc("/bulk-assign-group", bulkAssignGroup).Methods(http.MethodPost)
	contactsRouter.HandleFunc("/bulk-upload", bulkUpload(ingestor)).Methods(http.MethodPost)
	contactsRouter.HandleFunc("/bulk-upload/csv", bulkUploadCSV(ingestor)).Methods(http.MethodPost)
	contactsRouter.HandleFunc("/template.csv", downloadTemplate).Methods(http.MethodGet)
	contactsRouter.HandleFunc("/export/csv", exportContacts).Methods(http.MethodGet)
	contactsRouter.HandleFunc("/{id:[0-9]+}", findContact).Methods(http.MethodGet)
	contactsRouter.HandleFunc("/{id:[0-9]+}", updateContact).Methods(http.MethodPut)
	contactsRouter.HandleFunc("/{id:[0-9]+}", deleteContact).Methods(http.MethodDelete)
	contactsRouter.HandleFunc("/{id:[0-9]+}/favorite", toggleFavorite).Methods(http.MethodPatch)

	groupsRouter := api.PathPrefix("/groups").Subrouter()
	groupsRouter.HandleFunc("", listGroups).Methods(http.MethodGet)
	groupsRouter.HandleFunc("", createGroup).Methods(http.MethodPost)
	groupsRouter.HandleFunc("/{id:[0-9]+}", updateGroup).Methods(http.MethodPut)
	groupsRouter.HandleFunc("/{id:[0-9]+}", deleteGroup).Methods(http.MethodDelete)

	return router
}

func withCors(handler http.Handler, config shared.CorsConfig) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", REQUEST_ID_HEADER},
		ExposedHeaders: []string{REQUEST_ID_HEADER, "Content-Disposition"},
	}).Handler(handler)
}

func apiInfo(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, map[string]interface{}{
		"status":  "ok",
		"message": "ContactsPro API is running",
		"version": version.Version,
	}, http.StatusOK)
}

func health(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	if err := models.Ping(ctx); err != nil {
		logg.Warnf("health check: %v", err)
		database = "disconnected"
	}

	writeResponse(rw, map[string]interface{}{
		"status":    "ok",
		"database":  database,
		"uptime":    time.Since(startedAt).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func routeNotFound(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	writeMessage(rw, "Route not found", http.StatusNotFound)
}

func methodNotAllowed(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	writeMessage(rw, "Method not allowed", http.StatusMethodNotAllowed)
}
