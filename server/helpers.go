package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/contactspro/server/csvimport"
	"github.com/Daskott/contactspro/server/ingest"
	"github.com/Daskott/contactspro/server/logger"
	"github.com/Daskott/contactspro/server/models"
	"github.com/Daskott/contactspro/server/validation"
	"github.com/Daskott/contactspro/server/work"
	"github.com/Daskott/contactspro/utils"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// ResponsePayload is the body of every error and of the simple success responses
type ResponsePayload struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad interface{}, statusCode int) {
	if errPayload, ok := payLoad.(ResponsePayload); ok {
		if statusCode >= http.StatusInternalServerError {
			logg.Error(errPayload.Message, ": ", errPayload.Error)
		} else if statusCode >= http.StatusBadRequest {
			logg.Info(errPayload.Message)
		}
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeMessage(rw http.ResponseWriter, message string, statusCode int) {
	writeResponse(rw, ResponsePayload{Success: statusCode < http.StatusBadRequest, Message: message}, statusCode)
}

// writeError maps err to a status code. resource names the record in not
// found messages e.g. "Contact not found".
func writeError(rw http.ResponseWriter, err error, resource string) {
	var (
		fieldErr   *validation.FieldError
		paramErr   *models.InvalidParameterError
		conflict   *models.ConflictError
		decodeErr  *csvimport.DecodeError
		validateEr validator.ValidationErrors
	)

	switch {
	case errors.As(err, &fieldErr):
		writeMessage(rw, fieldErr.Message, http.StatusBadRequest)
	case errors.As(err, &validateEr):
		messages := validation.Messages(validateEr)
		writeResponse(rw, ResponsePayload{Message: messages[0], Errors: messages}, http.StatusBadRequest)
	case errors.As(err, &paramErr):
		writeMessage(rw, paramErr.Error(), http.StatusBadRequest)
	case errors.As(err, &decodeErr):
		writeMessage(rw, decodeErr.Message, http.StatusBadRequest)
	case errors.Is(err, ingest.ErrEmptyBatch), errors.Is(err, ingest.ErrBatchTooLarge):
		writeMessage(rw, err.Error(), http.StatusBadRequest)
	case errors.As(err, &conflict):
		writeMessage(rw, conflict.Message, http.StatusConflict)
	case errors.Is(err, models.ErrNotFound):
		writeMessage(rw, resource+" not found", http.StatusNotFound)
	default:
		writeResponse(rw, ResponsePayload{Message: "Server error", Error: err.Error()}, http.StatusInternalServerError)
	}
}

// decodeBody decodes the JSON request body into dest
func decodeBody(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &models.InvalidParameterError{Param: "body", Reason: err.Error()}
	}

	return nil
}

// idParam reads a numeric route variable
func idParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, &models.InvalidParameterError{Param: name, Reason: "must be a positive integer"}
	}

	return uint(id), nil
}

// listParams reads list options from the query string, starting from the defaults
func listParams(r *http.Request) (models.ListParams, error) {
	query := r.URL.Query()
	params := models.DefaultListParams()

	intParam := func(name string, dest *int) error {
		if value := query.Get(name); value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return &models.InvalidParameterError{Param: name, Reason: "must be an integer"}
			}
			*dest = parsed
		}
		return nil
	}

	if err := intParam("page", &params.Page); err != nil {
		return params, err
	}

	if err := intParam("limit", &params.Limit); err != nil {
		return params, err
	}

	if sortBy := query.Get("sortBy"); sortBy != "" {
		params.SortBy = sortBy
	}

	if sortOrder := query.Get("sortOrder"); sortOrder != "" {
		params.SortOrder = models.SortDirection(strings.ToLower(sortOrder))
	}

	if group := query.Get("group"); group != "" {
		groupID, err := strconv.ParseUint(group, 10, 64)
		if err != nil {
			return params, &models.InvalidParameterError{Param: "group", Reason: "must be a group id"}
		}
		params.GroupID = uint(groupID)
	}

	params.Search = query.Get("search")
	params.FavoritesOnly = query.Get("favorites") == "true"

	return params, nil
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("ContactsPro server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, backupDb bool) {
	// Stop all jobs before the final backup, so nothing writes mid snapshot
	workerPool.Stop()

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Errorf("ContactsPro server shutdown failed:%+s", err)
	}

	if backupDb {
		if err := workerPool.Perform(BACKUP_SQLITE_DB_JOB); err != nil {
			logg.Error(err)
		}
		workerPool.Wait()
	}

	if err := models.Close(); err != nil {
		logg.Error(err)
	}

	logg.Infof("ContactsPro server stopped properly")
	logger.Sync()
}

// configDirectory retrieves the directory to store contactspro data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'contactspro' folder in home directory for prod
	configFolderName := "contactspro"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
