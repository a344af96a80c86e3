package server

import (
	"net/http"

	"github.com/Daskott/contactspro/server/csvimport"
	"github.com/Daskott/contactspro/server/ingest"
	"github.com/Daskott/contactspro/server/models"
	"github.com/pkg/errors"
)

// multipart bodies may carry a little more than the file itself
const MAX_UPLOAD_BODY_SIZE = csvimport.MAX_FILE_SIZE + 1024*1024

type bulkUploadRequest struct {
	Contacts []ingest.CandidateRow `json:"contacts"`
}

func bulkUpload(ingestor *ingest.Ingestor) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		data := bulkUploadRequest{}
		if err := decodeBody(r, &data); err != nil {
			writeError(rw, err, "Contact")
			return
		}

		report, err := ingestor.Ingest(r.Context(), data.Contacts)
		if err != nil {
			writeError(rw, err, "Contact")
			return
		}

		observeReport("json", report)
		writeResponse(rw, report, http.StatusOK)
	}
}

func bulkUploadCSV(ingestor *ingest.Ingestor) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(rw, r.Body, MAX_UPLOAD_BODY_SIZE)

		file, header, err := r.FormFile("file")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(rw, csvimport.ErrFileTooLarge, "Contact")
			return
		}
		if err != nil {
			writeMessage(rw, "Please upload a CSV file in the 'file' field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		result, err := csvimport.DecodeFile(header.Filename, header.Size, file)
		if err != nil {
			writeError(rw, err, "Contact")
			return
		}

		report, err := ingestor.Ingest(r.Context(), result.Uploadable())
		if err != nil {
			writeError(rw, err, "Contact")
			return
		}

		observeReport("csv", report)
		writeResponse(rw, report, http.StatusOK)
	}
}

func downloadTemplate(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/csv; charset=utf-8")
	rw.Header().Set("Content-Disposition", `attachment; filename="contacts_template.csv"`)

	rw.WriteHeader(http.StatusOK)
	rw.Write([]byte(csvimport.Template()))
}

func exportContacts(rw http.ResponseWriter, r *http.Request) {
	contacts, err := models.AllContacts(r.Context())
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	rw.Header().Set("Content-Type", "text/csv; charset=utf-8")
	rw.Header().Set("Content-Disposition", `attachment; filename="contacts.csv"`)
	rw.WriteHeader(http.StatusOK)

	// Headers are already sent, a failure can only be logged
	if err := csvimport.Export(rw, contacts); err != nil {
		logg.Errorf("export contacts: %v", err)
	}
}
