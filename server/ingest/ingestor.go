package ingest

import (
	"context"

	"github.com/Daskott/contactspro/server/logger"
	"github.com/Daskott/contactspro/server/models"
	"github.com/Daskott/contactspro/server/validation"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	MAX_BATCH_SIZE      = 500
	DEFAULT_CONCURRENCY = 4
)

var (
	ErrEmptyBatch    = errors.New("No contacts provided")
	ErrBatchTooLarge = errors.New("Maximum 500 contacts per upload")
)

var logg = logger.NewLogger()

// ContactStore persists a single contact
type ContactStore interface {
	CreateContact(ctx context.Context, contact *models.Contact) error
}

type RowResult struct {
	Row   int    `json:"row"`
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// Report is the outcome of a bulk upload. Every input row appears exactly once,
// in SuccessList or ErrorList, in input order.
type Report struct {
	Success     bool        `json:"success"`
	Uploaded    int         `json:"uploaded"`
	Failed      int         `json:"failed"`
	Total       int         `json:"total"`
	SuccessList []RowResult `json:"successList"`
	ErrorList   []RowResult `json:"errorList"`
}

type Ingestor struct {
	store       ContactStore
	concurrency int
}

// NewIngestor returns an Ingestor that writes at most concurrency rows at a time
func NewIngestor(store ContactStore, concurrency int) *Ingestor {
	if concurrency < 1 {
		concurrency = DEFAULT_CONCURRENCY
	}

	return &Ingestor{store: store, concurrency: concurrency}
}

// Ingest validates every row and stores the valid ones one by one. A failing
// row never affects the others; only an empty or oversized batch is an error.
func (ing *Ingestor) Ingest(ctx context.Context, rows []CandidateRow) (*Report, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}

	if len(rows) > MAX_BATCH_SIZE {
		return nil, ErrBatchTooLarge
	}

	results := make([]RowResult, len(rows))

	// Rows sharing a mobile are stored by one worker in input order, so the
	// first occurrence wins & later ones are reported as duplicates
	buckets := map[string][]int{}
	order := []string{}

	for i, row := range rows {
		results[i] = RowResult{Row: i + 1, Name: row.DisplayName(i + 1)}

		if err := validation.Contact(row.Fields(), validation.ModeBulk); err != nil {
			results[i].Error = err.Error()
			continue
		}

		mobile := row.Mobile1.String()
		if _, ok := buckets[mobile]; !ok {
			order = append(order, mobile)
		}
		buckets[mobile] = append(buckets[mobile], i)
	}

	g := new(errgroup.Group)
	g.SetLimit(ing.concurrency)

	for _, mobile := range order {
		indexes := buckets[mobile]

		g.Go(func() error {
			for _, i := range indexes {
				results[i].Error = rowError(ing.store.CreateContact(ctx, rows[i].Contact()))
			}
			return nil
		})
	}

	// Row failures are recorded in results, never returned
	_ = g.Wait()

	report := &Report{
		Success:     true,
		Total:       len(rows),
		SuccessList: []RowResult{},
		ErrorList:   []RowResult{},
	}

	for _, result := range results {
		if result.Error != "" {
			report.ErrorList = append(report.ErrorList, result)
			continue
		}
		report.SuccessList = append(report.SuccessList, result)
	}

	report.Uploaded = len(report.SuccessList)
	report.Failed = len(report.ErrorList)

	logg.Infof("ingested %v contacts: %v uploaded, %v failed", report.Total, report.Uploaded, report.Failed)

	return report, nil
}

func rowError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrConflict):
		return models.ErrDuplicateMobile.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Upload cancelled"
	}

	return err.Error()
}
