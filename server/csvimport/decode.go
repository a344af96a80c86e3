// Package csvimport turns uploaded CSV text into candidate contact rows and
// renders contacts back to CSV.
package csvimport

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/Daskott/contactspro/server/ingest"
	"github.com/Daskott/contactspro/server/validation"
	"github.com/Daskott/contactspro/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

const (
	MAX_ROWS      = ingest.MAX_BATCH_SIZE
	MAX_FILE_SIZE = 5 * 1024 * 1024
)

// headerAliases maps normalized header names to canonical field names
var headerAliases = map[string]string{
	"title":      validation.FieldTitle,
	"salutation": validation.FieldTitle,
	"firstname":  validation.FieldFirstName,
	"first_name": validation.FieldFirstName,
	"lastname":   validation.FieldLastName,
	"last_name":  validation.FieldLastName,
	"mobile1":    validation.FieldMobile1,
	"mobile":     validation.FieldMobile1,
	"phone":      validation.FieldMobile1,
	"mobile2":    validation.FieldMobile2,
	"alternate":  validation.FieldMobile2,
	"city":       validation.FieldCity,
	"state":      validation.FieldState,
	"pincode":    validation.FieldPincode,
	"pin":        validation.FieldPincode,
	"zip":        validation.FieldPincode,
}

// requiredColumns in the order they are reported when missing
var requiredColumns = []string{
	validation.FieldTitle,
	validation.FieldFirstName,
	validation.FieldLastName,
	validation.FieldMobile1,
	validation.FieldCity,
	validation.FieldState,
	validation.FieldPincode,
}

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
)

type Result struct {
	// Columns are the canonical names of the header columns, in file order
	Columns []string
	Records []ingest.CandidateRow
}

// Uploadable returns the records that name someone, skipping rows where
// first name, last name & mobile are all blank
func (r *Result) Uploadable() []ingest.CandidateRow {
	rows := []ingest.CandidateRow{}
	for _, record := range r.Records {
		if record.FirstName.String() == "" && record.LastName.String() == "" && record.Mobile1.String() == "" {
			continue
		}
		rows = append(rows, record)
	}

	return rows
}

// Decode parses CSV text into candidate rows. Values are not validated.
func Decode(text string) (*Result, error) {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 2 {
		return nil, ErrEmptyInput
	}

	columns := parseHeader(lines[0])
	if missing := missingRequired(columns); len(missing) > 0 {
		return nil, missingColumns(missing)
	}

	if len(lines)-1 > MAX_ROWS {
		return nil, ErrTooManyRows
	}

	records := make([]ingest.CandidateRow, 0, len(lines)-1)
	for i, line := range lines[1:] {
		values := splitLine(line)
		record := ingest.CandidateRow{Row: i + 1}

		for idx, column := range columns {
			value := ""
			if idx < len(values) {
				value = strings.TrimSpace(trimQuotes(values[idx]))
			}
			record.Set(column, value)
		}

		records = append(records, record)
	}

	return &Result{Columns: columns, Records: records}, nil
}

// DecodeFile checks an uploaded file's name, size & content type before decoding it
func DecodeFile(name string, size int64, r io.Reader) (*Result, error) {
	if !utils.HasExtension(name, ".csv") {
		return nil, ErrWrongFileType
	}

	if size > MAX_FILE_SIZE {
		return nil, ErrFileTooLarge
	}

	content, err := io.ReadAll(io.LimitReader(r, MAX_FILE_SIZE+1))
	if err != nil {
		return nil, errors.Wrap(err, "read csv file")
	}

	if len(content) > MAX_FILE_SIZE {
		return nil, ErrFileTooLarge
	}

	if !isText(content) {
		return nil, ErrWrongFileType
	}

	return Decode(string(bytes.TrimPrefix(content, utf8BOM)))
}

func isText(content []byte) bool {
	if len(content) == 0 {
		return true
	}

	for mime := mimetype.Detect(content); mime != nil; mime = mime.Parent() {
		if mime.Is("text/plain") {
			return true
		}
	}

	return false
}

func parseHeader(line string) []string {
	columns := []string{}
	for _, header := range strings.Split(line, ",") {
		normalized := whitespaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(trimQuotes(header))), "")
		if canonical, ok := headerAliases[normalized]; ok {
			normalized = canonical
		}
		columns = append(columns, normalized)
	}

	return columns
}

func missingRequired(columns []string) []string {
	present := map[string]bool{}
	for _, column := range columns {
		present[column] = true
	}

	missing := []string{}
	for _, column := range requiredColumns {
		if !present[column] {
			missing = append(missing, column)
		}
	}

	return missing
}

// splitLine splits a data line on commas outside of double quotes. Quotes
// only toggle quoting and are dropped.
func splitLine(line string) []string {
	values := []string{}
	current := strings.Builder{}
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	return append(values, current.String())
}

func trimQuotes(value string) string {
	return strings.TrimSuffix(strings.TrimPrefix(value, `"`), `"`)
}
