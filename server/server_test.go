package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Daskott/contactspro/server/csvimport"
	"github.com/Daskott/contactspro/server/ingest"
	"github.com/Daskott/contactspro/server/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const johnSmith = `{"title":"Mr","firstName":"John","lastName":"Smith","mobile1":"9876543210",
	"address":{"city":"Mumbai","state":"Maharashtra","pincode":"400001"}}`

func newTestRouter() *mux.Router {
	models.InitializeTestDb()
	return NewRouter(ingest.NewIngestor(models.DBContactStore{}, 2))
}

func sendRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func sendFile(router http.Handler, fileName, content string) *httptest.ResponseRecorder {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", fileName)
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/contacts/bulk-upload/csv", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	payload := map[string]interface{}{}
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return payload
}

func TestContactRoutes(t *testing.T) {
	router := newTestRouter()

	rec := sendRequest(router, http.MethodPost, "/api/contacts", johnSmith)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(REQUEST_ID_HEADER))

	created := decodeResponse(t, rec)
	id := fmt.Sprint(created["_id"])
	assert.Equal(t, "John", created["firstName"])
	assert.Equal(t, false, created["isFavorite"])

	cases := []struct {
		description     string
		method          string
		path            string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{"duplicate mobile", http.MethodPost, "/api/contacts", johnSmith, http.StatusConflict, "Duplicate mobile number"},
		{"invalid mobile", http.MethodPost, "/api/contacts", strings.Replace(johnSmith, "9876543210", "987654321", 1),
			http.StatusBadRequest, "Mobile must be exactly 10 digits"},
		{"invalid alternate mobile", http.MethodPost, "/api/contacts", strings.Replace(johnSmith, `"mobile1"`, `"mobile2":"12","mobile1"`, 1),
			http.StatusBadRequest, "Alternate mobile must be exactly 10 digits"},
		{"malformed body", http.MethodPost, "/api/contacts", "{", http.StatusBadRequest, ""},
		{"missing contact", http.MethodGet, "/api/contacts/9999", "", http.StatusNotFound, "Contact not found"},
		{"update with bad pincode", http.MethodPut, "/api/contacts/" + id, `{"address":{"pincode":"4000011"}}`,
			http.StatusBadRequest, "Pincode must be exactly 6 digits"},
		{"update missing contact", http.MethodPut, "/api/contacts/9999", `{"firstName":"Jane"}`, http.StatusNotFound, "Contact not found"},
		{"unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound, "Route not found"},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			rec := sendRequest(router, tcase.method, tcase.path, tcase.body)
			assert.Equal(t, tcase.expectedStatus, rec.Code, rec.Body.String())

			payload := decodeResponse(t, rec)
			assert.Equal(t, false, payload["success"])
			if tcase.expectedMessage != "" {
				assert.Equal(t, tcase.expectedMessage, payload["message"])
			}
		})
	}

	rec = sendRequest(router, http.MethodPut, "/api/contacts/"+id, `{"firstName":"Johnny","address":{"city":"Pune"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeResponse(t, rec)
	assert.Equal(t, "Johnny", updated["firstName"])
	assert.Equal(t, "Smith", updated["lastName"])
	assert.Equal(t, "Pune", updated["address"].(map[string]interface{})["city"])

	rec = sendRequest(router, http.MethodPatch, "/api/contacts/"+id+"/favorite", `{"isFavorite":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	favorite := decodeResponse(t, rec)
	assert.Equal(t, "Added to favorites", favorite["message"])
	assert.NotNil(t, favorite["contact"].(map[string]interface{})["favoritedAt"])

	rec = sendRequest(router, http.MethodDelete, "/api/contacts/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Contact deleted successfully", decodeResponse(t, rec)["message"])

	rec = sendRequest(router, http.MethodDelete, "/api/contacts/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListContactsRoute(t *testing.T) {
	router := newTestRouter()

	rows := []string{}
	for i := 0; i < 12; i++ {
		rows = append(rows, fmt.Sprintf(
			`{"title":"Ms","firstName":"Contact","lastName":"Number","mobile1":%d,"city":"Delhi","state":"Delhi","pincode":110001}`,
			9000000000+i))
	}
	rec := sendRequest(router, http.MethodPost, "/api/contacts/bulk-upload", `{"contacts":[`+strings.Join(rows, ",")+`]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, float64(12), decodeResponse(t, rec)["uploaded"])

	cases := []struct {
		query            string
		expectedStatus   int
		expectedContacts int
	}{
		{"?page=1&limit=5", http.StatusOK, 5},
		{"?page=3&limit=5", http.StatusOK, 2},
		{"?page=4&limit=5", http.StatusOK, 0},
		{"?search=CONTACT&sortBy=mobile1&sortOrder=desc", http.StatusOK, 10},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
		{"?sortBy=password", http.StatusBadRequest, 0},
		{"?group=abc", http.StatusBadRequest, 0},
	}

	for _, tcase := range cases {
		t.Run(tcase.query, func(t *testing.T) {
			rec := sendRequest(router, http.MethodGet, "/api/contacts"+tcase.query, "")
			require.Equal(t, tcase.expectedStatus, rec.Code, rec.Body.String())

			if tcase.expectedStatus != http.StatusOK {
				return
			}

			page := decodeResponse(t, rec)
			assert.Len(t, page["contacts"], tcase.expectedContacts)
			assert.Equal(t, float64(12), page["totalContacts"])
		})
	}

	rec = sendRequest(router, http.MethodGet, "/api/contacts?limit=5", "")
	assert.Equal(t, float64(3), decodeResponse(t, rec)["totalPages"])
}

func TestBulkUploadRoute(t *testing.T) {
	router := newTestRouter()

	rec := sendRequest(router, http.MethodPost, "/api/contacts/bulk-upload", `{"contacts":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No contacts provided", decodeResponse(t, rec)["message"])

	tooMany := strings.TrimSuffix(strings.Repeat(`{"title":"Mr"},`, ingest.MAX_BATCH_SIZE+1), ",")
	rec = sendRequest(router, http.MethodPost, "/api/contacts/bulk-upload", `{"contacts":[`+tooMany+`]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Maximum 500 contacts per upload", decodeResponse(t, rec)["message"])

	body := `{"contacts":[
		{"title":"Mr","firstName":"John","lastName":"Smith","mobile1":"9876543210","city":"Mumbai","state":"Maharashtra","pincode":"400001"},
		{"title":"Mr","firstName":"Jon","lastName":"Smyth","mobile1":"9876543210","city":"Mumbai","state":"Maharashtra","pincode":"400001"},
		{"title":"Sir","firstName":"Bad","lastName":"Title","mobile1":"9876543211","city":"Mumbai","state":"Maharashtra","pincode":"400001"}
	]}`

	rec = sendRequest(router, http.MethodPost, "/api/contacts/bulk-upload", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := ingest.Report{}
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, ingest.Report{
		Success:     true,
		Uploaded:    1,
		Failed:      2,
		Total:       3,
		SuccessList: []ingest.RowResult{{Row: 1, Name: "John Smith"}},
		ErrorList: []ingest.RowResult{
			{Row: 2, Name: "Jon Smyth", Error: "Duplicate mobile number"},
			{Row: 3, Name: "Bad Title", Error: "Title must be Mr, Mrs, Ms, or Dr"},
		},
	}, report)
}

func TestBulkUploadCSVRoute(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		description     string
		fileName        string
		content         string
		expectedStatus  int
		expectedMessage string
	}{
		{"wrong file type", "contacts.txt", csvimport.Template(), http.StatusBadRequest, "Only CSV files are supported (.csv)"},
		{"header only", "contacts.csv", "title,firstName\n", http.StatusBadRequest, "CSV must have a header row + at least one data row."},
		{"missing columns", "contacts.csv", "title,firstName\nMr,John", http.StatusBadRequest,
			"Missing columns: lastName, mobile1, city, state, pincode. Please use the template."},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			rec := sendFile(router, tcase.fileName, tcase.content)
			assert.Equal(t, tcase.expectedStatus, rec.Code)
			assert.Equal(t, tcase.expectedMessage, decodeResponse(t, rec)["message"])
		})
	}

	rec := sendFile(router, "contacts.csv", csvimport.Template())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeResponse(t, rec)
	assert.Equal(t, float64(4), report["uploaded"])
	assert.Equal(t, float64(0), report["failed"])

	rec = sendRequest(router, http.MethodPost, "/api/contacts/bulk-upload/csv", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateAndExportRoutes(t *testing.T) {
	router := newTestRouter()

	rec := sendRequest(router, http.MethodGet, "/api/contacts/template.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, csvimport.Template(), rec.Body.String())

	require.Equal(t, http.StatusCreated, sendRequest(router, http.MethodPost, "/api/contacts", johnSmith).Code)

	rec = sendRequest(router, http.MethodGet, "/api/contacts/export/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contacts.csv")
	assert.Equal(t,
		"Title,First Name,Last Name,Mobile 1,Mobile 2,City,State,Pincode\nMr,John,Smith,9876543210,,Mumbai,Maharashtra,400001\n",
		rec.Body.String())
}

func TestBulkContactRoutes(t *testing.T) {
	router := newTestRouter()

	ids := []string{}
	for i := 0; i < 3; i++ {
		rec := sendRequest(router, http.MethodPost, "/api/contacts", strings.Replace(johnSmith, "9876543210", fmt.Sprintf("987654321%d", i), 1))
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, fmt.Sprint(decodeResponse(t, rec)["_id"]))
	}

	rec := sendRequest(router, http.MethodDelete, "/api/contacts/bulk", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide an array of contact IDs", decodeResponse(t, rec)["message"])

	rec = sendRequest(router, http.MethodPatch, "/api/contacts/bulk/favorite", fmt.Sprintf(`{"ids":[%s,%s],"isFavorite":true}`, ids[0], ids[1]))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2 contact(s) updated", decodeResponse(t, rec)["message"])

	rec = sendRequest(router, http.MethodGet, "/api/contacts?favorites=true", "")
	assert.Equal(t, float64(2), decodeResponse(t, rec)["totalContacts"])

	rec = sendRequest(router, http.MethodDelete, "/api/contacts/bulk", fmt.Sprintf(`{"ids":[%s,%s]}`, ids[0], ids[2]))
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decodeResponse(t, rec)
	assert.Equal(t, float64(2), deleted["deleted"])
	assert.Equal(t, "2 contact(s) deleted", deleted["message"])

	rec = sendRequest(router, http.MethodGet, "/api/contacts", "")
	assert.Equal(t, float64(1), decodeResponse(t, rec)["totalContacts"])
}

func TestGroupRoutes(t *testing.T) {
	router := newTestRouter()

	rec := sendRequest(router, http.MethodPost, "/api/groups", `{"name":"  Family "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decodeResponse(t, rec)["group"].(map[string]interface{})
	groupID := fmt.Sprint(group["_id"])
	assert.Equal(t, "Family", group["name"])
	assert.Equal(t, models.DEFAULT_GROUP_COLOR, group["color"])
	assert.Equal(t, models.DEFAULT_GROUP_ICON, group["icon"])

	cases := []struct {
		description     string
		method          string
		path            string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{"duplicate name", http.MethodPost, "/api/groups", `{"name":"Family"}`, http.StatusConflict, "Group name already exists"},
		{"short name", http.MethodPost, "/api/groups", `{"name":"F"}`, http.StatusBadRequest, "name must be at least 2 characters"},
		{"missing name", http.MethodPost, "/api/groups", `{}`, http.StatusBadRequest, "name is required"},
		{"bad color", http.MethodPost, "/api/groups", `{"name":"Work","color":"blue"}`, http.StatusBadRequest, "color is invalid"},
		{"update missing group", http.MethodPut, "/api/groups/9999", `{"name":"Work"}`, http.StatusNotFound, "Group not found"},
		{"delete missing group", http.MethodDelete, "/api/groups/9999", "", http.StatusNotFound, "Group not found"},
		{"assign missing group", http.MethodPost, "/api/contacts/bulk-assign-group", `{"ids":[1],"groupId":9999}`,
			http.StatusNotFound, "Group not found"},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			rec := sendRequest(router, tcase.method, tcase.path, tcase.body)
			assert.Equal(t, tcase.expectedStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tcase.expectedMessage, decodeResponse(t, rec)["message"])
		})
	}

	rec = sendRequest(router, http.MethodPut, "/api/groups/"+groupID, `{"color":"#000000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "#000000", decodeResponse(t, rec)["group"].(map[string]interface{})["color"])

	rec = sendRequest(router, http.MethodPost, "/api/contacts", johnSmith)
	require.Equal(t, http.StatusCreated, rec.Code)
	contactID := fmt.Sprint(decodeResponse(t, rec)["_id"])

	rec = sendRequest(router, http.MethodPost, "/api/contacts/bulk-assign-group", fmt.Sprintf(`{"ids":[%s],"groupId":%s}`, contactID, groupID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decodeResponse(t, rec)["updated"])

	rec = sendRequest(router, http.MethodGet, "/api/contacts?group="+groupID, "")
	assert.Equal(t, float64(1), decodeResponse(t, rec)["totalContacts"])

	rec = sendRequest(router, http.MethodGet, "/api/groups", "")
	groups := decodeResponse(t, rec)["groups"].([]interface{})
	require.Len(t, groups, 1)
	assert.Equal(t, float64(1), groups[0].(map[string]interface{})["contactCount"])

	rec = sendRequest(router, http.MethodDelete, "/api/groups/"+groupID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Group deleted successfully", decodeResponse(t, rec)["message"])

	rec = sendRequest(router, http.MethodGet, "/api/contacts/"+contactID, "")
	assert.Empty(t, decodeResponse(t, rec)["groups"])

	rec = sendRequest(router, http.MethodGet, "/api/groups", "")
	assert.Empty(t, decodeResponse(t, rec)["groups"])
}

func TestHealthRoute(t *testing.T) {
	router := newTestRouter()

	rec := sendRequest(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeResponse(t, rec)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "connected", payload["database"])

	rec = sendRequest(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contactspro_http_requests_total")
}
