package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheetsAPI 模拟 Sheets v4 的 get / values.get / values.append
type fakeSheetsAPI struct {
	mu       sync.Mutex
	rows     [][]any
	appended [][]any
	query    map[string]string
	status   int
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		w.Write([]byte(`{"error":{"code":403,"message":"permission denied","status":"PERMISSION_DENIED"}}`))
		return
	}
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, body.Values...)
		f.rows = append(f.rows, body.Values...)
		f.query = map[string]string{
			"valueInputOption": r.URL.Query().Get("valueInputOption"),
			"insertDataOption": r.URL.Query().Get("insertDataOption"),
		}
		w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		json.NewEncoder(w).Encode(map[string]any{
			"range":          "Sheet1!A1:I10",
			"majorDimension": "ROWS",
			"values":         f.rows,
		})
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/spreadsheets/sheet-1"):
		w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
	}
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(),
		Config{SpreadsheetID: "sheet-1"},
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestClient_RowsAndAppend(t *testing.T) {
	api := &fakeSheetsAPI{rows: [][]any{
		{"Sl No", "Organization", "Name"},
		{1, "Acme", "Jane Doe"},
	}}
	client := newTestClient(t, api)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	rows, err := client.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Sl No", "Organization", "Name"},
		{"1", "Acme", "Jane Doe"},
	}, rows)

	require.NoError(t, client.Append(ctx, []any{2, "Globex", "Hank", "", "+44 20 7946 0000", "", "", "", ""}))
	require.Len(t, api.appended, 1)
	assert.Len(t, api.appended[0], 9)
	assert.EqualValues(t, 2, api.appended[0][0])
	assert.Equal(t, "Globex", api.appended[0][1])
	assert.Equal(t, "+44 20 7946 0000", api.appended[0][4])
	assert.Equal(t, "RAW", api.query["valueInputOption"])
	assert.Equal(t, "INSERT_ROWS", api.query["insertDataOption"])

	rows, err = client.Rows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, &fakeSheetsAPI{status: http.StatusForbidden})

	_, err := client.Rows(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.False(t, apiErr.Temporary())

	err = client.Append(context.Background(), []any{1})
	assert.True(t, errors.As(err, &apiErr))
}

func TestNewClient_RequiresSpreadsheetID(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, option.WithHTTPClient(http.DefaultClient))
	assert.Error(t, err)
}

func TestQuoteSheetName(t *testing.T) {
	assert.Equal(t, "'Sheet1'", quoteSheetName("Sheet1"))
	assert.Equal(t, "'Bob''s cards'", quoteSheetName("Bob's cards"))
}
