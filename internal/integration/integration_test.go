package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digestlib/backend/internal/api"
	"github.com/digestlib/backend/internal/testhelpers"
)

const exportCSV = "Date,Time,Food,Calories (kcal),Protein (g),Sodium (mg)\n" +
	"2026-02-05,07:30,Scrambled Eggs,180,12,310\n" +
	"2026-02-05,12:15,Grilled Chicken Breast,275,42,120\n" +
	"2026-02-05,18:45,Brown Rice,215,5,10\n" +
	"2026-02-06,08:00,Oatmeal,300,10,5\n"

// TestIngestToAnalyticsFlow exercises the full pipeline against a real
// PostgreSQL instance: profile creation, CSV ingestion, rollup, and the
// analytics reads on top. Skipped when docker is unavailable.
func TestIngestToAnalyticsFlow(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api.SetupAPI(router, db, nil)

	// Create a profile.
	body, _ := json.Marshal(map[string]any{"name": "Integration User"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/consumption/profiles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))

	// Upload the export.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "export.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(exportCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost,
		"/api/v1/consumption/profiles/"+profile.ID+"/ingest/snapcalorie", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Inserted int      `json:"inserted"`
		Dates    []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 4, result.Inserted)
	assert.Equal(t, []string{"2026-02-05", "2026-02-06"}, result.Dates)

	// The rollup is visible through the summary endpoint.
	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/consumption/profiles/"+profile.ID+"/summary/2026-02-05", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary struct {
		EntryCount    int     `json:"entry_count"`
		TotalCalories float64 `json:"total_calories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.EntryCount)
	assert.InDelta(t, 670.0, summary.TotalCalories, 0.001)

	// And through the overview digest.
	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/consumption/profiles/"+profile.ID+"/overview?today=2026-02-06", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var overview struct {
		DaysLogged int `json:"days_logged"`
		Streak     int `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, 2, overview.DaysLogged)
	assert.Equal(t, 2, overview.Streak)
}
