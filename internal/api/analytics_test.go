package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analyticsCSV = "Date,Time,Food,Calories (kcal),Protein (g),Sodium (mg)\n" +
	"2026-02-05,07:30,Coffee,5,0.3,5\n" +
	"2026-02-05,12:15,Chicken Salad,350,30,520\n" +
	"2026-02-06,08:00,Coffee,5,0.3,5\n" +
	"2026-02-06,19:00,Pasta,600,20,800\n"

func TestOverviewEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")
	require.Equal(t, http.StatusOK, uploadCSV(t, router, id, analyticsCSV).Code)

	w := doJSON(t, router, http.MethodGet, "/api/v1/consumption/profiles/"+id+"/overview?today=2026-02-06", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var overview struct {
		Period struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"period"`
		DaysLogged     int                 `json:"days_logged"`
		Streak         int                 `json:"streak"`
		Averages       map[string]*float64 `json:"averages"`
		MostLoggedFood *string             `json:"most_logged_food"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))

	assert.Equal(t, "2026-01-08", overview.Period.Start)
	assert.Equal(t, "2026-02-06", overview.Period.End)
	assert.Equal(t, 2, overview.DaysLogged)
	assert.Equal(t, 2, overview.Streak)
	require.NotNil(t, overview.Averages["calories"])
	assert.Equal(t, 480.0, *overview.Averages["calories"])
	require.NotNil(t, overview.MostLoggedFood)
	assert.Equal(t, "coffee", *overview.MostLoggedFood)
}

func TestOverviewEndpointBadDate(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")

	w := doJSON(t, router, http.MethodGet, "/api/v1/consumption/profiles/"+id+"/overview?today=feb-6", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")
	require.Equal(t, http.StatusOK, uploadCSV(t, router, id, analyticsCSV).Code)

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/consumption/profiles/"+id+"/trends?start=2026-02-04&end=2026-02-07&metrics=calories", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var trend struct {
		Dates  []string              `json:"dates"`
		Series map[string][]*float64 `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trend))

	require.Len(t, trend.Dates, 4)
	calories := trend.Series["calories"]
	require.Len(t, calories, 4)
	assert.Nil(t, calories[0])
	require.NotNil(t, calories[1])
	assert.Equal(t, 355.0, *calories[1])
	require.NotNil(t, calories[2])
	assert.Equal(t, 605.0, *calories[2])
	assert.Nil(t, calories[3])
}

func TestTrendsEndpointInvertedRange(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/consumption/profiles/"+id+"/trends?start=2026-02-07&end=2026-02-04", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAveragesEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")
	require.Equal(t, http.StatusOK, uploadCSV(t, router, id, analyticsCSV).Code)

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/consumption/profiles/"+id+"/averages?start=2026-02-01&end=2026-02-07&metrics=calories,sodium_mg", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var averages struct {
		Averages   map[string]*float64 `json:"averages"`
		DaysLogged int                 `json:"days_logged"`
		TotalDays  int                 `json:"total_days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &averages))

	assert.Equal(t, 2, averages.DaysLogged)
	assert.Equal(t, 7, averages.TotalDays)
	require.NotNil(t, averages.Averages["calories"])
	assert.Equal(t, 480.0, *averages.Averages["calories"])
	require.NotNil(t, averages.Averages["sodium_mg"])
	assert.Equal(t, 665.0, *averages.Averages["sodium_mg"])
}

func TestFavoritesEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")
	require.Equal(t, http.StatusOK, uploadCSV(t, router, id, analyticsCSV).Code)

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/consumption/profiles/"+id+"/favorites?start=2026-02-01&end=2026-02-07", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var favorites []struct {
		Food  string `json:"food"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &favorites))
	require.Len(t, favorites, 3)
	assert.Equal(t, "coffee", favorites[0].Food)
	assert.Equal(t, 2, favorites[0].Count)
}

func TestFavoritesEndpointLimitBounds(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")

	w := doJSON(t, router, http.MethodGet, "/api/v1/consumption/profiles/"+id+"/favorites?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/consumption/profiles/"+id+"/favorites?limit=101", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMealPatternsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")
	require.Equal(t, http.StatusOK, uploadCSV(t, router, id, analyticsCSV).Code)

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/consumption/profiles/"+id+"/meal-patterns?start=2026-02-01&end=2026-02-07", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var patterns []struct {
		Meal        string   `json:"meal"`
		EntryCount  int      `json:"entry_count"`
		AvgCalories *float64 `json:"avg_calories"`
		TopFoods    []string `json:"top_foods"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patterns))

	// dinner (600), lunch (350), breakfast (5 avg)
	require.Len(t, patterns, 3)
	assert.Equal(t, "dinner", patterns[0].Meal)
	assert.Equal(t, "lunch", patterns[1].Meal)
	assert.Equal(t, "breakfast", patterns[2].Meal)
	assert.Equal(t, 2, patterns[2].EntryCount)
	assert.Equal(t, []string{"coffee"}, patterns[2].TopFoods)
}

func TestRecentEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	id := createProfileViaAPI(t, router, "Ada")
	require.Equal(t, http.StatusOK, uploadCSV(t, router, id, analyticsCSV).Code)

	w := doJSON(t, router, http.MethodGet, "/api/v1/consumption/profiles/"+id+"/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entries []struct {
		ItemName string `json:"item_name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Pasta", entries[0].ItemName)
	assert.Equal(t, "Coffee", entries[1].ItemName)
}

func TestAnalyticsUnknownProfile(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/consumption/profiles/0c9f2c3a-2f9f-4a63-9a39-d6bd95f4c0f1/overview", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
