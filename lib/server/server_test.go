package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FSXAC/Emulsion/lib/config"
	"github.com/FSXAC/Emulsion/lib/emulsiondb"
	"github.com/FSXAC/Emulsion/lib/filmapi"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load(ctx, "")
	require.NoError(t, err)
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	db, err := emulsiondb.Open(ctx, emulsiondb.Params{DatabasePath: cfg.DatabasePath})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv, err := New(cfg, db)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}, into interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}

	return resp
}

func createRoll(t *testing.T, ts *httptest.Server, request filmapi.FilmRollRequest) filmapi.FilmRollItem {
	t.Helper()

	var item filmapi.FilmRollItem
	resp := doJSON(t, "POST", ts.URL+"/api/rolls", request, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return item
}

func rollRequest(orderID, stock string) filmapi.FilmRollRequest {
	return filmapi.FilmRollRequest{
		OrderID:           orderID,
		FilmStockName:     stock,
		FilmFormat:        "35mm",
		ExpectedExposures: 36,
		FilmCost:          10,
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, "GET", ts.URL+"/health", nil, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRollLifecycle(t *testing.T) {
	ts := newTestServer(t)

	item := createRoll(t, ts, rollRequest("film-0001", "Portra 400"))
	assert.Equal(t, "NEW", item.Status)

	var loaded filmapi.FilmRollItem
	resp := doJSON(t, "PATCH", ts.URL+"/api/rolls/"+item.ID+"/load",
		map[string]string{"date_loaded": "2023-05-01"}, &loaded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "LOADED", loaded.Status)

	var unloaded filmapi.FilmRollItem
	resp = doJSON(t, "PATCH", ts.URL+"/api/rolls/"+item.ID+"/unload",
		map[string]string{"date_unloaded": "2023-05-20"}, &unloaded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EXPOSED", unloaded.Status)

	var developed filmapi.FilmRollItem
	resp = doJSON(t, "PATCH", ts.URL+"/api/rolls/"+item.ID+"/chemistry",
		map[string]float64{"lab_dev_cost": 8}, &developed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DEVELOPED", developed.Status)
	require.NotNil(t, developed.TotalCost)
	assert.Equal(t, 18.0, *developed.TotalCost)

	var rated filmapi.FilmRollItem
	resp = doJSON(t, "PATCH", ts.URL+"/api/rolls/"+item.ID+"/rating",
		map[string]int{"stars": 5}, &rated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SCANNED", rated.Status)
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	createRoll(t, ts, rollRequest("film-0001", "Portra 400"))

	var stats filmapi.StatsResponse
	resp := doJSON(t, "GET", ts.URL+"/api/stats", nil, &stats)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stats.Rolls)
	assert.Equal(t, 1, stats.RollsByStatus["NEW"])
}

func TestGetRollNotFound(t *testing.T) {
	ts := newTestServer(t)

	var body filmapi.ErrorResponse
	resp := doJSON(t, "GET", ts.URL+"/api/rolls/missing", nil, &body)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body.Error.Message, "missing")
}

func TestCreateRollValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/api/rolls", filmapi.FilmRollRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateRollUnknownChemistry(t *testing.T) {
	ts := newTestServer(t)

	request := rollRequest("film-0001", "Portra 400")
	chemID := "nope"
	request.ChemistryID = &chemID

	resp := doJSON(t, "POST", ts.URL+"/api/rolls", request, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAssignChemistryExactlyOne(t *testing.T) {
	ts := newTestServer(t)
	item := createRoll(t, ts, rollRequest("film-0001", "Portra 400"))

	resp := doJSON(t, "PATCH", ts.URL+"/api/rolls/"+item.ID+"/chemistry",
		map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, "PATCH", ts.URL+"/api/rolls/"+item.ID+"/chemistry",
		map[string]interface{}{"chemistry_id": "batch-1", "lab_dev_cost": 8}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchSuspendsPagination(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 4; i++ {
		createRoll(t, ts, rollRequest(fmt.Sprintf("film-%04d", i), "Portra 400"))
	}
	createRoll(t, ts, rollRequest("film-9999", "HP5 Plus"))

	var list filmapi.FilmRollList
	resp := doJSON(t, "GET", ts.URL+"/api/rolls?search=portra&limit=2", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// All matches come back; limit only applies to plain listing.
	assert.Len(t, list.Rolls, 4)
	assert.Equal(t, 4, list.Total)

	resp = doJSON(t, "GET", ts.URL+"/api/rolls?limit=2", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list.Rolls, 2)
	assert.Equal(t, 5, list.Total)
}

func TestSearchComputedFilterRecountsTotal(t *testing.T) {
	ts := newTestServer(t)

	item := createRoll(t, ts, rollRequest("film-0001", "Portra 400"))
	createRoll(t, ts, rollRequest("film-0002", "Portra 160"))

	resp := doJSON(t, "PATCH", ts.URL+"/api/rolls/"+item.ID+"/rating",
		map[string]int{"stars": 5}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list filmapi.FilmRollList
	resp = doJSON(t, "GET", ts.URL+"/api/rolls?search=portra+status:scanned", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, list.Rolls, 1)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "film-0001", list.Rolls[0].OrderID)
}

func TestChemistryCRUDAndRollCount(t *testing.T) {
	ts := newTestServer(t)

	var batch filmapi.ChemistryBatchItem
	resp := doJSON(t, "POST", ts.URL+"/api/chemistry", filmapi.ChemistryBatchRequest{
		Name:          "C41 Batch #1",
		ChemistryType: "c41",
		DeveloperCost: 30,
		FixerCost:     10,
	}, &batch)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "C41", batch.ChemistryType)
	assert.Equal(t, 40.0, batch.BatchCost)
	assert.True(t, batch.IsActive)
	assert.Nil(t, batch.CostPerRoll)

	request := rollRequest("film-0001", "Gold 200")
	request.ChemistryID = &batch.ID
	createRoll(t, ts, request)

	var fetched filmapi.ChemistryBatchItem
	resp = doJSON(t, "GET", ts.URL+"/api/chemistry/"+batch.ID, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, fetched.RollsDeveloped)
	require.NotNil(t, fetched.CostPerRoll)
	assert.Equal(t, 40.0, *fetched.CostPerRoll)
	require.NotNil(t, fetched.DevelopmentTimeSeconds)
	assert.Equal(t, 214, *fetched.DevelopmentTimeSeconds)
}

func TestDevChartDuplicateConflict(t *testing.T) {
	ts := newTestServer(t)

	entry := filmapi.DevChartRequest{
		FilmStock:              "HP5 Plus",
		Developer:              "Ilfotec DD-X",
		ISORating:              400,
		DilutionRatio:          "1+4",
		TemperatureCelsius:     20,
		DevelopmentTimeSeconds: 540,
	}

	var created filmapi.DevChartItem
	resp := doJSON(t, "POST", ts.URL+"/api/devchart", entry, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "9:00", created.DevelopmentTimeFormatted)

	var conflict filmapi.ErrorResponse
	resp = doJSON(t, "POST", ts.URL+"/api/devchart", entry, &conflict)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, created.ID, conflict.Error.Data["existing_id"])
}

func TestDevChartLookupSuggestions(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/api/devchart", filmapi.DevChartRequest{
		FilmStock:              "HP5 Plus",
		Developer:              "Ilfotec DD-X",
		ISORating:              400,
		DilutionRatio:          "1+4",
		TemperatureCelsius:     20,
		DevelopmentTimeSeconds: 540,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var lookup filmapi.DevTimeLookupResponse
	resp = doJSON(t, "POST", ts.URL+"/api/devchart/lookup", map[string]interface{}{
		"film_stock": "HP5 Plus",
		"developer":  "Ilfotec DD-X",
		"iso_rating": 1600,
	}, &lookup)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Nil(t, lookup.Match)
	require.Len(t, lookup.Suggestions, 1)
	assert.Equal(t, 400, lookup.Suggestions[0].ISORating)
}

func TestAutocompleteEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/api/devchart", filmapi.DevChartRequest{
		FilmStock:              "Tri-X 400",
		Developer:              "Rodinal",
		ISORating:              400,
		DilutionRatio:          "1+25",
		TemperatureCelsius:     20,
		DevelopmentTimeSeconds: 300,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var ac filmapi.AutocompleteResponse
	resp = doJSON(t, "GET", ts.URL+"/api/devchart/autocomplete/films?q=tri", nil, &ac)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Tri-X 400"}, ac.Values)
}
