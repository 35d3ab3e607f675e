package insights

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropweather-ai/cropweather/internal/weather"
)

func doAnalyze(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/weather-analysis", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)
	return rec
}

func TestHandler_AnalyzeReturnsDashboard(t *testing.T) {
	source := &stubWeather{reading: weather.Reading{Temperature: 25, Humidity: 60, Rainfall: 2}}
	completer := &stubAnalysisCompleter{reply: "type: info, message: Rain expected, action: Delay irrigation"}
	h := NewHandler(NewService(source, completer, testForecaster(), nil))

	rec := doAnalyze(t, h, `{"location": "Pune", "crop": "wheat"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var analysis Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&analysis))
	assert.Equal(t, "Partly Cloudy", analysis.CurrentWeather.Condition)
	assert.Len(t, analysis.Forecast, 3)
	require.Len(t, analysis.Insights, 1)
	assert.Equal(t, "Rain expected", analysis.Insights[0].Message)
}

func TestHandler_AnalyzeUpstreamFailureStillAnswers200(t *testing.T) {
	source := &stubWeather{err: errors.New("weather api down")}
	h := NewHandler(NewService(source, &stubAnalysisCompleter{}, testForecaster(), nil))

	rec := doAnalyze(t, h, `{"location": "Pune", "crop": "wheat"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"condition":"Error"`)
	assert.Contains(t, rec.Body.String(), `"forecast":[]`)
}

func TestHandler_AnalyzeRejectsMissingCrop(t *testing.T) {
	h := NewHandler(NewService(&stubWeather{}, &stubAnalysisCompleter{}, testForecaster(), nil))

	rec := doAnalyze(t, h, `{"location": "Pune"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_AnalyzeRejectsMalformedBody(t *testing.T) {
	h := NewHandler(NewService(&stubWeather{}, &stubAnalysisCompleter{}, testForecaster(), nil))

	rec := doAnalyze(t, h, `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
