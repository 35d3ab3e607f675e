package insights

// Request is the body of POST /api/weather-analysis.
type Request struct {
	Location string `json:"location" validate:"required"`
	Crop     string `json:"crop" validate:"required"`
}

// CurrentWeather mirrors the dashboard's current-conditions card. WindSpeed
// and Condition are placeholders until a real wind source is wired.
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
}

// ForecastDay is one day of the simulated week.
type ForecastDay struct {
	Day       string  `json:"day"`
	Temp      float64 `json:"temp"`
	Rain      float64 `json:"rain"`
	Condition string  `json:"condition"`
}

// Insight is one actionable recommendation for the farmer.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// Analysis is the full dashboard payload.
type Analysis struct {
	CurrentWeather CurrentWeather `json:"currentWeather"`
	Forecast       []ForecastDay  `json:"forecast"`
	Insights       []Insight      `json:"insights"`
}
