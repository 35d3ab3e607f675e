package insights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cropweather-ai/cropweather/internal/events"
	"github.com/cropweather-ai/cropweather/internal/llm"
	"github.com/cropweather-ai/cropweather/internal/metrics"
	"github.com/cropweather-ai/cropweather/internal/middleware"
	"github.com/cropweather-ai/cropweather/internal/weather"
)

const analysisSystemPrompt = `You are a farming expert. Based on the provided weather data for a specific crop and location, generate exactly 3 brief, actionable insights. For each insight, you MUST provide a 'type' (warning, info, or success), a 'message', and a recommended 'action'. Format your response as a simple list of sentences, one insight per line, like this:
type: [type], message: [message], action: [action]
type: [type], message: [message], action: [action]
type: [type], message: [message], action: [action]`

// WeatherSource supplies the current observation for a location.
type WeatherSource interface {
	Current(ctx context.Context, location string) (weather.Reading, error)
}

// Service assembles the weather-analysis dashboard payload.
type Service struct {
	weather    WeatherSource
	completer  llm.Completer
	forecaster Forecaster
	publisher  *events.Publisher
}

func NewService(source WeatherSource, completer llm.Completer, forecaster Forecaster, publisher *events.Publisher) *Service {
	return &Service{
		weather:    source,
		completer:  completer,
		forecaster: forecaster,
		publisher:  publisher,
	}
}

// Analyze builds the dashboard for a location and crop. It never returns an
// error: when the weather fetch or the completion fails, the caller gets a
// degraded payload the frontend can still render.
func (s *Service) Analyze(ctx context.Context, location, crop string) Analysis {
	reading, err := s.weather.Current(ctx, location)
	if err != nil {
		slog.Error("fetching current weather for analysis", "location", location, "error", err)
		return s.degraded(ctx, location, crop)
	}

	current := CurrentWeather{
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		Rainfall:    reading.Rainfall,
		WindSpeed:   s.forecaster.WindSpeed(),
		Condition:   "Partly Cloudy",
	}

	forecast := s.forecaster.Forecast(current.Temperature, current.Rainfall)

	minTemp, maxTemp, totalRain := forecastRange(forecast)
	userPrompt := fmt.Sprintf(`Here is the weather data for %s, where I am growing %s:
Current Weather: Temperature %g°C, Humidity %g%%.
7-Day Forecast: Temperatures will range from %.1f°C to %.1f°C. Total expected rainfall over the next week is %.1fmm.

Based on this, provide 3 actionable insights for my %s crop.`, location, crop, current.Temperature, current.Humidity, minTemp, maxTemp, totalRain, crop)

	reply, err := s.completer.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: analysisSystemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	})
	if err != nil {
		slog.Error("generating insights", "location", location, "crop", crop, "error", err)
		return s.degraded(ctx, location, crop)
	}

	analysis := Analysis{
		CurrentWeather: current,
		Forecast:       forecast,
		Insights:       ParseInsights(reply),
	}
	s.publish(ctx, location, crop, len(analysis.Insights), false)
	return analysis
}

// degraded is the payload returned when weather or completion fails. The
// shapes stay intact so the dashboard renders instead of erroring.
func (s *Service) degraded(ctx context.Context, location, crop string) Analysis {
	s.publish(ctx, location, crop, 1, true)
	return Analysis{
		CurrentWeather: CurrentWeather{Condition: "Error"},
		Forecast:       []ForecastDay{},
		Insights: []Insight{{
			Type:    "warning",
			Message: "Could not fetch weather data.",
			Action:  "Please try again later.",
		}},
	}
}

func (s *Service) publish(ctx context.Context, location, crop string, insightCount int, degraded bool) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	metrics.AnalysesTotal.WithLabelValues(outcome).Inc()

	if err := s.publisher.PublishAnalysis(ctx, events.AnalysisEvent{
		RequestID:    middleware.GetRequestID(ctx),
		Location:     location,
		Crop:         crop,
		InsightCount: insightCount,
		Degraded:     degraded,
		Timestamp:    time.Now().UTC(),
	}); err != nil {
		slog.Warn("publishing analysis event", "error", err)
	}
}

func forecastRange(forecast []ForecastDay) (minTemp, maxTemp, totalRain float64) {
	for i, day := range forecast {
		if i == 0 || day.Temp < minTemp {
			minTemp = day.Temp
		}
		if i == 0 || day.Temp > maxTemp {
			maxTemp = day.Temp
		}
		totalRain += day.Rain
	}
	return minTemp, maxTemp, totalRain
}
