package insights

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

var forecastConditions = []string{"sunny", "partly-cloudy", "cloudy", "light-rain", "rain"}

// Forecaster produces the week-ahead outlook and the placeholder wind
// reading for the current-conditions card.
type Forecaster interface {
	Forecast(temperature, rainfall float64) []ForecastDay
	WindSpeed() float64
}

// SimulatedForecaster derives a 7-day outlook from the current observation.
// There is no forecast API behind it; each day jitters the observed values.
type SimulatedForecaster struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedForecaster creates a forecaster. A nil rng falls back to a
// randomly seeded one; tests pass a seeded rng for determinism.
func NewSimulatedForecaster(rng *rand.Rand) *SimulatedForecaster {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SimulatedForecaster{rng: rng}
}

// Forecast returns seven days starting with "Today". Today keeps the
// observed rainfall; later days jitter it and clamp at zero. Temperature
// jitters on every day, today included.
func (f *SimulatedForecaster) Forecast(temperature, rainfall float64) []ForecastDay {
	f.mu.Lock()
	defer f.mu.Unlock()

	forecast := make([]ForecastDay, 0, 7)
	for i := 0; i < 7; i++ {
		dayTemp := temperature + f.uniform(-3, 3)

		dayRain := rainfall
		if i > 0 {
			dayRain = math.Max(0, rainfall+f.uniform(-2, 5))
		}

		dayName := "Today"
		if i > 0 {
			dayName = fmt.Sprintf("Day %d", i+1)
		}

		forecast = append(forecast, ForecastDay{
			Day:       dayName,
			Temp:      round1(dayTemp),
			Rain:      round1(dayRain),
			Condition: forecastConditions[f.rng.IntN(len(forecastConditions))],
		})
	}
	return forecast
}

// WindSpeed returns a placeholder between 5 and 15 km/h.
func (f *SimulatedForecaster) WindSpeed() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return float64(5 + f.rng.IntN(11))
}

func (f *SimulatedForecaster) uniform(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
