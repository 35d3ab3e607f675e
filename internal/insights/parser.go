package insights

import (
	"log/slog"
	"strings"

	"github.com/cropweather-ai/cropweather/internal/metrics"
)

var validInsightTypes = map[string]bool{
	"warning": true,
	"info":    true,
	"success": true,
}

// fallbackInsight stands in when the model's reply yields nothing usable.
var fallbackInsight = Insight{
	Type:    "info",
	Message: "Weather conditions are stable.",
	Action:  "Continue with your current farming schedule.",
}

// ParseInsights extracts structured insights from a model reply formatted as
// one "type: X, message: Y, action: Z" line per insight. Unparseable lines
// are skipped; an empty result degrades to a single stable-conditions
// insight. At most three insights are returned.
func ParseInsights(raw string) []Insight {
	insights := make([]Insight, 0, 3)

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		insight, ok := parseInsightLine(line)
		if !ok {
			slog.Warn("could not parse insight line", "line", line)
			metrics.InsightParseFailuresTotal.Inc()
			continue
		}
		insights = append(insights, insight)
	}

	if len(insights) == 0 {
		insights = append(insights, fallbackInsight)
	}
	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

func parseInsightLine(line string) (Insight, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return Insight{}, false
	}

	values := make([]string, 3)
	for i := 0; i < 3; i++ {
		kv := strings.SplitN(parts[i], ":", 2)
		if len(kv) < 2 {
			return Insight{}, false
		}
		values[i] = strings.TrimSpace(kv[1])
	}

	if !validInsightTypes[values[0]] {
		return Insight{}, false
	}
	return Insight{Type: values[0], Message: values[1], Action: values[2]}, true
}
