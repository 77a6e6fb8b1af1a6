package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vegan_scans_total",
			Help: "Total scans and searches by outcome",
		},
		[]string{"mode", "status", "verdict"},
	)

	ScanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vegan_scan_duration_seconds",
			Help:    "Time spent on one scan or search, model call included",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 60, 120},
		},
		[]string{"mode"},
	)

	ToolCalls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vegan_tool_calls_total",
			Help: "Ingredient lookups requested by the model",
		},
	)

	IngredientMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vegan_ingredient_matches_total",
			Help: "Ingredient lookup results by status",
		},
		[]string{"status"},
	)
)

var once sync.Once

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(ScansTotal)
		prometheus.MustRegister(ScanDuration)
		prometheus.MustRegister(ToolCalls)
		prometheus.MustRegister(IngredientMatches)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
