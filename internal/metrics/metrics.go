package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

var (
	// Registry 是服务专用的 Prometheus registry
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "status"},
	)

	// PackagesGenerated 按结果统计套餐生成次数：ok / empty / canceled / error
	PackagesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tour_packages_generated_total", Help: "Tour package generations by outcome."},
		[]string{"outcome"},
	)
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "tour_package_search_duration_seconds", Help: "Package search duration in seconds.", Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}},
	)
	SearchNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "tour_package_search_nodes", Help: "Search tree nodes visited per package.", Buckets: prometheus.ExponentialBuckets(1, 4, 12)},
	)
	SearchPrunes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tour_package_search_prunes_total", Help: "Branches pruned during package search by reason."},
		[]string{"reason"},
	)

	CatalogReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "catalog_reloads_total", Help: "Catalog reloads by status."},
		[]string{"status"},
	)
	CatalogDroppedLinks = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "catalog_dropped_links", Help: "Tour-attraction links skipped during the last catalog load."},
	)
)

var regOnce sync.Once

// RegisterDefault 注册所有 collector，可以重复调用
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(PackagesGenerated)
		Registry.MustRegister(SearchDuration)
		Registry.MustRegister(SearchNodes)
		Registry.MustRegister(SearchPrunes)
		Registry.MustRegister(CatalogReloads)
		Registry.MustRegister(CatalogDroppedLinks)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequests.WithLabelValues(method, code).Inc()
	HTTPDuration.WithLabelValues(method, code).Observe(duration.Seconds())
}

func ObserveSearch(pkg *domain.Package) {
	outcome := "ok"
	if len(pkg.Tours) == 0 {
		outcome = "empty"
	}
	PackagesGenerated.WithLabelValues(outcome).Inc()
	SearchDuration.Observe(pkg.Stats.Elapsed.Seconds())
	SearchNodes.Observe(float64(pkg.Stats.Nodes))
	SearchPrunes.WithLabelValues("days").Add(float64(pkg.Stats.PrunedByDays))
	SearchPrunes.WithLabelValues("budget").Add(float64(pkg.Stats.PrunedByBudget))
	SearchPrunes.WithLabelValues("duplicate").Add(float64(pkg.Stats.PrunedByDuplicate))
}
