// Package metrics exposes Prometheus counters for the web server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finanzas_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "status"})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finanzas_ledger_mutations_total",
		Help: "Ledger mutations by entity and outcome.",
	}, []string{"entity", "outcome"})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finanzas_cache_events_total",
		Help: "Dashboard cache hits and misses.",
	}, []string{"event"})

	changesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finanzas_changes_published_total",
		Help: "Change messages published to the broker.",
	})
)

func ObserveRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func ObserveMutation(entity string, ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	mutations.WithLabelValues(entity, outcome).Inc()
}

func CacheHit()  { cacheEvents.WithLabelValues("hit").Inc() }
func CacheMiss() { cacheEvents.WithLabelValues("miss").Inc() }

func ChangePublished() { changesPublished.Inc() }

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
