package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exported by the service
var Registry = prometheus.NewRegistry()

var (
	// KVOperations counts key-value engine calls by backend, operation and result
	KVOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todolist",
		Subsystem: "kv",
		Name:      "operations_total",
		Help:      "Key-value store operations by backend, operation and result.",
	}, []string{"backend", "op", "result"})

	// KVDuration observes key-value engine latency
	KVDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "todolist",
		Subsystem: "kv",
		Name:      "operation_duration_seconds",
		Help:      "Key-value store operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "op"})

	// TodoCommands counts manager commands by kind and result
	TodoCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todolist",
		Subsystem: "todo",
		Name:      "commands_total",
		Help:      "Todo manager commands by kind and result.",
	}, []string{"command", "result"})
)

func init() {
	Registry.MustRegister(
		KVOperations,
		KVDuration,
		TodoCommands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Result maps an error to the "result" label value
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
