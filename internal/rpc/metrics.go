package rpc

import (
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestsTotal счётчик исходящих вызовов удалённых сервисов.
// Регистрируется через RegisterMetrics.
var RequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_rpc_requests_total",
		Help: "Total number of outbound RPC calls",
	},
	[]string{"method", "endpoint", "code"},
)

// RequestDuration гистограмма длительности исходящих вызовов.
var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "storefront_rpc_request_duration_seconds",
		Help:    "Outbound RPC call duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "endpoint"},
)

// RegisterMetrics регистрирует метрики пакета в реестре Prometheus.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(RequestsTotal)
	reg.MustRegister(RequestDuration)
}

func observe(method, endpoint string, resp *resty.Response, err error, elapsed time.Duration) {
	code := "error"
	if resp != nil && resp.StatusCode() > 0 {
		code = strconv.Itoa(resp.StatusCode())
	} else if c := StatusCode(err); c > 0 {
		code = strconv.Itoa(c)
	}
	RequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
