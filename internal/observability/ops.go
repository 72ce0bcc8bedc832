package observability

import (
	"net/http"
	_ "net/http/pprof"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var opsOnce sync.Once

// StartOps serves Prometheus metrics and pprof on addr in a background
// goroutine. The pprof handlers sit on the default mux via the side-effect
// import; /metrics is added next to them.
func StartOps(addr string) {
	opsOnce.Do(func() {
		RegisterMetrics()
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Str("addr", addr).Msg("ops listener started")
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("ops listener stopped")
			}
		}()
	})
}
