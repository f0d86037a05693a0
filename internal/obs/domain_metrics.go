package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart mutation outcomes per operation.
	CartMutationsTotal *prometheus.CounterVec
	// CartHydrationsTotal counts how persisted carts were found when a store was opened.
	CartHydrationsTotal *prometheus.CounterVec
	// CheckoutHandoffsTotal counts checkout hand-offs per channel and outcome.
	CheckoutHandoffsTotal *prometheus.CounterVec
	// CartSessionsOpen tracks the number of stores held by the session registry.
	CartSessionsOpen prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation and result.",
		}, []string{"operation", "result"})
		CartHydrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_hydrations_total",
			Help:      "Count of cart hydrations from storage by result.",
		}, []string{"result"})
		CheckoutHandoffsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_handoffs_total",
			Help:      "Count of checkout hand-offs by channel and result.",
		}, []string{"channel", "result"})
		CartSessionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_sessions_open",
			Help:      "Number of cart sessions held in memory.",
		})

		mustRegisterCollector(reg, CartMutationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationsTotal = v
			}
		})
		mustRegisterCollector(reg, CartHydrationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartHydrationsTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutHandoffsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutHandoffsTotal = v
			}
		})
		mustRegisterCollector(reg, CartSessionsOpen, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				CartSessionsOpen = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
