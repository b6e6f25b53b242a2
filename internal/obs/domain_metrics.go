package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutAttemptTotal counts checkout attempts by terminal result.
	CheckoutAttemptTotal *prometheus.CounterVec
	// CheckoutItemsSubmitted counts items accepted by the external cart.
	CheckoutItemsSubmitted prometheus.Counter
	// DiscountApplicationTotal counts effective-price computations by whether
	// a tier matched.
	DiscountApplicationTotal *prometheus.CounterVec
	// FeedWriteTotal counts feed administration writes by operation.
	FeedWriteTotal *prometheus.CounterVec
	// CatalogSearchTotal counts catalog/search lookups by outcome.
	CatalogSearchTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutAttemptTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_attempt_total",
			Help:      "Count of checkout attempts by terminal result.",
		}, []string{"result"})
		CheckoutItemsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_items_submitted_total",
			Help:      "Number of consolidated items accepted by the cart service.",
		})
		DiscountApplicationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_application_total",
			Help:      "Count of authoritative price computations by tier match.",
		}, []string{"matched"})
		FeedWriteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_write_total",
			Help:      "Count of pricing feed writes by operation.",
		}, []string{"op"})
		CatalogSearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_search_total",
			Help:      "Count of catalog lookups by outcome.",
		}, []string{"result"})

		mustRegisterCollector(reg, CheckoutAttemptTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutAttemptTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutItemsSubmitted, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CheckoutItemsSubmitted = v
			}
		})
		mustRegisterCollector(reg, DiscountApplicationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountApplicationTotal = v
			}
		})
		mustRegisterCollector(reg, FeedWriteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FeedWriteTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogSearchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogSearchTotal = v
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
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
