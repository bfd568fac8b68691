package service

import "github.com/prometheus/client_golang/prometheus"

var auditsRun = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "seodash_audits_total",
		Help: "Site audits by outcome.",
	},
	[]string{"outcome"},
)

var auditPages = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "seodash_audit_pages",
		Help:    "Pages analysed per audit.",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	},
)

var generationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "seodash_content_generations_total",
		Help: "Content generation attempts by outcome.",
	},
	[]string{"outcome"},
)

var researchCache = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "seodash_keyword_cache_total",
		Help: "Keyword research cache lookups by result.",
	},
	[]string{"result"},
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{auditsRun, auditPages, generationsTotal, researchCache}
}
