package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "certdesk"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	Renders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "renders_total", Help: "Certificate renders by outcome."},
		[]string{"outcome"},
	)
	FieldFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "field_fill_failures_total", Help: "Fields that could not be written during a fill, by template."},
		[]string{"template"},
	)
	ValueSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "field_value_saves_total", Help: "Field value set writes by outcome (ok, retry, conflict, error)."},
		[]string{"outcome"},
	)
	NamedInsuredLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "named_insured_lookups_total", Help: "Named insured lookups by result (found, empty, error, cached)."},
		[]string{"result"},
	)
	TemplateResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "template_resolutions_total", Help: "Template byte resolutions by source (stored, local, placeholder)."},
		[]string{"source"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Renders)
	reg.MustRegister(FieldFailures)
	reg.MustRegister(ValueSaves)
	reg.MustRegister(NamedInsuredLookups)
	reg.MustRegister(TemplateResolutions)
}
