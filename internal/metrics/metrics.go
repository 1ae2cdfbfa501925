package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunter_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hunter_fetch_duration_seconds",
			Help:    "Duration of each provider fetch (run start to dataset download) in seconds.",
			Buckets: []float64{15, 30, 60, 120, 300, 900},
		},
	)
	FetchedJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hunter_jobs_fetched_total",
			Help: "Total number of raw job records fetched from the provider.",
		},
	)
	AdmittedJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hunter_jobs_admitted_total",
			Help: "Total number of jobs that passed all admission rules.",
		},
	)
	RejectedJobsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunter_jobs_rejected_total",
			Help: "Total number of jobs rejected, by admission rule.",
		},
		[]string{"rule"},
	)
	OutreachStepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "hunter_outreach_step_duration_seconds",
			Help:       "Duration of each step in per-job outreach processing.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
	ProcessedJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hunter_jobs_processed_total",
			Help: "Total number of jobs the outreach pipeline completed.",
		},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(FetchedJobsCounter)
	prometheus.MustRegister(AdmittedJobsCounter)
	prometheus.MustRegister(RejectedJobsCounter)
	prometheus.MustRegister(OutreachStepDuration)
	prometheus.MustRegister(ProcessedJobsCounter)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
