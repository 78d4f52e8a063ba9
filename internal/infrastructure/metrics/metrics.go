package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	EntriesPosted   *prometheus.CounterVec
	PostingDuration prometheus.Histogram
	PostingErrors   *prometheus.CounterVec
	EntryAmount     *prometheus.HistogramVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountBalance    *prometheus.GaugeVec
	AccountOperations *prometheus.CounterVec

	// Interest accrual metrics
	AccrualsPosted   prometheus.Counter
	AccrualsSkipped  prometheus.Counter
	AccrualsFailed   prometheus.Counter
	AccrualRunTime   prometheus.Histogram
	InterestAccrued  prometheus.Counter
	AccrualRunErrors prometheus.Counter

	// Reward metrics
	QualifyingRepayments prometheus.Counter
	APRReductions        prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		EntriesPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_entries_posted_total",
				Help: "Total number of ledger entries posted by kind",
			},
			[]string{"kind"},
		),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		PostingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_posting_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),
		EntryAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanledger_entry_amount",
				Help:    "Posted entry amounts by kind",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
			},
			[]string{"kind"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_accounts_created_total",
			Help: "Total number of loan accounts created",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loanledger_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_id", "currency"},
		),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Interest accrual metrics
		AccrualsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_accruals_posted_total",
			Help: "Total number of daily interest entries posted",
		}),
		AccrualsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_accruals_skipped_total",
			Help: "Total number of accruals skipped (zero interest or already accrued)",
		}),
		AccrualsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_accruals_failed_total",
			Help: "Total number of per-account accrual failures",
		}),
		AccrualRunTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_accrual_run_duration_seconds",
			Help:    "Duration of full accrual runs",
			Buckets: prometheus.DefBuckets,
		}),
		InterestAccrued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_interest_accrued_total",
			Help: "Total interest amount accrued",
		}),
		AccrualRunErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_accrual_run_errors_total",
			Help: "Total number of accrual runs that failed outright",
		}),

		// Reward metrics
		QualifyingRepayments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_qualifying_repayments_total",
			Help: "Total number of qualifying repayments observed",
		}),
		APRReductions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_apr_reductions_total",
			Help: "Total number of APR step-downs applied",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loanledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_outbox_errors_total",
			Help: "Total outbox publishing errors",
		}),
	}
}
