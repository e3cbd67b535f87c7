// Package metrics defines and registers the custom Prometheus metrics of the
// fluxgen API. It is the single source of truth for metric names, labels, and
// help strings. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fluxgen"

// ── Generation metrics ───────────────────────────────────────────────────────

// GenerationsTotal counts generation attempts that passed the gate.
// Labels:
//   - model: the requested model id
//   - outcome: "ok", "upstream_error", "network_error"
var GenerationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Total number of image generation calls, by model and outcome.",
	},
	[]string{"model", "outcome"},
)

// GateDenialsTotal counts submissions refused by the generation gate.
// Label:
//   - reason: "login_required_for_model" or "anonymous_quota_exhausted"
var GateDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_denials_total",
		Help:      "Total number of generation requests denied by the gate.",
	},
	[]string{"reason"},
)

// GenerationDuration measures the round trip to the generation API.
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of calls to the image generation API.",
		Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
	},
	[]string{"model"},
)

// GalleryWritesTotal counts gallery appends.
// Label:
//   - result: "ok" or "error"
var GalleryWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gallery_writes_total",
		Help:      "Total number of gallery writes, by result.",
	},
	[]string{"result"},
)

// ── Entitlement metrics ──────────────────────────────────────────────────────

// EntitlementResolutionsTotal counts resolver calls.
// Label:
//   - result: "created", "upgraded", "unchanged", "cache_hit", "error"
var EntitlementResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entitlement_resolutions_total",
		Help:      "Total number of entitlement resolutions, labelled by result.",
	},
	[]string{"result"},
)

// AuthEventsQueueDepth tracks pending auth events per dispatcher worker.
var AuthEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auth_events_queue_depth",
		Help:      "Current number of auth events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Download proxy ───────────────────────────────────────────────────────────

// DownloadsTotal counts proxied image downloads.
// Label:
//   - status: HTTP status returned to the caller
var DownloadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Total number of proxied image downloads, by response status.",
	},
	[]string{"status"},
)
