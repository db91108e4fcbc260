// Package metrics defines all Prometheus metrics for staticdhcpd.
// All metrics use the "staticdhcpd_" prefix.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "staticdhcpd"

// --- DHCP Packet Metrics ---

var (
	// PacketsReceived counts DHCP packets received by message type.
	PacketsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_received_total",
		Help:      "Total DHCP packets received, by message type.",
	}, []string{"msg_type"})

	// PacketsSent counts DHCP packets sent by message type and responder.
	PacketsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_sent_total",
		Help:      "Total DHCP packets sent, by message type and responder.",
	}, []string{"msg_type", "responder"})

	// PacketsDiscarded counts packets dropped before a reply was sent, by
	// the error-taxonomy reason (spec §7): malformed, unknown_message_type,
	// policy_reject, record_lookup_failure, hook_veto.
	PacketsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_discarded_total",
		Help:      "Total packets discarded without a reply, by reason.",
	}, []string{"reason"})

	// TransmitFailures counts responder Send failures (spec §7: logged, no retry).
	TransmitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transmit_failures_total",
		Help:      "Total outbound send failures, by responder.",
	}, []string{"responder"})

	// PacketProcessingDuration tracks DHCP packet handling latency.
	PacketProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "packet_processing_duration_seconds",
		Help:      "DHCP packet processing duration in seconds.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"msg_type"})
)

// --- Governance Metrics (spec §4.4) ---

var (
	// GovernanceIgnoredMACs is a gauge of MACs currently under quarantine.
	GovernanceIgnoredMACs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "governance_ignored_macs",
		Help:      "Number of MAC addresses currently under quarantine.",
	})

	// GovernanceQuarantines counts quarantine events, by cause (threshold,
	// unknown_mac, malformed_inform).
	GovernanceQuarantines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "governance_quarantines_total",
		Help:      "Total MAC quarantine events, by cause.",
	}, []string{"cause"})

	// GovernanceRejections counts requests rejected by Admit because the
	// MAC was already under quarantine.
	GovernanceRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "governance_rejections_total",
		Help:      "Total requests rejected because the MAC was under quarantine.",
	})
)

// --- Record Source Metrics ---

var (
	// RecordLookups counts record-source lookups by outcome (hit, miss,
	// unknown_mac_hook, error).
	RecordLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_lookups_total",
		Help:      "Total record-source lookups, by outcome.",
	}, []string{"outcome"})

	// RecordCacheEntries is a gauge of entries held in the in-process cache.
	RecordCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "record_cache_entries",
		Help:      "Number of entries currently held in the record cache.",
	})

	// RecordLookupDuration tracks record-source lookup latency.
	RecordLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "record_lookup_duration_seconds",
		Help:      "Record-source lookup duration in seconds.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})
)

// --- Hook Metrics (spec §4.7) ---

var (
	// HookInvocations counts response-hook invocations by result (allow, veto).
	HookInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hook_invocations_total",
		Help:      "Total response hook invocations, by result.",
	}, []string{"result"})

	// HookDuration tracks response-hook execution latency.
	HookDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hook_execution_duration_seconds",
		Help:      "Response hook execution duration in seconds.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})
)

// --- Server Info ---

var (
	// ServerInfo is a constant gauge with server metadata.
	ServerInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "server_info",
		Help:      "Server build and version info.",
	}, []string{"version"})

	// ServerStartTime tracks server start time as a unix timestamp.
	ServerStartTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "server_start_time_seconds",
		Help:      "Server start time as Unix timestamp.",
	})
)
