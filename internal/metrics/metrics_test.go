package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	// Verify key metrics are registered with the default registry.
	// promauto registers automatically, so we just verify they exist
	// by writing a value and collecting it.

	PacketsReceived.WithLabelValues("DHCPDISCOVER").Inc()
	PacketsSent.WithLabelValues("DHCPOFFER", "raw").Inc()
	PacketsDiscarded.WithLabelValues("policy_reject").Inc()
	TransmitFailures.WithLabelValues("udp").Inc()
	GovernanceIgnoredMACs.Set(3)
	GovernanceQuarantines.WithLabelValues("threshold").Inc()
	GovernanceRejections.Inc()
	RecordLookups.WithLabelValues("hit").Inc()
	RecordCacheEntries.Set(42)
	HookInvocations.WithLabelValues("allow").Inc()
	ServerStartTime.SetToCurrentTime()
	ServerInfo.WithLabelValues("dev").Set(1)

	if got := testutil.ToFloat64(GovernanceIgnoredMACs); got != 3 {
		t.Errorf("GovernanceIgnoredMACs = %v, want 3", got)
	}
	if got := testutil.ToFloat64(RecordCacheEntries); got != 42 {
		t.Errorf("RecordCacheEntries = %v, want 42", got)
	}
	if got := testutil.ToFloat64(GovernanceRejections); got != 1 {
		t.Errorf("GovernanceRejections = %v, want 1", got)
	}
}

func TestMetricsNamespace(t *testing.T) {
	// All metrics should use the staticdhcpd_ namespace
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	for _, mf := range mfs {
		name := mf.GetName()
		// Skip standard go_* and process_* and promhttp_* metrics
		if strings.HasPrefix(name, "go_") ||
			strings.HasPrefix(name, "process_") ||
			strings.HasPrefix(name, "promhttp_") {
			continue
		}
		if !strings.HasPrefix(name, "staticdhcpd_") {
			t.Errorf("metric %q does not have staticdhcpd_ prefix", name)
		}
	}
}
