package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Stats is the admin view of pipeline activity since process start.
type Stats struct {
	Requests     map[string]map[string]int64 `json:"requests"`
	Providers    []ProviderStats             `json:"providers"`
	SafetyEvents map[string]int64            `json:"safetyEvents"`
	InputTokens  int64                       `json:"inputTokens"`
	OutputTokens int64                       `json:"outputTokens"`
}

type ProviderStats struct {
	Provider     string  `json:"provider"`
	Successes    int64   `json:"successes"`
	Failures     int64   `json:"failures"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// Snapshot reads the AI metric families out of gatherer.
func Snapshot(gatherer prometheus.Gatherer) (Stats, error) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	stats := Stats{
		Requests:     map[string]map[string]int64{},
		SafetyEvents: map[string]int64{},
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return stats, err
	}

	providers := map[string]*ProviderStats{}
	latencySum := map[string]float64{}
	latencyCount := map[string]uint64{}
	provider := func(name string) *ProviderStats {
		p, ok := providers[name]
		if !ok {
			p = &ProviderStats{Provider: name}
			providers[name] = p
		}
		return p
	}

	prefix := namespace + "_" + subsystem + "_"
	for _, mf := range mfs {
		if mf == nil {
			continue
		}
		switch mf.GetName() {
		case prefix + "requests_total":
			for _, metric := range mf.Metric {
				skill, outcome := label(metric, "skill"), label(metric, "outcome")
				if stats.Requests[skill] == nil {
					stats.Requests[skill] = map[string]int64{}
				}
				stats.Requests[skill][outcome] += counterValue(metric)
			}
		case prefix + "provider_attempts_total":
			for _, metric := range mf.Metric {
				p := provider(label(metric, "provider"))
				if label(metric, "status") == "ok" {
					p.Successes += counterValue(metric)
				} else {
					p.Failures += counterValue(metric)
				}
			}
		case prefix + "provider_latency_seconds":
			for _, metric := range mf.Metric {
				h := metric.GetHistogram()
				if h == nil || label(metric, "status") != "ok" {
					continue
				}
				name := label(metric, "provider")
				latencySum[name] += h.GetSampleSum()
				latencyCount[name] += h.GetSampleCount()
			}
		case prefix + "safety_events_total":
			for _, metric := range mf.Metric {
				stats.SafetyEvents[label(metric, "kind")] += counterValue(metric)
			}
		case prefix + "tokens_total":
			for _, metric := range mf.Metric {
				if label(metric, "direction") == "input" {
					stats.InputTokens += counterValue(metric)
				} else {
					stats.OutputTokens += counterValue(metric)
				}
			}
		}
	}

	for name, count := range latencyCount {
		if count > 0 {
			provider(name).AvgLatencyMs = latencySum[name] / float64(count) * 1000.0
		}
	}
	stats.Providers = make([]ProviderStats, 0, len(providers))
	for _, p := range providers {
		stats.Providers = append(stats.Providers, *p)
	}
	sort.Slice(stats.Providers, func(i, j int) bool { return stats.Providers[i].Provider < stats.Providers[j].Provider })
	return stats, nil
}

func label(metric *dto.Metric, name string) string {
	if metric == nil {
		return ""
	}
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func counterValue(metric *dto.Metric) int64 {
	if metric == nil || metric.GetCounter() == nil {
		return 0
	}
	return int64(metric.GetCounter().GetValue())
}
