package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cottand/boolex/rewrite"
	"github.com/prometheus/client_golang/prometheus"
)

// runStats reports how much the rewrite counters moved during one command run.
// The counters are process wide, so the values at the start of the run are
// subtracted from the ones printed.
type runStats struct {
	reg      prometheus.Gatherer
	baseline map[string]float64
}

// newStatsRegistry collects the rewrite counters of one command run
func newStatsRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := rewrite.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// startStats snapshots the rewrite counters before a run
func startStats() (*runStats, error) {
	reg, err := newStatsRegistry()
	if err != nil {
		return nil, err
	}
	baseline, err := counterValues(reg)
	if err != nil {
		return nil, err
	}
	return &runStats{reg: reg, baseline: baseline}, nil
}

// print writes every counter that changed since the snapshot as name{labels} delta
func (s *runStats) print(w io.Writer) error {
	current, err := counterValues(s.reg)
	if err != nil {
		return err
	}
	var lines []string
	for name, value := range current {
		if delta := value - s.baseline[name]; delta != 0 {
			lines = append(lines, fmt.Sprintf("%s %v", name, delta))
		}
	}
	slices.Sort(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// counterValues reads every counter of reg, keyed by name{labels}
func counterValues(reg prometheus.Gatherer) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			name := family.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			values[name] = m.GetCounter().GetValue()
		}
	}
	return values, nil
}
