package model

import (
	"encoding/json"
	"time"
)

// Metric is a single risk statistic or the reason it could not be computed.
type Metric struct {
	Value float64
	Err   error
}

// OK reports whether the metric holds a value.
func (m Metric) OK() bool { return m.Err == nil }

// MarshalJSON writes {"value": v, "status": "ok"} or {"value": null, "status": "<error>"}.
func (m Metric) MarshalJSON() ([]byte, error) {
	out := struct {
		Value  *float64 `json:"value"`
		Status string   `json:"status"`
	}{Status: "ok"}
	if m.Err != nil {
		out.Status = m.Err.Error()
	} else {
		v := m.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// RiskMetrics holds the per-metric results for one instrument.
type RiskMetrics struct {
	Volatility  Metric `json:"volatility"`
	Beta        Metric `json:"beta"`
	MaxDrawdown Metric `json:"max_drawdown"`
	Sharpe      Metric `json:"sharpe_ratio"`
	VaR         Metric `json:"var"`
}

// RiskReport is the risk view of one instrument against a benchmark.
type RiskReport struct {
	Ticker       string      `json:"ticker"`
	Benchmark    string      `json:"benchmark"`
	From         time.Time   `json:"from"`
	To           time.Time   `json:"to"`
	Observations int         `json:"observations"`
	Confidence   float64     `json:"confidence"`
	Metrics      RiskMetrics `json:"metrics"`
	Prices       PriceSeries `json:"prices"`
	Commentary   string      `json:"commentary,omitempty"`
}
