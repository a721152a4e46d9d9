// Package signal maps the router's signal readings to bus metrics.
package signal

// RSSISentinel is what the firmware reports when RSSI saturates at -51 dBm.
const RSSISentinel = ">=-51dBm"

// Metric names as reported by the router.
const (
	RSRQ   = "rsrq"
	RSRP   = "rsrp"
	RSSI   = "rssi"
	SINR   = "sinr"
	CellID = "cell_id"
)

// Names is the fixed publish order.
var Names = []string{RSRQ, RSRP, RSSI, SINR, CellID}

// Sample holds one tick's readings, keyed by metric name.
type Sample map[string]string

// Reading is a normalized metric ready to publish.
type Reading struct {
	Name  string
	Value string
}

// Normalize returns the readings in publish order. Values are passed through
// verbatim except the exact RSSI saturation sentinel, which becomes "-51".
// Missing metrics are returned with an empty value.
func Normalize(s Sample) []Reading {
	out := make([]Reading, 0, len(Names))
	for _, name := range Names {
		v := s[name]
		if name == RSSI && v == RSSISentinel {
			v = "-51"
		}
		out = append(out, Reading{Name: name, Value: v})
	}
	return out
}
