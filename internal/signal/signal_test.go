package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRSSISentinel(t *testing.T) {
	got := Normalize(Sample{RSSI: ">=-51dBm"})
	assert.Equal(t, Reading{Name: RSSI, Value: "-51"}, got[2])
}

func TestNormalizePassesThrough(t *testing.T) {
	in := Sample{
		RSRQ:   "-9dB",
		RSRP:   "-95dBm",
		RSSI:   "-75dBm",
		SINR:   "12dB",
		CellID: "27447297",
	}
	got := Normalize(in)
	assert.Equal(t, []Reading{
		{Name: RSRQ, Value: "-9dB"},
		{Name: RSRP, Value: "-95dBm"},
		{Name: RSSI, Value: "-75dBm"},
		{Name: SINR, Value: "12dB"},
		{Name: CellID, Value: "27447297"},
	}, got)
}

func TestNormalizeOnlyExactSentinel(t *testing.T) {
	for _, v := range []string{">=-51 dBm", ">=-51dbm", " >=-51dBm", "-51dBm", ">=-50dBm"} {
		got := Normalize(Sample{RSSI: v})
		assert.Equal(t, v, got[2].Value)
	}
}

func TestNormalizeMissing(t *testing.T) {
	got := Normalize(Sample{})
	assert.Len(t, got, 5)
	for _, r := range got {
		assert.Empty(t, r.Value)
	}
}
