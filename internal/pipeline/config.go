package pipeline

import (
	"lte2mqtt/internal/signal"
	"lte2mqtt/internal/traffic"
)

// Devices maps each published quantity to its Domoticz device idx.
type Devices struct {
	RSRQ   int
	RSRP   int
	RSSI   int
	SINR   int
	CellID int

	DailyDownload   int
	DailyUpload     int
	MonthlyDownload int
	MonthlyUpload   int
	AverageDownload int
	AverageUpload   int
}

func (d Devices) signalIdx(name string) int {
	switch name {
	case signal.RSRQ:
		return d.RSRQ
	case signal.RSRP:
		return d.RSRP
	case signal.RSSI:
		return d.RSSI
	case signal.SINR:
		return d.SINR
	case signal.CellID:
		return d.CellID
	}
	return 0
}

// Variables maps the baselines to Domoticz user variable idx.
type Variables struct {
	BaselineDownload int
	BaselineUpload   int
}

type Config struct {
	Devices    Devices
	Variables  Variables
	Accountant traffic.Accountant
	Reset      traffic.ResetPolicy
}
