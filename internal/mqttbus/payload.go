package mqttbus

// MetricPayload updates a Domoticz device.
type MetricPayload struct {
	Idx    int    `json:"idx"`
	RSSI   int    `json:"RSSI"`
	NValue int    `json:"nvalue"`
	SValue string `json:"svalue"`
}

// CommandPayload runs a Domoticz command such as setuservariable.
type CommandPayload struct {
	Command string `json:"command"`
	Idx     int    `json:"idx"`
	Value   string `json:"value"`
}
