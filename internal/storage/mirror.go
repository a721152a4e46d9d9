package storage

import "context"

// Publisher is the bus-facing publish API.
type Publisher interface {
	PublishMetric(ctx context.Context, idx int, svalue string) error
	PublishCommand(ctx context.Context, command string, idx int, value string) error
}

// Mirror forwards publishes and records each published metric as the
// device's current value, so a local state backend can read back monthly
// totals the same way Domoticz does.
type Mirror struct {
	Next  Publisher
	Store Store
}

func (m Mirror) PublishMetric(ctx context.Context, idx int, svalue string) error {
	if err := m.Next.PublishMetric(ctx, idx, svalue); err != nil {
		return err
	}
	return m.Store.SetDeviceValue(ctx, idx, svalue)
}

func (m Mirror) PublishCommand(ctx context.Context, command string, idx int, value string) error {
	return m.Next.PublishCommand(ctx, command, idx, value)
}
