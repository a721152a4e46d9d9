package domoticz

import "context"

// CommandSetUserVariable is the bus command that overwrites a user variable.
const CommandSetUserVariable = "setuservariable"

// Commander sends command payloads over the message bus.
type Commander interface {
	PublishCommand(ctx context.Context, command string, idx int, value string) error
}

// Store reads state through the JSON API and writes user variables through
// the message bus, the way Domoticz expects MQTT clients to do it.
type Store struct {
	api *Client
	bus Commander
}

func NewStore(api *Client, bus Commander) *Store {
	return &Store{api: api, bus: bus}
}

func (s *Store) Variable(ctx context.Context, idx int) (string, error) {
	v, err := s.api.UserVariable(ctx, idx)
	if err != nil {
		return "", err
	}
	return v.Data, nil
}

func (s *Store) SetVariable(ctx context.Context, idx int, value string) error {
	return s.bus.PublishCommand(ctx, CommandSetUserVariable, idx, value)
}

func (s *Store) DeviceValue(ctx context.Context, idx int) (string, error) {
	v, err := s.api.Device(ctx, idx)
	if err != nil {
		return "", err
	}
	return v.Data, nil
}
