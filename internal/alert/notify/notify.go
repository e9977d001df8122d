// Package notify fans out firing alerts to pluggable notification channels.
package notify

import "github.com/mqasimca/nvctl/internal/alert"

// Channel delivers one alert. Implementations should be fast and
// non-blocking where possible; a slow channel delays the rest of the
// dispatch list.
type Channel interface {
	Notify(a alert.Alert) error
	Name() string
}

// Manager holds an ordered list of channels and fans out to all of them. A
// channel failure is logged by the caller (see NotifyAll's error slice) and
// never aborts dispatch to the remaining channels.
type Manager struct {
	channels []Channel
}

func NewManager(channels ...Channel) *Manager {
	return &Manager{channels: channels}
}

// ChannelError pairs a channel name with the error it returned, so the
// caller can log each failure without losing which channel produced it.
type ChannelError struct {
	Channel string
	Err     error
}

// NotifyAll dispatches a to every channel in order, skipping Silenced
// alerts entirely. It always attempts every channel and returns every
// failure rather than stopping at the first one.
func (m *Manager) NotifyAll(a alert.Alert) []ChannelError {
	if a.State == alert.StateSilenced {
		return nil
	}

	var errs []ChannelError

	for _, ch := range m.channels {
		if err := ch.Notify(a); err != nil {
			errs = append(errs, ChannelError{Channel: ch.Name(), Err: err})
		}
	}

	return errs
}
