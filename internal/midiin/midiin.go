// Package midiin turns incoming MIDI into engine note events.
package midiin

import (
	"fmt"

	"github.com/icco/scopesynth/internal/event"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// ccAllNotesOff is the channel-mode message that releases every note.
const ccAllNotesOff = 123

// Omni accepts messages on every channel.
const Omni = -1

// Translate converts msg into a note event applied at the start of the next
// block. Note-on with velocity 0 becomes a note-off. channel filters by MIDI
// channel (0-15), or Omni.
func Translate(msg midi.Message, channel int) (event.Note, bool) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if accept(ch, channel) {
			return event.On(key, vel, event.Immediate), true
		}
	case msg.GetNoteEnd(&ch, &key):
		if accept(ch, channel) {
			return event.Off(key, event.Immediate), true
		}
	case msg.GetControlChange(&ch, &cc, &val):
		if cc == ccAllNotesOff && accept(ch, channel) {
			return event.AllOff(event.Immediate), true
		}
	}
	return event.Note{}, false
}

func accept(ch uint8, channel int) bool {
	return channel == Omni || int(ch) == channel
}

// Port is an open MIDI input.
type Port struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

// OpenVirtual creates a virtual input port other applications can send to.
func OpenVirtual(name string) (*Port, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	in, err := driver.OpenVirtualIn(name)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create virtual MIDI port: %w", err)
	}
	return &Port{driver: driver, in: in}, nil
}

// OpenNamed opens an existing input port by name.
func OpenNamed(name string) (*Port, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to list MIDI inputs: %w", err)
	}
	for _, in := range ins {
		if in.String() == name {
			if err := in.Open(); err != nil {
				driver.Close()
				return nil, fmt.Errorf("failed to open MIDI port %s: %w", name, err)
			}
			return &Port{driver: driver, in: in}, nil
		}
	}
	driver.Close()
	return nil, fmt.Errorf("MIDI input %q not found", name)
}

// String returns the port name.
func (p *Port) String() string { return p.in.String() }

// Listen calls recv for every incoming message until Close.
func (p *Port) Listen(recv func(msg midi.Message)) error {
	stop, err := p.in.Listen(func(data []byte, _ int32) {
		if len(data) == 0 {
			return
		}
		recv(midi.Message(data))
	}, drivers.ListenConfig{})
	if err != nil {
		return fmt.Errorf("failed to listen to MIDI port: %w", err)
	}
	p.stop = stop
	return nil
}

// Close stops listening and releases the port and driver.
func (p *Port) Close() error {
	if p.stop != nil {
		p.stop()
	}
	err := p.in.Close()
	p.driver.Close()
	return err
}
