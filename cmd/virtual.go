package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/scopesynth/internal/audio"
	"github.com/icco/scopesynth/internal/engine"
	"github.com/icco/scopesynth/internal/event"
	"github.com/icco/scopesynth/internal/midiin"
	"github.com/icco/scopesynth/internal/tui"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/sync/errgroup"
)

var (
	deviceName     string
	inputPort      string
	midiChannel    int
	headless       bool
	reportInterval time.Duration
)

var virtualCmd = &cobra.Command{
	Use:   "virtual",
	Short: "Create a virtual MIDI device with audio output",
	Long: `Create a virtual MIDI input device that can receive MIDI commands from other applications.

The virtual device will show up as a MIDI output destination in other music software.
Any MIDI notes received are played through the system audio output, and the
output waveform is drawn on the oscilloscope.

Example:
  scopesynth virtual --name "My Synth"
  scopesynth virtual --port "IAC Driver Bus 1" --channel 10
  scopesynth virtual --headless --report 2s
`,
	RunE: runVirtual,
}

func init() {
	virtualCmd.Flags().StringVarP(&deviceName, "name", "n", "Scopesynth Virtual Synth", "Name for the virtual MIDI device")
	virtualCmd.Flags().StringVarP(&inputPort, "port", "p", "", "Listen on an existing MIDI input instead of a virtual one")
	virtualCmd.Flags().IntVarP(&midiChannel, "channel", "c", 0, "MIDI channel to play (1-16, 0 for all)")
	virtualCmd.Flags().BoolVar(&headless, "headless", false, "Run without the TUI")
	virtualCmd.Flags().DurationVar(&reportInterval, "report", 5*time.Second, "Interval between engine reports in headless mode")
	rootCmd.AddCommand(virtualCmd)
}

func runVirtual(cmd *cobra.Command, args []string) error {
	if midiChannel < 0 || midiChannel > 16 {
		return fmt.Errorf("channel %d outside 0-16", midiChannel)
	}
	channel := midiin.Omni
	if midiChannel > 0 {
		channel = midiChannel - 1
	}

	e, player, err := startOutput()
	if err != nil {
		return err
	}
	defer player.Close()

	port, err := openPort()
	if err != nil {
		return err
	}
	defer port.Close()
	logger.Info("listening for MIDI", "port", port.String(), "channel", midiChannel)

	if headless {
		return runHeadless(cmd.Context(), e, player, port, channel)
	}

	quietForTUI()
	channels := "1-16 (reads channel from MIDI messages)"
	if midiChannel > 0 {
		channels = fmt.Sprintf("%d", midiChannel)
	}
	m := tui.NewModel(e, tui.Options{
		Title: "Scopesynth Virtual MIDI Synth",
		Info: []string{
			"Device Name: " + deviceName,
			"MIDI Port: " + port.String(),
			"Channels: " + channels,
		},
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// The callback only forwards to the program; the update loop is the
	// single producer for the engine queue.
	err = port.Listen(func(msg midi.Message) {
		n, ok := midiin.Translate(msg, channel)
		if !ok {
			return
		}
		p.Send(tui.NoteMsg{Note: n, Channel: msg[0] & 0x0F, Source: "midi"})
	})
	if err != nil {
		return err
	}
	go watchPlayer(player, p)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		<-c
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func openPort() (*midiin.Port, error) {
	if inputPort != "" {
		return midiin.OpenNamed(inputPort)
	}
	return midiin.OpenVirtual(deviceName)
}

// watchPlayer surfaces an audio device failure in the UI.
func watchPlayer(player *audio.Player, p *tea.Program) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for range t.C {
		if err := player.Err(); err != nil {
			logger.Error("audio device failed", "err", err)
			p.Send(tui.ErrMsg{Err: err})
			return
		}
	}
}

// runHeadless plays MIDI input until interrupted, logging an engine report
// every reportInterval.
func runHeadless(ctx context.Context, e *engine.Engine, player *audio.Player, port *midiin.Port, channel int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	notes := make(chan event.Note, 256)
	err := port.Listen(func(msg midi.Message) {
		n, ok := midiin.Translate(msg, channel)
		if !ok {
			return
		}
		select {
		case notes <- n:
		default:
			logger.Warn("dropped MIDI event", "event", n)
		}
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	// Only this goroutine submits to the engine.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				e.Submit(event.AllOff(event.Immediate))
				return nil
			case n := <-notes:
				if !e.Submit(n) {
					logger.Warn("event queue full", "event", n)
					continue
				}
				logger.Debug("event", "note", n)
			}
		}
	})

	g.Go(func() error {
		if reportInterval <= 0 {
			<-ctx.Done()
			return nil
		}
		t := time.NewTicker(reportInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				logSnapshot(logger, e.Snapshot())
			}
		}
	})

	g.Go(func() error {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				if err := player.Err(); err != nil {
					return fmt.Errorf("audio device failed: %w", err)
				}
			}
		}
	})

	err = g.Wait()
	logger.Info("stopped", "dropped", e.Dropped())
	return err
}
