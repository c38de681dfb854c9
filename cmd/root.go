package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/icco/scopesynth/internal/audio"
	"github.com/icco/scopesynth/internal/config"
	"github.com/icco/scopesynth/internal/engine"
	"github.com/icco/scopesynth/internal/logging"
	"github.com/icco/scopesynth/internal/param"
	"github.com/spf13/cobra"
)

var (
	cfg       = config.Default()
	logger    = logging.Discard()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "scopesynth",
	Short: "A polyphonic subtractive synth with an oscilloscope",
	Long: `scopesynth is a real-time polyphonic subtractive synthesizer.

Each voice is a saw or sine oscillator through a resonant lowpass filter and an
ADSR amplitude envelope. It plays from a virtual MIDI port or the computer
keyboard, shows its output on a terminal oscilloscope, and can render MIDI
files to WAV.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		l, c, err := logging.New(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		logger, logCloser = l, c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	cfg.BindFlags(rootCmd.PersistentFlags())
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// quietForTUI stops stderr logging while a full-screen UI owns the terminal.
func quietForTUI() {
	if cfg.LogFile == "" {
		logger.SetOutput(io.Discard)
	}
}

// startOutput builds the engine and connects it to the audio device.
func startOutput() (*engine.Engine, *audio.Player, error) {
	e, err := cfg.NewEngine()
	if err != nil {
		return nil, nil, err
	}
	player, err := audio.NewPlayer(audio.NewStream(e), cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("audio started",
		"sampleRate", cfg.SampleRate,
		"block", cfg.BlockSize,
		"channels", cfg.Channels,
		"polyphony", cfg.Polyphony)
	return e, player, nil
}

func logSnapshot(l *log.Logger, s engine.Snapshot) {
	kv := []any{
		"position", s.Position,
		"voices", fmt.Sprintf("%d/%d", s.ActiveVoices, s.Polyphony),
		"queued", s.Queued,
		"dropped", s.Dropped,
	}
	for _, info := range param.Layout() {
		kv = append(kv, info.Key, info.Format(s.Params[info.ID]))
	}
	l.Info("engine", kv...)
}
