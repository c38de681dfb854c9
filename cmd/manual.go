package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/scopesynth/internal/tui"
	"github.com/spf13/cobra"
)

var patternFile string

var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Play the synth from the computer keyboard",
	Long: `Play the synth from the computer keyboard with an interactive TUI.

Keys a-k play one octave, z and x shift it. Tab switches to a 16-step pattern
editor that loops through the synth and saves to a MIDI file.`,
	RunE: runManual,
}

func init() {
	manualCmd.Flags().StringVarP(&patternFile, "pattern", "f", "pattern.mid", "MIDI file to load and save the step pattern")
	rootCmd.AddCommand(manualCmd)
}

func runManual(cmd *cobra.Command, args []string) error {
	e, player, err := startOutput()
	if err != nil {
		return err
	}
	defer player.Close()

	quietForTUI()
	m := tui.NewModel(e, tui.Options{
		Title:       "Scopesynth",
		Info:        []string{"Pattern: " + patternFile},
		Keyboard:    true,
		PatternFile: patternFile,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	go watchPlayer(player, p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
