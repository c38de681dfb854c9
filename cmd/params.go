package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/icco/scopesynth/internal/param"
	"github.com/spf13/cobra"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the synth parameters",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), formatParams(param.Layout()))
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
)

func formatParams(layout []param.Info) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-18s %-18s %-22s %s", "KEY", "NAME", "RANGE", "DEFAULT")) + "\n")
	for _, info := range layout {
		var rng string
		if info.Kind == param.Choice {
			rng = strings.Join(info.Choices, " | ")
		} else {
			rng = fmt.Sprintf("%g - %g %s", info.Min, info.Max, info.Unit)
		}
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-18s", info.Key)))
		fmt.Fprintf(&b, " %-18s %-22s %s\n", info.Label, strings.TrimSpace(rng), info.Format(info.Default))
	}
	return b.String()
}
