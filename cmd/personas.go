package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	personaNameStyle = lipgloss.NewStyle().
				Bold(true).
				Width(12)

	personaDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))

	currentMarkStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)
)

// personasCmd represents the personas command
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the built-in personas",
	Long: `List the built-in personas. Any other label passed to --persona is used
as a custom persona.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := internal.DefaultPersona
		if cfg, err := loadConfig(); err == nil {
			current = internal.ResolvePersona(cfg.Persona)
		} else {
			internal.LogDebug("Using default persona: %v", err)
		}

		out := cmd.OutOrStdout()
		for _, p := range internal.Personas {
			mark := "  "
			if p.ID == current {
				mark = currentMarkStyle.Render("▸ ")
			}
			fmt.Fprintf(out, "%s%s %s %s\n", mark, p.Icon, personaNameStyle.Render(p.ID), personaDescStyle.Render(p.Description))
		}
		if _, ok := internal.LookupPersona(current); !ok {
			fmt.Fprintf(out, "%s✨ %s %s\n", currentMarkStyle.Render("▸ "), personaNameStyle.Render(current), personaDescStyle.Render("Custom"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
