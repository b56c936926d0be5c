package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

const probeKey = "healthcheck-probe"

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, storage and credentials",
	Long: `Check the health of persona-chat by verifying:
  • The config file parses and validates
  • The history store opens, reads and writes
  • A model API key or chat route is configured
  • Speech and clipboard support on this machine`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealthcheck(cmd.OutOrStdout())
	},
}

func runHealthcheck(out io.Writer) error {
	fmt.Fprintln(out, sectionStyle.Render("🔍 Persona Chat Health Check"))
	fmt.Fprintln(out)

	fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Configuration invalid:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
	if verbose {
		fmt.Fprintf(out, "   Driver: %s\n", cfg.Driver)
		fmt.Fprintf(out, "   Storage: %s\n", cfg.StoragePath)
		fmt.Fprintf(out, "   Persona: %s\n", internal.ResolvePersona(cfg.Persona))
		fmt.Fprintf(out, "   Timeout: %s\n", cfg.Timeout)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, infoStyle.Render("Step 2: Testing history storage..."))
	kv, err := internal.OpenStore(cfg.Driver, cfg.StoragePath)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to open storage:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = kv.Close() }()

	messages := internal.Load[[]internal.Message](kv, cfg.HistoryKey, nil)
	if !internal.Save(kv, probeKey, time.Now().UTC()) || !internal.Clear(kv, probeKey) {
		fmt.Fprintln(out, errorStyle.Render("❌ Storage is not writable"))
		return fmt.Errorf("health check failed: storage is not writable")
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Storage readable and writable (%d saved message(s))", len(messages))))
	fmt.Fprintln(out)

	fmt.Fprintln(out, infoStyle.Render("Step 3: Checking completion backend..."))
	backendOK := true
	switch {
	case cfg.Endpoint != "":
		fmt.Fprintln(out, successStyle.Render("✅ Using chat route"))
		if verbose {
			fmt.Fprintf(out, "   Endpoint: %s\n", cfg.Endpoint)
		}
	case cfg.APIKey != "":
		fmt.Fprintln(out, successStyle.Render("✅ API key configured"))
		if verbose {
			fmt.Fprintf(out, "   Base URL: %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "   Model: %s\n", cfg.Model)
		}
	default:
		backendOK = false
		fmt.Fprintln(out, errorStyle.Render("❌ No API key or chat route configured"))
		fmt.Fprintln(out, "   Set GEMINI_API_KEY or pass --endpoint")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, infoStyle.Render("Step 4: Checking optional features..."))
	if speaker().Available() {
		fmt.Fprintln(out, successStyle.Render("✅ Text-to-speech available"))
	} else {
		fmt.Fprintln(out, warningStyle.Render("⚠️  No speech engine found (say, spd-say, espeak)"))
	}
	if internal.ClipboardAvailable() {
		fmt.Fprintln(out, successStyle.Render("✅ Clipboard available"))
	} else {
		fmt.Fprintln(out, warningStyle.Render("⚠️  No clipboard utility found"))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
	fmt.Fprintln(out)
	if !backendOK {
		fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
		return fmt.Errorf("health check failed: no completion backend configured")
	}
	fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
	return nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
