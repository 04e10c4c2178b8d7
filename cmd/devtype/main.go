// Package main provides the CLI entrypoint for devtype.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/devtype/internal/config"
	"github.com/verte-zerg/devtype/internal/model"
	"github.com/verte-zerg/devtype/internal/session"
	"github.com/verte-zerg/devtype/internal/snippet"
	"github.com/verte-zerg/devtype/internal/stats"
	"github.com/verte-zerg/devtype/internal/statsui"
	"github.com/verte-zerg/devtype/internal/store"
	"github.com/verte-zerg/devtype/internal/tracker"
	"github.com/verte-zerg/devtype/internal/tui"
)

const (
	defaultProfileName   = "anonymous"
	defaultStatsFallback = 80
	defaultRecentCount   = 10
	defaultCurveWindow   = 5
)

var (
	practiceMode     string
	practiceDuration int
	practiceLanguage string
	profileName      string

	statsLanguage string
	statsMode     string
	statsSince    string
	statsLast     int
	statsPlain    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "devtype",
		Short:         "TUI typing trainer for code",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceMode, "mode", string(model.ModeTimed), "session mode: timed or practice")
	rootCmd.Flags().IntVar(&practiceDuration, "duration", model.DefaultDurationSeconds, "timed session length in seconds")
	rootCmd.Flags().StringVar(&practiceLanguage, "language", model.LanguageAny, "snippet language, or 'any'")
	rootCmd.Flags().StringVar(&profileName, "name", defaultProfileName, "display name for leaderboard submissions")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLanguagesCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "duration", &practiceDuration, fileCfg.Practice.Duration)
	applyStringConfig(cmd, "language", &practiceLanguage, fileCfg.Practice.Language)
	applyStringConfig(cmd, "name", &profileName, fileCfg.Profile.Name)

	cfg := model.Config{
		Mode:            model.Mode(practiceMode),
		DurationSeconds: practiceDuration,
		Language:        practiceLanguage,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	trk, err := tracker.Open(st)
	if err != nil {
		return fmt.Errorf("failed to open tracker: %w", err)
	}

	ctrl, err := session.New(cfg, snippet.NewSource(), trk)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(profileName)
	if name == "" {
		name = defaultProfileName
	}
	program := tea.NewProgram(tui.NewModel(ctrl, st, trk, name), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List available snippet languages",
		Args:  cobra.NoArgs,
		RunE:  runLanguagesCmd,
	}
}

func runLanguagesCmd(cmd *cobra.Command, _ []string) error {
	source := snippet.NewSource()
	langs := append([]string{model.LanguageAny}, source.Languages()...)
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLanguage, "language", "", "language filter")
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter: timed or practice")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a report to stdout instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsMode != "" && statsMode != string(model.ModeTimed) && statsMode != string(model.ModePractice) {
		return fmt.Errorf("invalid --mode value %q (use timed or practice)", statsMode)
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Language: statsLanguage,
		Mode:     statsMode,
		Since:    sinceTime,
		Last:     statsLast,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	trk, err := tracker.Open(st)
	if err != nil {
		return fmt.Errorf("failed to open tracker: %w", err)
	}

	if statsPlain {
		return printPlainStats(cmd, st, trk, cfg)
	}

	program := tea.NewProgram(statsui.NewModel(st, trk, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printPlainStats(cmd *cobra.Command, st *store.Store, trk *tracker.Tracker, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(cmd.Context(), st, trk, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	w := cmd.OutOrStdout()
	width := stats.TerminalWidth(defaultStatsFallback)
	if err := stats.RenderSummary(w, report); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if report.Summary.Tests == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Results, defaultCurveWindow, width); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderRecent(w, report.Results, defaultRecentCount); err != nil {
		return fmt.Errorf("failed to render recent results: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderKeyErrorTable(w, report.KeyErrors); err != nil {
		return fmt.Errorf("failed to render key table: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderAchievements(w, report); err != nil {
		return fmt.Errorf("failed to render achievements: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# devtype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q          # Session mode: timed or practice
# duration = %d      # Timed session length in seconds (%d-%d)
# language = %q      # Snippet language, or "any"

[profile]
# name = %q          # Display name for leaderboard submissions
`,
		string(model.ModeTimed),
		model.DefaultDurationSeconds,
		model.MinDurationSeconds,
		model.MaxDurationSeconds,
		model.LanguageAny,
		defaultProfileName,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
