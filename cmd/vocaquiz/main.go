// Package main provides the CLI entrypoint for vocaquiz.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vocaquiz/vocaquiz/internal/config"
	"github.com/vocaquiz/vocaquiz/internal/distractor"
	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/remote"
	"github.com/vocaquiz/vocaquiz/internal/sampler"
	"github.com/vocaquiz/vocaquiz/internal/session"
	"github.com/vocaquiz/vocaquiz/internal/stats"
	"github.com/vocaquiz/vocaquiz/internal/store"
	"github.com/vocaquiz/vocaquiz/internal/tui"
	"github.com/vocaquiz/vocaquiz/internal/wordpool"
)

const (
	defaultRangeStart  = 1
	defaultCount       = 10
	defaultChoiceRatio = 0.7
	defaultInterleave  = 0.0
	defaultDirection   = "mixed"
	defaultRevealMs    = 2000
	defaultHistory     = 10
	defaultTimeoutS    = 60
)

var (
	quizRangeStart int
	quizRangeEnd   int
	quizCount      int
	quizChoice     float64
	quizInterleave float64
	quizDirection  string
	quizRevealMs   int
	quizWordList   string
	quizRemoteURL  string

	historyLast int

	fetchForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vocaquiz",
		Short:         "TUI vocabulary quiz trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.Flags().IntVar(&quizRangeStart, "range-start", defaultRangeStart, "first word id (inclusive)")
	rootCmd.Flags().IntVar(&quizRangeEnd, "range-end", 0, "last word id (inclusive, 0 = highest id)")
	rootCmd.Flags().IntVar(&quizCount, "count", defaultCount, "questions per session")
	rootCmd.Flags().Float64Var(&quizChoice, "choice-ratio", defaultChoiceRatio, "fraction of multiple-choice questions (0-1)")
	rootCmd.Flags().Float64Var(&quizInterleave, "interleave", defaultInterleave, "fraction drawn from previously missed words (0-1, 0 = mistake-weighted sampling)")
	rootCmd.Flags().StringVar(&quizDirection, "direction", defaultDirection, "question direction: mixed, to-translation, to-headword")
	rootCmd.Flags().IntVar(&quizRevealMs, "reveal-delay-ms", defaultRevealMs, "feedback pause before the next question")
	rootCmd.Flags().StringVar(&quizWordList, "wordlist", "", "word list CSV path")
	rootCmd.Flags().StringVar(&quizRemoteURL, "remote-url", "", "record service URL")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newFetchCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "range-start", &quizRangeStart, fileCfg.Quiz.RangeStart)
	applyIntConfig(cmd, "range-end", &quizRangeEnd, fileCfg.Quiz.RangeEnd)
	applyIntConfig(cmd, "count", &quizCount, fileCfg.Quiz.Count)
	applyFloatConfig(cmd, "choice-ratio", &quizChoice, fileCfg.Quiz.ChoiceRatio)
	applyFloatConfig(cmd, "interleave", &quizInterleave, fileCfg.Quiz.Interleave)
	applyStringConfig(cmd, "direction", &quizDirection, fileCfg.Quiz.Direction)
	applyIntConfig(cmd, "reveal-delay-ms", &quizRevealMs, fileCfg.Quiz.RevealDelayMs)
	applyStringConfig(cmd, "wordlist", &quizWordList, fileCfg.Quiz.WordList)
	applyStringConfig(cmd, "remote-url", &quizRemoteURL, fileCfg.Remote.URL)

	cfg := model.SessionConfig{
		RangeStart:      quizRangeStart,
		RangeEnd:        quizRangeEnd,
		RequestedCount:  quizCount,
		ChoiceRatio:     quizChoice,
		InterleaveRatio: quizInterleave,
		RevealDelayMs:   quizRevealMs,
	}
	if err := applyDirection(&cfg, quizDirection); err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	wordPath := quizWordList
	if wordPath == "" {
		wordPath = config.DefaultWordListPath()
	}
	pool, err := wordpool.LoadCSV(wordPath)
	if err != nil {
		return wordListLoadError(wordPath, err)
	}
	if cfg.RangeEnd <= 0 {
		cfg.RangeEnd = pool.MaxID()
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

	var rc *remote.Client
	if quizRemoteURL != "" {
		rc = remote.NewClient(quizRemoteURL, remoteTimeout(fileCfg))
	}
	pool = pool.ApplyStats(loadStats(st, rc))

	engine := session.New(sampler.New(), distractor.New())
	if err := engine.Start(pool, cfg); err != nil {
		return fmt.Errorf("cannot start session: %w", err)
	}

	quizModel := tui.NewModel(engine, st, rc, time.Duration(cfg.RevealDelayMs)*time.Millisecond)
	program := tea.NewProgram(quizModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadStats merges prior mistake statistics: the record service first
// when configured, then the local store so the freshest local data
// wins. Failures degrade to empty stats instead of blocking the quiz.
func loadStats(st *store.Store, rc *remote.Client) []model.MistakeStat {
	var merged []model.MistakeStat
	if rc != nil {
		remoteStats, err := rc.FetchMistakeStats(context.Background())
		if err != nil {
			logErrf("failed to load remote mistake stats: %v\n", err)
		} else {
			merged = append(merged, remoteStats...)
		}
	}
	localStats, err := st.MistakeStats(context.Background())
	if err != nil {
		logErrf("failed to load local mistake stats: %v\n", err)
	} else {
		merged = append(merged, localStats...)
	}
	return merged
}

func remoteTimeout(fileCfg config.FileConfig) time.Duration {
	if fileCfg.Remote.TimeoutS != nil && *fileCfg.Remote.TimeoutS > 0 {
		return time.Duration(*fileCfg.Remote.TimeoutS) * time.Second
	}
	return time.Duration(defaultTimeoutS) * time.Second
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

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent session results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistory, "number of sessions to show")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	// History is advisory: a broken read renders as an empty list.
	records, err := st.RecentSessions(ctx, historyLast)
	if err != nil {
		logErrf("failed to read history: %v\n", err)
		records = nil
	}
	mastered, err := st.MasteredCount(ctx)
	if err != nil {
		logErrf("failed to count mastered words: %v\n", err)
		mastered = 0
	}
	return stats.RenderHistory(cmd.OutOrStdout(), records, mastered)
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the word list from the record service",
		Args:  cobra.NoArgs,
		RunE:  runFetchCmd,
	}
	cmd.Flags().StringVar(&quizRemoteURL, "remote-url", "", "record service URL")
	cmd.Flags().StringVar(&quizWordList, "wordlist", "", "word list CSV path")
	cmd.Flags().BoolVar(&fetchForce, "force", false, "overwrite an existing word list")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "remote-url", &quizRemoteURL, fileCfg.Remote.URL)
	applyStringConfig(cmd, "wordlist", &quizWordList, fileCfg.Quiz.WordList)
	if quizRemoteURL == "" {
		return fmt.Errorf("--remote-url (or [remote] url in config) is required")
	}

	outPath := quizWordList
	if outPath == "" {
		outPath = config.DefaultWordListPath()
	}
	if !fetchForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat word list: %w", err)
		}
	}

	logErrln("Fetching word list...")
	rc := remote.NewClient(quizRemoteURL, remoteTimeout(fileCfg))
	entries, err := rc.FetchWordList(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch word list: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("record service returned no usable words")
	}
	if err := writeWordList(outPath, entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logErrf("Wrote %s (%d words)\n", outPath, len(entries))
	return nil
}

func writeWordList(path string, entries []model.WordEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create word list dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "wordlist-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp word list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, entry := range entries {
		if _, err := fmt.Fprintf(writer, "%d,%s,%s,%s\n", entry.ID, csvField(entry.Headword), csvField(entry.PartOfSpeech), csvField(entry.Translation)); err != nil {
			return fmt.Errorf("failed to write word list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush word list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close word list: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	return nil
}

func csvField(value string) string {
	if strings.ContainsAny(value, ",;\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

func applyDirection(cfg *model.SessionConfig, direction string) error {
	switch strings.TrimSpace(strings.ToLower(direction)) {
	case "", "mixed":
		cfg.PinDirection = false
	case "to-translation":
		cfg.PinDirection = true
		cfg.FixedDirection = model.SourceToTarget
	case "to-headword":
		cfg.PinDirection = true
		cfg.FixedDirection = model.TargetToSource
	default:
		return fmt.Errorf("--direction must be mixed, to-translation, or to-headword")
	}
	return nil
}

func validateConfig(cfg model.SessionConfig) error {
	if cfg.RequestedCount <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	if cfg.RangeStart < 0 {
		return fmt.Errorf("--range-start must be >= 0")
	}
	if cfg.RangeEnd > 0 && cfg.RangeStart > cfg.RangeEnd {
		return fmt.Errorf("--range-start must not exceed --range-end")
	}
	if cfg.ChoiceRatio < 0 || cfg.ChoiceRatio > 1 {
		return fmt.Errorf("--choice-ratio must be between 0 and 1")
	}
	if cfg.InterleaveRatio < 0 || cfg.InterleaveRatio > 1 {
		return fmt.Errorf("--interleave must be between 0 and 1")
	}
	if cfg.RevealDelayMs < 0 {
		return fmt.Errorf("--reveal-delay-ms must be >= 0")
	}
	return nil
}

func wordListLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		"Download it with: vocaquiz fetch --remote-url <url>",
		"Or point --wordlist at a CSV export (id,headword,pos,translation).",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# vocaquiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# range-start = %d        # First word id (inclusive)
# range-end = 0           # Last word id (0 = highest id in the list)
# count = %d              # Questions per session
# choice-ratio = %.2f     # Fraction of multiple-choice questions (0-1)
# interleave = %.2f       # Fraction drawn from missed words (0 = weighted sampling)
# direction = %q          # mixed, to-translation, to-headword
# reveal-delay-ms = %d    # Feedback pause before the next question
# wordlist = ""           # Word list CSV path

[remote]
# url = ""                # Record service URL
# timeout = %d            # Request timeout in seconds
`,
		defaultRangeStart,
		defaultCount,
		defaultChoiceRatio,
		defaultInterleave,
		defaultDirection,
		defaultRevealMs,
		defaultTimeoutS,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
