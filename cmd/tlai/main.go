// Package main provides the CLI entrypoint for tlai.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rossmatican/thoughtleaderai/internal/config"
	"github.com/rossmatican/thoughtleaderai/internal/export"
	"github.com/rossmatican/thoughtleaderai/internal/ingest"
	"github.com/rossmatican/thoughtleaderai/internal/intervene"
	"github.com/rossmatican/thoughtleaderai/internal/logging"
	"github.com/rossmatican/thoughtleaderai/internal/metrics"
	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/pattern"
	"github.com/rossmatican/thoughtleaderai/internal/server"
	"github.com/rossmatican/thoughtleaderai/internal/session"
	"github.com/rossmatican/thoughtleaderai/internal/stats"
	"github.com/rossmatican/thoughtleaderai/internal/statsui"
	"github.com/rossmatican/thoughtleaderai/internal/store"
	"github.com/rossmatican/thoughtleaderai/internal/tui"
	"github.com/rossmatican/thoughtleaderai/internal/voice"
	"github.com/rossmatican/thoughtleaderai/internal/watch"
)

const (
	defaultCooldown     = intervene.DefaultCooldown
	defaultBaselineMin  = voice.MinSampleChars
	defaultAnalyzeEvery = session.DefaultAnalyzeEvery
	defaultMaxSessions  = 256
	defaultCurveWindow  = 5
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

var (
	engineCooldown time.Duration
	engineSeed     int64
	logLevel       string
	logFormat      string

	writeBaselineMin   int
	writeAnalyzeEvery  int
	writeDebounce      time.Duration
	writeSkipBaseline  bool
	writeBaselineInput string

	scoreJSON     bool
	scoreColor    bool
	scoreBaseline string

	baselineJSON bool

	watchDebounce      time.Duration
	watchMetricsAddr   string
	watchBaselineInput string
	watchColor         bool

	serveAddr        string
	serveCORS        []string
	serveMaxSessions int

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	showColor bool

	exportFormat string
	exportOutput string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tlai",
		Short:         "Writing companion that tracks how much of the thinking is yours",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runWriteCmd,
	}

	rootCmd.PersistentFlags().DurationVar(&engineCooldown, "cooldown", defaultCooldown, "minimum time between reflective prompts")
	rootCmd.PersistentFlags().Int64Var(&engineSeed, "seed", 0, "prompt selection seed (0 = time based)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")

	rootCmd.Flags().IntVar(&writeBaselineMin, "baseline-min-chars", defaultBaselineMin, "characters required for the voice baseline")
	rootCmd.Flags().IntVar(&writeAnalyzeEvery, "analyze-every", defaultAnalyzeEvery, "keystrokes between typing analyses")
	rootCmd.Flags().DurationVar(&writeDebounce, "debounce", tui.DefaultDebounce, "quiet period before re-scoring the draft")
	rootCmd.Flags().BoolVar(&writeSkipBaseline, "skip-baseline", false, "start writing without a voice baseline")
	rootCmd.Flags().StringVar(&writeBaselineInput, "baseline", "", "file to build the voice baseline from")

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newBaselineCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadConfig reads the config file and applies the shared engine and log sections.
func loadConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyDurationConfig(cmd, "cooldown", &engineCooldown, fileCfg.Engine.Cooldown)
	applyInt64Config(cmd, "seed", &engineSeed, fileCfg.Engine.Seed)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	if engineCooldown < 0 {
		return config.FileConfig{}, fmt.Errorf("--cooldown must be >= 0")
	}
	return fileCfg, nil
}

func newLogger(out io.Writer) *slog.Logger {
	return logging.New(logging.Config{Level: logLevel, Format: logFormat, Output: out})
}

func newScheduler() *intervene.Scheduler {
	var rnd *rand.Rand
	if engineSeed != 0 {
		rnd = rand.New(rand.NewSource(engineSeed))
	}
	return intervene.New(intervene.Config{Cooldown: engineCooldown}, rnd)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runWriteCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "baseline-min-chars", &writeBaselineMin, fileCfg.Write.BaselineMinChars)
	applyIntConfig(cmd, "analyze-every", &writeAnalyzeEvery, fileCfg.Write.AnalyzeEvery)
	applyDurationConfig(cmd, "debounce", &writeDebounce, fileCfg.Write.Debounce)

	cfg := model.Config{
		Cooldown:         engineCooldown,
		Seed:             engineSeed,
		BaselineMinChars: writeBaselineMin,
		AnalyzeEvery:     writeAnalyzeEvery,
		Debounce:         writeDebounce,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	var sample string
	if writeBaselineInput != "" {
		sample, err = ingest.ReadText(writeBaselineInput)
		if err != nil {
			return fmt.Errorf("failed to read baseline: %w", err)
		}
	}

	logFile, err := logging.OpenFile(config.DefaultLogPath())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	logger := newLogger(logFile)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	sess, err := session.New(ctx, session.Options{
		Source:       "tui",
		Scheduler:    newScheduler(),
		AnalyzeEvery: cfg.AnalyzeEvery,
		Sink:         st,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		if err := sess.End(ctx); err != nil {
			logErrf("failed to end session: %v\n", err)
		}
	}()

	skip := writeSkipBaseline
	if sample != "" {
		if _, err := sess.SetBaseline(ctx, sample); err != nil {
			return fmt.Errorf("failed to build baseline: %w", err)
		}
		skip = true
	}

	m := tui.NewModel(sess, tui.Options{
		Debounce:         cfg.Debounce,
		BaselineMinChars: cfg.BaselineMinChars,
		SkipBaseline:     skip,
		Logger:           logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logErrf("Session %s saved. Review it with: tlai show %s\n", sess.ID(), sess.ID())
	return nil
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [file|-]",
		Short: "Score a draft for AI writing patterns",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScoreCmd,
	}
	cmd.Flags().BoolVar(&scoreJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&scoreColor, "color", false, "force colored output")
	cmd.Flags().StringVar(&scoreBaseline, "baseline", "", "writing sample to measure voice drift against")
	return cmd
}

// scoreOutput is the machine-readable result of `tlai score`.
type scoreOutput struct {
	Scored         bool                  `json:"scored"`
	AIScore        int                   `json:"aiScore"`
	CognitiveScore int                   `json:"cognitiveScore"`
	Label          string                `json:"label"`
	Breakdown      model.Breakdown       `json:"breakdown"`
	Contributions  pattern.Contributions `json:"contributions"`
	Matches        []pattern.Match       `json:"matches"`
	Highlights     []pattern.Span        `json:"highlights"`
	VoiceDrift     *float64              `json:"voiceDrift,omitempty"`
	Words          int                   `json:"words"`
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	text, err := readDraft(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	out, err := scoreText(text, scoreBaseline)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return renderScore(w, out, stats.UseColor(w, scoreColor))
}

func readDraft(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		text, err := ingest.ReadFrom(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return text, nil
	}
	text, err := ingest.ReadText(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return text, nil
}

func scoreText(text, baselinePath string) (scoreOutput, error) {
	res := pattern.Analyze(text)
	out := scoreOutput{
		Scored:         res.Scored,
		AIScore:        res.Score,
		CognitiveScore: 100,
		Breakdown:      res.Dimensions,
		Contributions:  res.Contributions,
		Matches:        res.Matches,
		Highlights:     pattern.Highlights(text),
		Words:          len(strings.Fields(text)),
	}
	if res.Scored {
		out.CognitiveScore = pattern.CognitiveScore(res.Score)
	}
	out.Label = pattern.Label(out.CognitiveScore)
	if out.Matches == nil {
		out.Matches = []pattern.Match{}
	}
	if baselinePath != "" {
		sample, err := ingest.ReadText(baselinePath)
		if err != nil {
			return scoreOutput{}, fmt.Errorf("failed to read baseline: %w", err)
		}
		profile, err := voice.NewProfile(sample, time.Now())
		if err != nil {
			return scoreOutput{}, fmt.Errorf("failed to build baseline: %w", err)
		}
		current := voice.Extract(text)
		drift := voice.Drift(&profile.Characteristics, &current)
		out.VoiceDrift = &drift
	}
	return out, nil
}

func renderScore(w io.Writer, out scoreOutput, useColor bool) error {
	var b strings.Builder
	if !out.Scored {
		fmt.Fprintf(&b, "Too short to score (need at least %d characters).\n", pattern.MinChars)
	} else {
		score := stats.ColorScore(stats.Label(out.CognitiveScore), out.CognitiveScore, useColor)
		fmt.Fprintf(&b, "Cognitive score: %s\n", score)
		fmt.Fprintf(&b, "AI patterns:     %d\n", out.AIScore)
		fmt.Fprintf(&b, "Ideation %d  Structure %d  Expression %d\n",
			out.Breakdown.Ideation, out.Breakdown.Structure, out.Breakdown.Expression)
		if len(out.Breakdown.Patterns) > 0 {
			fmt.Fprintf(&b, "Patterns: %s\n", strings.Join(out.Breakdown.Patterns, ", "))
		}
	}
	if out.VoiceDrift != nil {
		fmt.Fprintf(&b, "Voice drift:     %.0f%%\n", *out.VoiceDrift*100)
	}
	if len(out.Highlights) > 0 {
		phrases := make([]string, 0, len(out.Highlights))
		for _, span := range out.Highlights {
			phrases = append(phrases, fmt.Sprintf("%q", span.Phrase))
		}
		fmt.Fprintf(&b, "Flagged phrases: %s\n", strings.Join(phrases, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func newBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline <file>",
		Short: "Show the voice fingerprint of a writing sample",
		Args:  cobra.ExactArgs(1),
		RunE:  runBaselineCmd,
	}
	cmd.Flags().BoolVar(&baselineJSON, "json", false, "print the profile as JSON")
	return cmd
}

func runBaselineCmd(cmd *cobra.Command, args []string) error {
	text, err := readDraft(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	profile, err := voice.NewProfile(text, time.Now())
	if err != nil {
		if errors.Is(err, voice.ErrSampleTooShort) {
			return fmt.Errorf("sample too short: need at least %d characters", voice.MinSampleChars)
		}
		return err
	}
	w := cmd.OutOrStdout()
	if baselineJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(profile.Characteristics)
	}
	c := profile.Characteristics
	lines := []string{
		fmt.Sprintf("Avg sentence length:   %.1f words", c.AvgSentenceLength),
		fmt.Sprintf("Vocabulary complexity: %.2f", c.VocabularyComplexity),
		fmt.Sprintf("Punctuation:           %s", strings.Join(c.PunctuationMarks, " ")),
		fmt.Sprintf("Common phrases:        %s", strings.Join(c.CommonBigrams, ", ")),
	}
	_, err = fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-score a draft file every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchCmd,
	}
	cmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period after a save before re-scoring")
	cmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&watchBaselineInput, "baseline", "", "file to build the voice baseline from")
	cmd.Flags().BoolVar(&watchColor, "color", false, "force colored output")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyDurationConfig(cmd, "debounce", &watchDebounce, fileCfg.Watch.Debounce)
	applyStringConfig(cmd, "metrics-addr", &watchMetricsAddr, fileCfg.Watch.MetricsAddr)

	logger := newLogger(os.Stderr)
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)
	sess, err := session.New(ctx, session.Options{
		Source:    "watch",
		Scheduler: newScheduler(),
		Sink:      st,
		Observer:  m,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		if err := sess.End(context.Background()); err != nil {
			logErrf("failed to end session: %v\n", err)
		}
	}()
	if watchBaselineInput != "" {
		sample, err := ingest.ReadText(watchBaselineInput)
		if err != nil {
			return fmt.Errorf("failed to read baseline: %w", err)
		}
		if _, err := sess.SetBaseline(ctx, sample); err != nil {
			return fmt.Errorf("failed to build baseline: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	opts := watch.Options{
		Path:        args[0],
		Debounce:    watchDebounce,
		In:          cmd.InOrStdin(),
		Out:         out,
		UseColor:    stats.UseColor(out, watchColor),
		Logger:      logger,
		MetricsAddr: watchMetricsAddr,
	}
	if watchMetricsAddr != "" {
		opts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	logErrf("Watching %s (session %s). Enter answers a prompt, an empty line dismisses it. Ctrl+C stops.\n", args[0], sess.ID())
	if err := watch.Run(ctx, sess, opts); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&serveCORS, "cors", nil, "allowed CORS origins (default: any)")
	cmd.Flags().IntVar(&serveMaxSessions, "max-sessions", defaultMaxSessions, "live sessions kept in memory")
	cmd.Flags().IntVar(&writeAnalyzeEvery, "analyze-every", defaultAnalyzeEvery, "keystrokes between typing analyses")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	applyStringSliceConfig(cmd, "cors", &serveCORS, fileCfg.Server.CORS)
	applyIntConfig(cmd, "max-sessions", &serveMaxSessions, fileCfg.Server.MaxSessions)
	applyIntConfig(cmd, "analyze-every", &writeAnalyzeEvery, fileCfg.Write.AnalyzeEvery)
	if serveMaxSessions <= 0 {
		return fmt.Errorf("--max-sessions must be > 0")
	}

	logger := newLogger(os.Stderr)
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	reg := prometheus.NewRegistry()
	srv, err := server.New(server.Config{
		Addr:         serveAddr,
		CORSOrigins:  serveCORS,
		MaxSessions:  serveMaxSessions,
		Cooldown:     engineCooldown,
		Seed:         engineSeed,
		AnalyzeEvery: writeAnalyzeEvery,
		Debug:        strings.EqualFold(logLevel, "debug"),
	}, server.Deps{
		Sink:     st,
		Metrics:  metrics.MustNew(reg),
		Gatherer: reg,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("listening", "addr", serveAddr)
	return srv.Run(ctx)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats across writing sessions",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain report instead of the interactive view")
	return cmd
}

func parseStatsConfig(since string, last, window int) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return model.StatsConfig{Since: sinceTime, Last: last, CurveWindow: window}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := parseStatsConfig(statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	out := cmd.OutOrStdout()
	if statsPlain || !isTerminal(out) {
		report, err := stats.BuildReport(commandContext(cmd), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		if err := stats.RenderSummary(out, report, stats.UseColor(out, false)); err != nil {
			return err
		}
		if len(report.Sessions) == 0 {
			return nil
		}
		return stats.RenderSessionTable(out, report.Sessions)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the report of one session",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
	cmd.Flags().BoolVar(&showColor, "color", false, "force colored output")
	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	detail, err := loadDetail(commandContext(cmd), st, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return stats.RenderSession(out, detail, stats.UseColor(out, showColor))
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export one session as json, yaml or text",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", export.FormatJSON, "output format (json, yaml, text)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) (err error) {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	detail, err := loadDetail(commandContext(cmd), st, args[0])
	if err != nil {
		return err
	}
	if exportOutput == "" {
		return export.Write(cmd.OutOrStdout(), detail, exportFormat)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", exportOutput, cerr)
		}
	}()
	return export.Write(f, detail, exportFormat)
}

func loadDetail(ctx context.Context, st *store.Store, id string) (model.SessionDetail, error) {
	detail, err := st.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.SessionDetail{}, fmt.Errorf("session %s not found (list sessions with: tlai stats --plain)", id)
		}
		return model.SessionDetail{}, fmt.Errorf("failed to load session: %w", err)
	}
	return detail, nil
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
	if err := writeConfigTemplate(path); err != nil {
		return err
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

// writeConfigTemplate creates path with the commented template unless it exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Cooldown < 0 {
		return fmt.Errorf("--cooldown must be >= 0")
	}
	if cfg.BaselineMinChars < voice.MinSampleChars {
		return fmt.Errorf("--baseline-min-chars must be >= %d", voice.MinSampleChars)
	}
	if cfg.AnalyzeEvery <= 0 {
		return fmt.Errorf("--analyze-every must be > 0")
	}
	if cfg.Debounce <= 0 {
		return fmt.Errorf("--debounce must be > 0")
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
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

func applyStringSliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
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

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
