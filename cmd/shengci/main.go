// Package main provides the CLI entrypoint for shengci.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hmori/shengci/internal/catalog"
	"github.com/hmori/shengci/internal/config"
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/related"
	"github.com/hmori/shengci/internal/session"
	"github.com/hmori/shengci/internal/speech"
	"github.com/hmori/shengci/internal/stats"
	"github.com/hmori/shengci/internal/statsui"
	"github.com/hmori/shengci/internal/store"
	"github.com/hmori/shengci/internal/tui"
)

const (
	defaultOrder     = string(model.OrderSequential)
	defaultMode      = string(model.ModeJapaneseToChinese)
	defaultWeakCount = 10
	defaultPlotRows  = 10
)

var (
	practiceLessons   []int
	practiceOrder     string
	practiceMode      string
	practiceSpeak     bool
	practiceNoSave    bool
	practiceWeakCount int

	statsLessons   []int
	statsWeakCount int

	historyCurve  bool
	historyWindow int
	historyDelete int64

	wordsLesson  int
	wordsDisable int64
	wordsEnable  int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shengci",
		Short:         "TUI Chinese vocabulary trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntSliceVar(&practiceLessons, "lessons", nil, "lesson numbers to practice (e.g. 1,2,3)")
	rootCmd.Flags().StringVar(&practiceOrder, "order", defaultOrder, "question order: sequential, random, or weak")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "question mode: jp-cn, cn-jp, or pinyin")
	rootCmd.Flags().BoolVar(&practiceSpeak, "speak", false, "pronounce words via the configured speech command")
	rootCmd.Flags().BoolVar(&practiceNoSave, "no-save", false, "do not record this session in practice history")
	rootCmd.Flags().IntVar(&practiceWeakCount, "weak-count", defaultWeakCount, "weak-word list size in reports")

	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWordsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntSliceConfig(cmd, "lessons", &practiceLessons, fileCfg.Practice.Lessons)
	applyStringConfig(cmd, "order", &practiceOrder, fileCfg.Practice.Order)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyBoolConfig(cmd, "speak", &practiceSpeak, fileCfg.Practice.Speak)
	applyIntConfig(cmd, "weak-count", &practiceWeakCount, fileCfg.Practice.WeakCount)

	save := !practiceNoSave
	if !cmd.Flags().Changed("no-save") && fileCfg.Practice.Save != nil {
		save = *fileCfg.Practice.Save
	}

	cfg := model.Config{
		Lessons:   practiceLessons,
		Order:     model.OrderMode(practiceOrder),
		Mode:      model.QuestionMode(practiceMode),
		Speak:     practiceSpeak,
		Save:      save,
		WeakCount: practiceWeakCount,
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg, cat); err != nil {
		return err
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

	ctx := context.Background()
	wordStats, err := st.AllStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	disabled, err := st.DisabledWords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load disabled words: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	questions, err := session.Build(cat, wordStats, disabled, cfg.Lessons, cfg.Order, rng)
	if err != nil {
		return err
	}
	finder := related.NewFinder(cat.Words())
	engine, err := session.New(questions, cfg.Mode, st, finder, wordStats)
	if err != nil {
		return err
	}

	speaker := speech.New(speechConfig(fileCfg))
	if cfg.Speak && !speaker.Enabled() {
		logErrln("no speech command configured; run: shengci config")
		cfg.Speak = false
	}

	uiModel := tui.NewModel(cfg, engine, st, cat, speaker)
	program := tea.NewProgram(uiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the lesson catalog",
	}
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Validate and install a lesson catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogImportCmd,
	})
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the installed catalog path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.DefaultCatalogPath())
			return err
		},
	})
	return catalogCmd
}

func runCatalogImportCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := catalog.Parse(data)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	path := config.DefaultCatalogPath()
	if err := writeCatalog(path, data); err != nil {
		return fmt.Errorf("failed to install catalog: %w", err)
	}
	words := 0
	for _, lesson := range cat.Lessons() {
		words += len(lesson.Words)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Installed %d lessons (%d words) to %s\n", len(cat.Lessons()), words, path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeCatalog installs the validated catalog atomically.
func writeCatalog(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "lessons-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
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

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntSliceVar(&statsLessons, "lessons", nil, "limit to lesson numbers (default: all)")
	cmd.Flags().IntVar(&statsWeakCount, "weak-count", defaultWeakCount, "weak-word list size")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	for _, lesson := range statsLessons {
		if !cat.HasLesson(lesson) {
			return fmt.Errorf("unknown lesson %d", lesson)
		}
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

	cfg := model.StatsConfig{
		Lessons:   statsLessons,
		WeakCount: statsWeakCount,
	}
	uiModel := statsui.NewModel(st, cat, cfg)
	program := tea.NewProgram(uiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show practice history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().BoolVar(&historyCurve, "curve", false, "plot session accuracy over time")
	cmd.Flags().IntVar(&historyWindow, "window", 0, "moving average window for --curve")
	cmd.Flags().Int64Var(&historyDelete, "delete", 0, "delete the history record with this id")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
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
	ctx := context.Background()

	if cmd.Flags().Changed("delete") {
		if err := st.DeletePracticeRecord(ctx, historyDelete); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %d\n", historyDelete); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	records, err := st.ListPracticeRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyCurve {
		values := stats.HistoryAccuracySeries(records)
		if len(values) < 2 {
			return fmt.Errorf("not enough saved sessions to plot (need 2)")
		}
		if historyWindow > 1 {
			values = stats.MovingAverage(values, historyWindow)
		}
		return stats.PlotAccuracyCurve(cmd.OutOrStdout(), "Practice accuracy", values, 0, defaultPlotRows)
	}

	return stats.RenderHistory(cmd.OutOrStdout(), records, cat.Titles)
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "List a lesson's words with stats",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
	cmd.Flags().IntVar(&wordsLesson, "lesson", 0, "lesson number")
	cmd.Flags().Int64Var(&wordsDisable, "disable", 0, "exclude the word with this id from practice")
	cmd.Flags().Int64Var(&wordsEnable, "enable", 0, "re-include the word with this id")
	if err := cmd.MarkFlagRequired("lesson"); err != nil {
		logErrf("failed to mark flag required: %v\n", err)
	}
	return cmd
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	lesson, ok := cat.LessonByID(wordsLesson)
	if !ok {
		return fmt.Errorf("unknown lesson %d", wordsLesson)
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
	ctx := context.Background()

	if cmd.Flags().Changed("disable") {
		if err := setWordEnabled(ctx, st, cat, wordsDisable, false); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("enable") {
		if err := setWordEnabled(ctx, st, cat, wordsEnable, true); err != nil {
			return err
		}
	}

	wordStats, err := st.AllStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", cat.Titles([]int{lesson.ID})); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderWordList(cmd.OutOrStdout(), lesson.Words, wordStats)
}

func setWordEnabled(ctx context.Context, st *store.Store, cat *catalog.Catalog, id int64, enabled bool) error {
	if _, ok := cat.WordByID(id); !ok {
		return fmt.Errorf("unknown word id %d", id)
	}
	return st.SetEnabled(ctx, id, enabled)
}

func loadCatalog() (*catalog.Catalog, error) {
	path := config.DefaultCatalogPath()
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, catalogLoadError(path, err)
	}
	return cat, nil
}

func catalogLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load lesson catalog: %v", err),
		fmt.Sprintf("expected catalog at: %s", path),
		"Install one with: shengci catalog import <file>",
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntSliceConfig(cmd *cobra.Command, name string, target *[]int, value []int) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func speechConfig(fileCfg config.FileConfig) model.SpeechConfig {
	cfg := model.SpeechConfig{Args: fileCfg.Speech.Args}
	if fileCfg.Speech.Command != nil {
		cfg.Command = *fileCfg.Speech.Command
	}
	return cfg
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# shengci configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lessons = [1, 2]        # Lesson numbers to practice
# order = %q       # Question order: sequential, random, or weak
# mode = %q            # Question mode: jp-cn, cn-jp, or pinyin
# speak = false           # Pronounce words via the speech command
# save = true             # Record sessions in practice history
# weak-count = %d         # Weak-word list size in reports

[speech]
# command = "say"         # External pronunciation command
# args = ["-v", "Tingting"]
`,
		defaultOrder,
		defaultMode,
		defaultWeakCount,
	)
}

func validateConfig(cfg model.Config, cat *catalog.Catalog) error {
	switch cfg.Order {
	case model.OrderSequential, model.OrderRandom, model.OrderWeak:
	default:
		return fmt.Errorf("--order must be sequential, random, or weak")
	}
	switch cfg.Mode {
	case model.ModeJapaneseToChinese, model.ModeChineseToJapanese, model.ModePinyinToRest:
	default:
		return fmt.Errorf("--mode must be jp-cn, cn-jp, or pinyin")
	}
	if cfg.WeakCount < 0 {
		return fmt.Errorf("--weak-count must be >= 0")
	}
	if len(cfg.Lessons) == 0 {
		return fmt.Errorf("select lessons with --lessons (e.g. --lessons 1,2)")
	}
	for _, lesson := range cfg.Lessons {
		if !cat.HasLesson(lesson) {
			return fmt.Errorf("unknown lesson %d", lesson)
		}
	}
	return nil
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
