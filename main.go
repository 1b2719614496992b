// Package main provides the entry point for the lue CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/muesli/gitcha"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lue-reader/lue/internal/config"
	"github.com/lue-reader/lue/internal/content"
	"github.com/lue-reader/lue/internal/position"
	"github.com/lue-reader/lue/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	startAt    string
	noTTS      bool
	mouse      bool
	debug      bool

	// cfg is loaded in PersistentPreRunE and read by every command.
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "lue [FILE|DIR]",
		Short: "Read books in the terminal, out loud",
		Long: paragraph(
			fmt.Sprintf("\nRead books in the terminal, %s!\n\nPlain text, markdown, HTML and EPUB are supported.", keyword("out loud")),
		),
		Example: paragraph("lue book.epub\nlue --tts piper --speed 1.5 notes.md\nlue --position 2:0:0 book.epub"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	c, err := config.LoadFromViper(viper.GetViper())
	if err != nil {
		return err
	}
	if err := c.ResolveDirs(); err != nil {
		return err
	}
	cfg = c

	if debug || viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("configuration loaded", "file", viper.ConfigFileUsed(), "engine", cfg.Engine, "speed", cfg.Speed)
	return nil
}

func execute(cmd *cobra.Command, args []string) error {
	arg := "."
	if len(args) > 0 {
		arg = args[0]
	}
	path, err := findBook(arg)
	if err != nil {
		return err
	}

	var start position.Position
	if startAt != "" {
		if start, err = position.Parse(startAt); err != nil {
			return err
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("lue needs a terminal to run in")
	}
	return runTUI(cmd.Context(), path, start)
}

// findBook returns arg when it is a readable file. For a directory it
// searches for books and returns the only one found.
func findBook(arg string) (string, error) {
	st, err := os.Stat(arg)
	if err != nil {
		return "", fmt.Errorf("unable to open book: %w", err)
	}
	if !st.IsDir() {
		if !content.Supported(arg) {
			return "", fmt.Errorf("%w: %s", content.ErrUnsupportedFormat, filepath.Ext(arg))
		}
		return filepath.Abs(arg)
	}

	books, err := findBooks(arg)
	if err != nil {
		return "", err
	}
	switch len(books) {
	case 0:
		return "", fmt.Errorf("no books found in %s", arg)
	case 1:
		return books[0], nil
	}

	cwd, _ := filepath.Abs(arg)
	var b strings.Builder
	fmt.Fprintf(&b, "found %d books, pick one:\n", len(books))
	for _, book := range books {
		rel, err := filepath.Rel(cwd, book)
		if err != nil {
			rel = book
		}
		fmt.Fprintf(&b, "  %s\n", keyword(rel))
	}
	return "", errors.New(strings.TrimSuffix(b.String(), "\n"))
}

func findBooks(dir string) ([]string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	patterns := make([]string, len(content.Extensions))
	for i, ext := range content.Extensions {
		patterns[i] = "*" + ext
	}

	ch, err := gitcha.FindFilesExcept(dir, patterns, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to search %s: %w", dir, err)
	}
	var books []string
	for res := range ch {
		books = append(books, res.Path)
	}
	sort.Strings(books)
	return books, nil
}

func runTUI(ctx context.Context, path string, start position.Position) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	b := newBackend(ctx, path, cfg, noTTS)
	defer b.close()

	uiCfg.Path = path
	uiCfg.ConfigFile = configFile
	uiCfg.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	uiCfg.EnableMouse = uiCfg.EnableMouse || mouse
	uiCfg.Highlight = cfg.Highlight
	uiCfg.LoadHighlight = reloadHighlight
	uiCfg.CacheSize = b.cacheSize
	uiCfg.Open = b.open
	uiCfg.Start = start
	uiCfg.Speed = cfg.Speed

	// Run Bubble Tea program
	if _, err := ui.NewProgram(ctx, uiCfg).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// reloadHighlight rereads the config file for the highlight settings.
func reloadHighlight() (config.HighlightConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		return cfg.Highlight, err
	}
	c, err := config.LoadFromViper(viper.GetViper())
	if err != nil {
		return cfg.Highlight, err
	}
	return c.Highlight, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", configFile, "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug output to the log file")
	rootCmd.Flags().String("tts", "", "speech engine (edge, gtts, piper, mock)")
	rootCmd.Flags().String("voice", "", "voice for the speech engine")
	rootCmd.Flags().Float64("speed", 1.0, "playback speed (1.0 to 3.0)")
	rootCmd.Flags().StringVar(&startAt, "position", "", "start at chapter:paragraph:sentence")
	rootCmd.Flags().BoolVar(&noTTS, "no-tts", false, "read without speech")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("tts"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(configCmd, cacheCmd, enginesCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	dirs, err := config.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(config.AppName)
	viper.SetConfigType("yaml")
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		configFile = used
		return
	}

	configFile = filepath.Join(dirs[0], config.AppName+".yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
		return
	}
	if err := viper.ReadInConfig(); err != nil {
		log.Warn("Could not read default configuration", "err", err)
	}
}
