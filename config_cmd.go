package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lue-reader/lue/internal/config"
)

var (
	configPathOnly bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Edit the lue config file",
		Long: paragraph(fmt.Sprintf("\nOpen the lue config file in $EDITOR. When there is no file yet one with the %s is written first. The file is checked when the editor exits, so a bad speech engine or buffer size shows up here rather than when a book is opened.", keyword("default settings"))),
		Example: paragraph("lue config\nlue config --path\nEDITOR=vim lue config --config ~/books/lue.yml"),
		Args:    cobra.NoArgs,
		// A config that no longer validates must still be editable.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE:              editConfig,
	}
)

func editConfig(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if configPathOnly {
		fmt.Fprintln(out, configFile)
		return nil
	}
	if err := ensureConfigFile(); err != nil {
		return err
	}

	c, err := editor.Cmd(config.AppName, configFile)
	if err != nil {
		return fmt.Errorf("unable to find an editor: %w", err)
	}
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor exited with an error: %w", err)
	}

	if _, err := config.LoadFile(configFile); err != nil {
		return fmt.Errorf("saved %s, but it will not load: %w", configFile, err)
	}
	fmt.Fprintln(out, "Saved", keyword(configFile))
	return nil
}

// ensureConfigFile writes the default settings to configFile when nothing
// is there yet. Without --config the file viper found is used.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no location for the config file, use --config")
	}
	written, err := config.WriteDefault(configFile)
	if err != nil {
		return err
	}
	if written {
		log.Debug("wrote default configuration", "path", configFile)
	}
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&configPathOnly, "path", false, "print the config file location and exit")
}
