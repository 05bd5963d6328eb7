package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dannyswat/htmledit/internal/log"
)

var (
	version = "dev"
	cfgFile string
	cfg     Config
)

var rootCmd = &cobra.Command{
	Use:   "htmledit",
	Short: "Replay rich-text edits against HTML documents",
	Long: `htmledit runs the editing engine of an HTML rich-text editor from the command line.
Edit scripts describe what a user would do (type, delete, press Enter, indent, make lists)
and htmledit applies them to a document the way the editor would.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(cmd.ErrOrStderr(), log.ParseLevel(cfg.LogLevel))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./htmledit.yaml or ~/.config/htmledit/config.yaml)")
	rootCmd.PersistentFlags().String("separator", "",
		"paragraph separator: br, p or div")
	rootCmd.PersistentFlags().Bool("css", false,
		"indent and align with inline styles")
	rootCmd.PersistentFlags().String("log-level", "",
		"log level: debug, info, warn or error")

	_ = viper.BindPFlag("paragraph_separator", rootCmd.PersistentFlags().Lookup("separator"))
	_ = viper.BindPFlag("use_css", rootCmd.PersistentFlags().Lookup("css"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	defaults := DefaultConfig()
	viper.SetDefault("paragraph_separator", defaults.ParagraphSeparator)
	viper.SetDefault("use_css", defaults.UseCSS)
	viper.SetDefault("whitespace_compat", defaults.WhitespaceCompat)
	viper.SetDefault("always_delete_hr", defaults.AlwaysDeleteHR)
	viper.SetDefault("return_closes_list", defaults.ReturnClosesList)
	viper.SetDefault("max_undo", defaults.MaxUndo)
	viper.SetDefault("author", defaults.Author)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("trace.enabled", defaults.Trace.Enabled)
	viper.SetDefault("trace.exporter", defaults.Trace.Exporter)
	viper.SetDefault("trace.file_path", defaults.Trace.FilePath)

	viper.SetEnvPrefix("htmledit")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. ./htmledit.yaml
		// 2. ~/.config/htmledit/config.yaml
		if _, err := os.Stat("htmledit.yaml"); err == nil {
			viper.SetConfigFile("htmledit.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "htmledit"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.WarnErr(log.CatCLI, "reading config", err, "file", viper.ConfigFileUsed())
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func execute() error {
	return rootCmd.Execute()
}

// setVersion sets the version string (called from main with ldflags)
func setVersion(v string) {
	version = v
	rootCmd.Version = v
}
