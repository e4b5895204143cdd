package cli

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debianbts/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "DEBIANBTS"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	Endpoint   string
	Proxy      string
	ChunkSize  int
	Parallel   int
	Timeout    int
	Retries    int
	Format     string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "debianbts",
		Short:         "Query the Debian bug tracking system",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	defaults := types.DefaultClientConfig()
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.Endpoint, "endpoint", defaults.Endpoint, "SOAP endpoint URL")
	flags.StringVar(&cfg.Proxy, "proxy", "", "HTTP proxy URL")
	flags.IntVar(&cfg.ChunkSize, "chunk-size", defaults.ChunkSize, "Bug ids per get_status request")
	flags.IntVar(&cfg.Parallel, "parallel", defaults.Parallel, "Concurrent get_status requests")
	flags.IntVar(&cfg.Timeout, "timeout", int(defaults.Timeout.Seconds()), "Request timeout in seconds")
	flags.IntVar(&cfg.Retries, "retries", defaults.Retries, "Attempts per request")
	flags.StringVar(&cfg.Format, "format", string(types.FormatText), "Output format (text, yaml, json)")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("endpoint", flags.Lookup("endpoint"))
	_ = viper.BindPFlag("proxy", flags.Lookup("proxy"))
	_ = viper.BindPFlag("chunk_size", flags.Lookup("chunk-size"))
	_ = viper.BindPFlag("parallel", flags.Lookup("parallel"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("retries", flags.Lookup("retries"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))

	cmd.AddCommand(newBugsCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newUsertagsCommand())
	cmd.AddCommand(newBugLogCommand())
	cmd.AddCommand(newNewestCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return types.ConfigurationError("failed to read config file: " + err.Error())
		}
		return nil
	}

	viper.SetConfigName("debianbts")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/debianbts")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

// setupLogging sends logs to stderr; stdout carries command output.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	switch types.KindOf(err) {
	case types.ErrorKindConfiguration:
		return 2
	case types.ErrorKindRemoteFault:
		return 3
	case types.ErrorKindMalformedReply, types.ErrorKindDecode:
		return 4
	case types.ErrorKindTransport:
		return 5
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return 2
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}
