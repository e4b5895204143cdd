package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debianbts/internal/app"
	"debianbts/internal/types"
)

// clientConfig assembles the client configuration from defaults, the
// config file, DEBIANBTS_* variables and flags, in rising precedence.
func clientConfig(cmd *cobra.Command) types.ClientConfig {
	cfg := types.DefaultClientConfig()
	if value := resolvePersistentString(cmd, "endpoint", "endpoint"); value != "" {
		cfg.Endpoint = value
	}
	if value := viper.GetString("namespace"); value != "" {
		cfg.Namespace = value
	}
	cfg.Proxy = resolvePersistentString(cmd, "proxy", "proxy")
	if value := viper.GetInt("chunk_size"); viper.IsSet("chunk_size") {
		cfg.ChunkSize = value
	}
	if value := viper.GetInt("parallel"); viper.IsSet("parallel") {
		cfg.Parallel = value
	}
	if value := viper.GetInt("timeout"); value > 0 {
		cfg.Timeout = time.Duration(value) * time.Second
	}
	if value := viper.GetInt("retries"); value > 0 {
		cfg.Retries = value
	}
	if value := viper.GetString("ca_dir"); value != "" {
		cfg.CADir = value
	}
	cfg.UserAgent = "debianbts/" + version
	if value := viper.GetString("user_agent"); value != "" {
		cfg.UserAgent = value
	}
	return cfg
}

func newAppService(cmd *cobra.Command) (app.Service, error) {
	format, err := types.ParseOutputFormat(viper.GetString("format"))
	if err != nil {
		return app.Service{}, err
	}
	return app.NewService(clientConfig(cmd), cmd.OutOrStdout(), format)
}

// commandContext attaches the global logger so core code can log
// through log.Ctx.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.Logger.WithContext(ctx)
}

func parseBugNumbers(values []string) ([]int, error) {
	ids := make([]int, 0, len(values))
	for _, value := range values {
		for _, field := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.Atoi(strings.TrimPrefix(field, "#"))
			if err != nil || id <= 0 {
				return nil, types.ConfigurationError(fmt.Sprintf("invalid bug number: %s", field))
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

// resolvePersistentString reads a root flag through viper, which already
// holds the flag value when it was set.
func resolvePersistentString(cmd *cobra.Command, key string, flagName string) string {
	if cmd != nil {
		if flag := cmd.Flag(flagName); flag != nil && flag.Changed {
			return flag.Value.String()
		}
	}
	return strings.TrimSpace(viper.GetString(key))
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
