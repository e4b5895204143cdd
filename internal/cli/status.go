package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debianbts/internal/app"
)

type statusOptions struct {
	Sort           bool
	AffectsVersion string
}

func newStatusCommand() *cobra.Command {
	opts := statusOptions{}
	cmd := &cobra.Command{
		Use:   "status ID...",
		Short: "Show the full status of bugs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(commandContext(cmd), cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Sort, "sort", false, "Order bugs most urgent first")
	cmd.Flags().StringVar(&opts.AffectsVersion, "affects-version", "", "Only bugs present in this Debian version")
	_ = viper.BindPFlag("status.sort", cmd.Flags().Lookup("sort"))
	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, args []string, opts statusOptions) error {
	ids, err := parseBugNumbers(args)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.GetStatus(ctx, app.StatusRequest{
		IDs:            ids,
		SortByUrgency:  resolveBool(cmd, opts.Sort, "status.sort", "sort"),
		AffectsVersion: resolveString(cmd, opts.AffectsVersion, "status.affects_version", "affects-version"),
	})
	if err != nil {
		return err
	}
	return service.Reports.WriteStatus(result.Reports)
}
