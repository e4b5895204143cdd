package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"debianbts/internal/app"
	"debianbts/internal/types"
)

func newNewestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "newest N",
		Short: "List the N most recently filed bugs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNewest(commandContext(cmd), cmd, args[0])
		},
	}
}

func runNewest(ctx context.Context, cmd *cobra.Command, arg string) error {
	count, err := strconv.Atoi(arg)
	if err != nil {
		return types.ConfigurationError(fmt.Sprintf("count must be a number: %s", arg))
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.NewestBugs(ctx, app.NewestRequest{Count: count})
	if err != nil {
		return err
	}
	return service.Reports.WriteBugs(result.IDs)
}
