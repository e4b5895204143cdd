package cli

import (
	"context"

	"github.com/spf13/cobra"

	"debianbts/internal/app"
)

func newBugLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buglog ID",
		Short: "Show the message log of a bug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBugLog(commandContext(cmd), cmd, args[0])
		},
	}
}

func runBugLog(ctx context.Context, cmd *cobra.Command, arg string) error {
	ids, err := parseBugNumbers([]string{arg})
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.GetBugLog(ctx, app.BugLogRequest{ID: ids[0]})
	if err != nil {
		return err
	}
	return service.Reports.WriteBugLog(result.Entries)
}
