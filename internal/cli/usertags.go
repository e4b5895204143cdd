package cli

import (
	"context"

	"github.com/spf13/cobra"

	"debianbts/internal/app"
)

func newUsertagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "usertags EMAIL [TAG...]",
		Short: "Show the usertags of a user and the bugs carrying them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsertags(commandContext(cmd), cmd, args[0], args[1:])
		},
	}
}

func runUsertags(ctx context.Context, cmd *cobra.Command, email string, tags []string) error {
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.GetUsertags(ctx, app.UsertagsRequest{Email: email, Tags: tags})
	if err != nil {
		return err
	}
	return service.Reports.WriteUsertags(result.Usertags)
}
