package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"debianbts/internal/app"
	"debianbts/internal/types"
)

type bugsOptions struct {
	Values  map[types.FilterKey]*string
	Bugs    []string
	Filters []string
}

var bugsFilterFlags = []struct {
	key   types.FilterKey
	usage string
}{
	{types.FilterPackage, "Bugs for the given binary package"},
	{types.FilterSubmitter, "Bugs from the submitter"},
	{types.FilterMaint, "Bugs belonging to a maintainer"},
	{types.FilterSrc, "Bugs belonging to a source package"},
	{types.FilterSeverity, "Bugs with a certain severity"},
	{types.FilterStatus, "Bug status: done, forwarded or open"},
	{types.FilterTag, "Bugs with the tag"},
	{types.FilterOwner, "Bugs assigned to the owner"},
	{types.FilterCorrespondent, "Bugs the correspondent has mailed"},
	{types.FilterAffects, "Bugs affecting the package"},
	{types.FilterArchive, "Archive state: 0, 1 or both"},
}

func newBugsCommand() *cobra.Command {
	opts := bugsOptions{Values: map[types.FilterKey]*string{}}
	cmd := &cobra.Command{
		Use:   "bugs",
		Short: "List bug numbers matching the given criteria",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBugs(commandContext(cmd), cmd, opts)
		},
	}
	for _, flag := range bugsFilterFlags {
		opts.Values[flag.key] = cmd.Flags().String(string(flag.key), "", flag.usage)
	}
	cmd.Flags().StringSliceVar(&opts.Bugs, "bug", nil, "Restrict the search to these bug numbers")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "Extra criterion as key=value")
	return cmd
}

func runBugs(ctx context.Context, cmd *cobra.Command, opts bugsOptions) error {
	filters, err := buildFilters(opts)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.GetBugs(ctx, app.BugsRequest{Filters: filters})
	if err != nil {
		return err
	}
	return service.Reports.WriteBugs(result.IDs)
}

// buildFilters keeps flag order stable so the request is reproducible.
func buildFilters(opts bugsOptions) ([]types.BugFilter, error) {
	var filters []types.BugFilter
	for _, flag := range bugsFilterFlags {
		value := opts.Values[flag.key]
		if value == nil || *value == "" {
			continue
		}
		filters = append(filters, types.BugFilter{Key: flag.key, Value: *value})
	}
	for _, raw := range opts.Filters {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return nil, types.ConfigurationError("filter must be key=value: " + raw)
		}
		key, err := types.ParseFilterKey(name)
		if err != nil {
			return nil, err
		}
		if key == types.FilterBugs {
			ids, err := parseBugNumbers([]string{value})
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				return nil, types.ConfigurationError("bugs filter requires at least one bug number")
			}
			filters = append(filters, types.BugFilter{Key: key, Bugs: ids})
			continue
		}
		filters = append(filters, types.BugFilter{Key: key, Value: value})
	}
	if len(opts.Bugs) > 0 {
		ids, err := parseBugNumbers(opts.Bugs)
		if err != nil {
			return nil, err
		}
		filters = append(filters, types.BugFilter{Key: types.FilterBugs, Bugs: ids})
	}
	return filters, nil
}
