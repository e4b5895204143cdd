package adapters

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"debianbts/internal/ports"
	"debianbts/internal/types"
)

// ReportWriterAdapter renders results to Out as text, yaml or json.
type ReportWriterAdapter struct {
	Out    io.Writer
	Format types.OutputFormat
}

func NewReportWriterAdapter(out io.Writer, format types.OutputFormat) ReportWriterAdapter {
	if format == "" {
		format = types.FormatText
	}
	return ReportWriterAdapter{Out: out, Format: format}
}

func (a ReportWriterAdapter) WriteBugs(ids []int) error {
	if a.Format != types.FormatText {
		return a.encode(ids)
	}
	var lines []string
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("%d", id))
	}
	return a.writeLines(lines)
}

func (a ReportWriterAdapter) WriteStatus(reports []types.BugReport) error {
	if a.Format != types.FormatText {
		return a.encode(reports)
	}
	blocks := make([]string, 0, len(reports))
	for _, report := range reports {
		blocks = append(blocks, strings.TrimRight(report.String(), "\n"))
	}
	return a.writeLines([]string{strings.Join(blocks, "\n\n")})
}

// WriteUsertags prints tags in name order so output is stable.
func (a ReportWriterAdapter) WriteUsertags(mapping map[string][]int) error {
	if a.Format != types.FormatText {
		return a.encode(mapping)
	}
	tags := make([]string, 0, len(mapping))
	for tag := range mapping {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	lines := make([]string, 0, len(tags))
	for _, tag := range tags {
		ids := make([]string, 0, len(mapping[tag]))
		for _, id := range mapping[tag] {
			ids = append(ids, fmt.Sprintf("%d", id))
		}
		lines = append(lines, fmt.Sprintf("%s: %s", tag, strings.Join(ids, " ")))
	}
	return a.writeLines(lines)
}

func (a ReportWriterAdapter) WriteBugLog(entries []types.BugLogEntry) error {
	if a.Format != types.FormatText {
		return a.encode(entries)
	}
	var lines []string
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("--- message %d ---", entry.MsgNum))
		for _, name := range []string{"From", "Date", "Subject", "Message-Id"} {
			if value := entry.HeaderValue(name); value != "" {
				lines = append(lines, fmt.Sprintf("%s: %s", name, value))
			}
		}
		for _, att := range entry.Attachments {
			lines = append(lines, fmt.Sprintf("Attachment: %s %s (%d bytes)", att.ContentType, att.Filename, len(att.Data)))
		}
		lines = append(lines, "", strings.TrimRight(entry.Body, "\n"), "")
	}
	return a.writeLines(lines)
}

func (a ReportWriterAdapter) encode(value any) error {
	switch a.Format {
	case types.FormatJSON:
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(value); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode json output").
				WithCause(err)
		}
		return nil
	case types.FormatYAML:
		enc := yaml.NewEncoder(a.Out)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode yaml output").
				WithCause(err)
		}
		return enc.Close()
	default:
		return types.ConfigurationError(fmt.Sprintf("unknown output format: %s", a.Format))
	}
}

func (a ReportWriterAdapter) writeLines(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if _, err := io.WriteString(a.Out, strings.Join(lines, "\n")+"\n"); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write output").
			WithCause(err)
	}
	return nil
}

var _ ports.ReportWriterPort = ReportWriterAdapter{}
