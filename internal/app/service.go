package app

import (
	"io"
	"time"

	"debianbts/internal/adapters"
	"debianbts/internal/core"
	"debianbts/internal/ports"
	"debianbts/internal/types"
)

type Service struct {
	BugTracker ports.BugTrackerPort
	Reports    ports.ReportWriterPort
	Clock      func() time.Time
}

// NewService wires the HTTP transport and report writer from cfg. The
// configuration is read once here and never mutated afterwards.
func NewService(cfg types.ClientConfig, out io.Writer, format types.OutputFormat) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return Service{}, err
	}
	transport, err := adapters.NewSOAPHTTPAdapter(cfg)
	if err != nil {
		return Service{}, err
	}
	return NewServiceWithTransport(transport, cfg, out, format), nil
}

// NewServiceWithTransport is NewService with an injected transport.
func NewServiceWithTransport(transport ports.TransportPort, cfg types.ClientConfig, out io.Writer, format types.OutputFormat) Service {
	return Service{
		BugTracker: core.NewBugTracker(transport, cfg),
		Reports:    adapters.NewReportWriterAdapter(out, format),
		Clock:      time.Now,
	}
}
