package factory

import (
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/adapters/ingest"
	"github.com/jmohr/mailcast/internal/allowlist"
	"github.com/jmohr/mailcast/internal/config"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/ports"
)

// IngestFactory creates the optional direct SMTP ingest
type IngestFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger) *IngestFactory {
	return &IngestFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMessageIngest creates the SMTP ingest service. Returns nil when
// ingest is disabled in the configuration.
func (f *IngestFactory) CreateMessageIngest(service *core.PipelineService, objects core.ObjectStore) ports.MessageIngest {
	ingestCfg := f.cfg.GetIngest()
	if !ingestCfg.Enabled {
		return nil
	}

	allow := allowlist.NewChecker(ingestCfg.AllowedSenders, f.logger)
	return ingest.NewSMTPIngest(
		service,
		objects,
		allow,
		f.logger,
		ingestCfg.ListenAddress,
		ingestCfg.Domain,
		ingestCfg.MaxMessageBytes,
	)
}
