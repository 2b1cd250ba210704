package factory

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/config"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/newsletter"
	"github.com/jmohr/mailcast/internal/routing"
)

// resolverTimeout bounds the single redirect-following GET some source
// adapters use to recover canonical article links.
const resolverTimeout = 10 * time.Second

// RoutingFactory creates the routing table and the assembler built on it
type RoutingFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRoutingFactory creates a new routing factory
func NewRoutingFactory(cfg *config.Config, logger *zap.Logger) *RoutingFactory {
	return &RoutingFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTable creates a routing table from the configured rules
func (f *RoutingFactory) CreateTable() *routing.Table {
	routingCfg := f.cfg.GetRouting()

	patterns := make([]routing.ListPattern, 0, len(routingCfg.ListPatterns))
	for _, entry := range routingCfg.ListPatterns {
		substring, tag, ok := strings.Cut(entry, "=")
		substring = strings.TrimSpace(substring)
		tag = strings.TrimSpace(tag)
		if !ok || substring == "" || tag == "" {
			f.logger.Warn("Ignoring malformed list pattern, want substring=tag",
				zap.String("entry", entry))
			continue
		}
		patterns = append(patterns, routing.ListPattern{Substring: substring, Tag: tag})
	}

	return routing.NewTable(routingCfg.SenderTags, patterns)
}

// CreateAssembler creates the message assembler with the built-in
// newsletter adapters
func (f *RoutingFactory) CreateAssembler() *core.Assembler {
	adapters := newsletter.BuiltinAdapters(newsletter.NewHTTPResolver(resolverTimeout))
	return core.NewAssembler(f.CreateTable(), newsletter.NewRegistry(adapters))
}
