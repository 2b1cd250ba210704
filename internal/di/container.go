package di

import (
	"context"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/adapters/queue"
	"github.com/jmohr/mailcast/internal/config"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/factory"
	"github.com/jmohr/mailcast/internal/feed"
	"github.com/jmohr/mailcast/internal/logging"
	"github.com/jmohr/mailcast/internal/ports"
	"github.com/jmohr/mailcast/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextSplitterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStorageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSynthFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRoutingFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFeedFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}

	// Register text splitter
	if err := container.Provide(func(f *factory.TextSplitterFactory) *utils.TextSplitter {
		return f.CreateTextSplitter()
	}); err != nil {
		return nil, err
	}

	// Register episode store
	if err := container.Provide(func(f *factory.StoreFactory) (core.EpisodeStore, error) {
		return f.CreateEpisodeStore()
	}); err != nil {
		return nil, err
	}

	// Register object store
	if err := container.Provide(func(f *factory.StorageFactory) (core.ObjectStore, error) {
		return f.CreateObjectStore(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register speech synthesizer and its model/voice overrides
	if err := container.Provide(func(f *factory.SynthFactory) (core.SpeechSynthesizer, error) {
		return f.CreateSynthesizer()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.SynthFactory) core.TTSOverrides {
		return f.Overrides()
	}); err != nil {
		return nil, err
	}

	// Register assembler
	if err := container.Provide(func(f *factory.RoutingFactory) *core.Assembler {
		return f.CreateAssembler()
	}); err != nil {
		return nil, err
	}

	// Register feed publisher
	if err := container.Provide(func(f *factory.FeedFactory, episodes core.EpisodeStore, objects core.ObjectStore) *feed.Publisher {
		return f.CreatePublisher(episodes, objects)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(p *feed.Publisher) core.FeedPublisher {
		return p
	}); err != nil {
		return nil, err
	}

	// Register pipeline service
	if err := container.Provide(core.NewPipelineService); err != nil {
		return nil, err
	}

	// Register queue consumer and its polling loop
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) ports.QueueConsumer {
		cloudflareCfg := cfg.GetCloudflare()
		return queue.NewConsumer(queue.Config{
			AccountID: cloudflareCfg.AccountID,
			QueueID:   cloudflareCfg.QueueID,
			APIToken:  cloudflareCfg.APIToken,
			BaseURL:   cloudflareCfg.APIBase,
		}, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		consumer ports.QueueConsumer,
		service *core.PipelineService,
		cfg *config.Config,
		logger *zap.Logger,
	) (*queue.Loop, error) {
		consumerCfg := cfg.GetConsumer()
		interval, err := cfg.GetDuration("consumer.poll_interval")
		if err != nil {
			return nil, fmt.Errorf("invalid consumer poll interval: %w", err)
		}
		return queue.NewLoop(
			consumer,
			service,
			consumerCfg.BatchSize,
			consumerCfg.VisibilityTimeout,
			interval,
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register SMTP ingest (nil when disabled)
	if err := container.Provide(func(f *factory.IngestFactory, service *core.PipelineService, objects core.ObjectStore) ports.MessageIngest {
		return f.CreateMessageIngest(service, objects)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
