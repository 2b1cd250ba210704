package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/config"
	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/factory"
	"github.com/jmohr/mailcast/internal/logging"
)

// CLIFlags contains all command line flags for the standalone parser
type CLIFlags struct {
	// Input flags
	InputFile string
	RouteTag  string

	// Output flags
	JSONOutput bool
	WriteText  bool
	OutputDir  string

	// Logging flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.StringVar(&flags.RouteTag, "route-tag", "", "Route tag to apply instead of resolving from headers")
	flag.BoolVar(&flags.JSONOutput, "json", false, "Print the parsed episode as JSON")
	flag.BoolVar(&flags.WriteText, "write-text", false, "Write the cleaned body text to a file")
	flag.StringVar(&flags.OutputDir, "output-dir", "emails", "Directory for -write-text output")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the parser CLI
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// No config file: defaults only, with empty routing rules
		return config.NewFromViper(config.NewEmptyViper()), nil
	}); err != nil {
		return nil, err
	}

	// Register routing factory and assembler
	if err := container.Provide(factory.NewRoutingFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.RoutingFactory) *core.Assembler {
		return f.CreateAssembler()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
