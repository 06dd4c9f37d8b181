package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ApplyFlags overrides environment values with command line flags. Only
// flags that were actually passed take effect.
func ApplyFlags(cfg *Config, name string, args []string) error {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	host := flagSet.String("host", cfg.App.Host, "address to bind")
	port := flagSet.StringP("port", "p", cfg.App.Port, "port to listen on")
	level := flagSet.String("log-level", cfg.Logger.Level, "log level (debug, info, warn, error)")
	seedFile := flagSet.String("seed-file", cfg.Seed.File, "YAML seed file (default: embedded seed)")
	delay := flagSet.Int("ai-delay", cfg.Responder.DelayMillis, "advisory response delay in milliseconds")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if flagSet.Changed("host") {
		cfg.App.Host = *host
	}
	if flagSet.Changed("port") {
		cfg.App.Port = *port
	}
	if flagSet.Changed("log-level") {
		cfg.Logger.Level = *level
	}
	if flagSet.Changed("seed-file") {
		cfg.Seed.File = *seedFile
	}
	if flagSet.Changed("ai-delay") {
		if *delay < 0 {
			return fmt.Errorf("invalid --ai-delay: %d", *delay)
		}
		cfg.Responder.DelayMillis = *delay
	}
	return nil
}
