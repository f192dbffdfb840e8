package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/weldphase/internal/log"
	"github.com/chrissnell/weldphase/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	log.Sync()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the configuration from cfgFile. With no file the built-in
// defaults are used.
func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}

	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		if _, err := os.Stat(filename); err != nil {
			return nil, fmt.Errorf("cannot open SQLite configuration: %w", err)
		}
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the --config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
