// Package config provides application configuration management.
//
// The config package handles loading and validation of the engine's
// configuration from YAML files. It covers server transport settings,
// suite orchestration knobs, sandbox resource limits, storage locations,
// and logging.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("workers: %d\n", cfg.Suite.Workers)
package config
