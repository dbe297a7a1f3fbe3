package config

import "flag"

// Flags are the command-line overrides shared by the explorer commands. Only
// flags that were set on the command line replace file values.
type Flags struct {
	ConfigPath string
	Scenario   string
	Duration   float64
	Seed       int64
	GenSeed    int64
	LogLevel   string
	LogFile    string
	LogJSON    bool
	Verbose    bool
}

// Register defines the flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "JSON configuration file (defaults when empty)")
	fs.StringVar(&f.Scenario, "scenario", "", "Scenario JSON file; empty generates an arena")
	fs.Float64Var(&f.Duration, "duration", 0, "Simulated seconds")
	fs.Int64Var(&f.Seed, "seed", 0, "Navigator random seed")
	fs.Int64Var(&f.GenSeed, "gen-seed", 0, "Seed for the generated arena")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Log as JSON")
	fs.BoolVar(&f.Verbose, "verbose", false, "Log periodic progress")
}

// Load reads the configured file (or the defaults), applies the flags that
// were set on fs and validates the result. Call it after fs.Parse.
func (f *Flags) Load(fs *flag.FlagSet) (AppConfig, error) {
	cfg := DefaultConfig()
	if f.ConfigPath != "" {
		var err error
		if cfg, err = LoadConfig(f.ConfigPath); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "scenario":
			cfg.Sim.Scenario = f.Scenario
		case "duration":
			cfg.Sim.Duration = f.Duration
		case "seed":
			cfg.Sim.Seed = f.Seed
		case "gen-seed":
			cfg.Sim.Generate.Seed = f.GenSeed
		case "log-level":
			cfg.Log.Level = f.LogLevel
		case "log-file":
			cfg.Log.File = f.LogFile
		case "log-json":
			cfg.Log.JSON = f.LogJSON
		case "verbose":
			cfg.Sim.Verbose = f.Verbose
		}
	})
	return cfg, cfg.Validate()
}
