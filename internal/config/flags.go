package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile  = flag.String("log-file", "", "Also write logs to this rotating file")
	flagFallback = flag.String("fallback", "", "Primitive used when a mesh fails to load (cube, sphere, cylinder, prism, none)")
	flagEncoding = flag.String("encoding", "", "Charset of OBJ documents")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagFallback != "" {
		cfg.Import.Fallback = *flagFallback
	}
	if *flagEncoding != "" {
		cfg.Import.TextEncoding = *flagEncoding
	}
}
