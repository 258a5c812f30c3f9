package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/guessit/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location from the
// --config flag, the GUESSIT_CONFIG env var, or well-known candidate
// paths. An empty result means built-in defaults apply.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("GUESSIT_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/guessit/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
