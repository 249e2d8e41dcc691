package commands

import (
	"strings"

	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

const commandModuleRoot = "site.commands"

// CommandLogger returns a logger scoped to site.commands.<module>.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
