package main

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"github.com/seuros/nestegg/internal/cli"
	"github.com/seuros/nestegg/internal/logging"
)

//go:embed VERSION
var versionFile string

var executeCLI = cli.Execute

func run() error {
	version := strings.TrimSpace(versionFile)
	return executeCLI(version)
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("nestegg execution failed", zap.Error(err))
	}
}
