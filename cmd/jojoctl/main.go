// Package main is the operator CLI: dry-run replies and check the catalog.
package main

import (
	"os"

	"github.com/garyellow/jojo-linebot-go/internal/cli"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
	"github.com/garyellow/jojo-linebot-go/internal/logger"
)

func main() {
	log := logger.NewWithWriter("warn", os.Stderr)
	if err := cli.NewRoot(log).Execute(); err != nil {
		switch {
		case domerrors.IsInvalidInput(err):
			log.WithError(err).Error("invalid arguments; see jojoctl --help")
		case domerrors.IsInvalidCatalog(err):
			log.WithError(err).Error("catalog is invalid")
		default:
			log.WithError(err).Error("command failed")
		}
		os.Exit(1)
	}
}
