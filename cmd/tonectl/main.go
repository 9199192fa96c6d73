// Command tonectl classifies local image files without running the HTTP service.
package main

import (
	"os"

	"go-tone-inspector/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.WithError(err).Error("tonectl failed")
		os.Exit(1)
	}
}
