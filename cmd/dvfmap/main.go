package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"dvfmap/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stderr)
		logger.WithError(err).Error("Command failed")
		os.Exit(cli.GetExitCode(err))
	}
}
