package main

import (
	"os"

	"github.com/ralt/rpmtrust/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	// Setup logging format
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ctx, cancel := cli.SignalContext()
	defer cancel()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(cli.FormatError(err))
		cancel()
		os.Exit(1)
	}
}
