package main

import (
	"os"

	"github.com/go-kit/log"

	"go-currency-sync/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		logger.Log("msg", "exiting", "err", err)
		os.Exit(1)
	}
}
