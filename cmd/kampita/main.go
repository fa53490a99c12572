package main

import (
	"context"
	"os"

	"github.com/hxnx/kampita/internal/cli"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		log.WithError(err).Error("kampita failed")
		os.Exit(1)
	}
}
