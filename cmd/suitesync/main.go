package main

import (
	"context"
	"os"

	"suitesync/config"
	"suitesync/di"
	"suitesync/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	app := di.InitializeApp()
	os.Exit(app.Run(context.Background(), os.Args[1:]))
}
