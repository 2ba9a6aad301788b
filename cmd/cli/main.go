package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/cardkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/cardkeeper/internal/client/cli"
	"github.com/dmitrijs2005/cardkeeper/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, rest, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	root := cli.NewRootCommand(app)
	root.SetArgs(rest)
	err = root.ExecuteContext(ctx)
	app.Close()

	if err != nil {
		log.Fatalf("%v", err)
	}
}
