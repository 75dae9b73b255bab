package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/accounts/internal/cli"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accounts/internal/server/services"
)

func main() {
	if err := run(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run() error {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, rm, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	us := services.NewUserService(db, rm, cfg)
	app := cli.NewApp(us, os.Stdin, os.Stdout)

	return app.Run(ctx, os.Args[1:])
}
