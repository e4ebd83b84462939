package main

import (
	"context"
	"log"
	"os"

	"github.com/burnnote/burner/internal/buildinfo"
	"github.com/burnnote/burner/internal/client/cli"
	"github.com/burnnote/burner/internal/client/config"
	"github.com/burnnote/burner/internal/flagx"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg, os.Stdin, os.Stdout)

	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, flagx.Positional(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}

}
