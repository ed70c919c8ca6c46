package main

import (
	"fmt"
	"os"

	"github.com/searchktools/statichost/app"
	"github.com/searchktools/statichost/config"
	"github.com/searchktools/statichost/logging"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logging.New(cfg.LogDir)
	defer log.Close()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	a.Run()
}
