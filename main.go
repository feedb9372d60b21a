/*
Example application that boots the engine, renders until the window is
closed and tears everything down in reverse order.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/orion/engine"
	"github.com/spaghettifunk/orion/engine/config"
	"github.com/spaghettifunk/orion/engine/core"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			core.LogFatal("failed to load configuration: %s", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	orion, err := engine.New(cfg)
	if err != nil {
		panic(err)
	}

	if err := orion.Initialize(); err != nil {
		panic(err)
	}

	// capture sigterm and other system calls to cancel the run loop
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := orion.Run(ctx); err != nil {
		panic(err)
	}
}
