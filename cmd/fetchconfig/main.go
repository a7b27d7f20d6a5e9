package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/voxel-sandbox/internal/config"
)

func main() {
	var (
		src = flag.String("src", "", "config source, any go-getter URL")
		out = flag.String("o", "./voxel.yaml", "output file path")
	)
	flag.Parse()

	if *src == "" {
		panic("config source required")
	}

	if *out == "" {
		panic("output file path required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := os.RemoveAll(*out); err != nil {
		panic(err)
	}

	log.Default().Printf("start downloading config %s", *src)

	if err := config.Fetch(ctx, *out, *src); err != nil {
		panic(err)
	}

	// Reject a file voxeld would refuse to start with.
	if _, err := config.Load(*out); err != nil {
		panic(err)
	}

	log.Default().Printf("done downloading config %s", *out)
}
