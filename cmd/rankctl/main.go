package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rankwatch/internal/rankctl"
	"github.com/okian/rankwatch/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(); err != nil {
		panic(err)
	}

	rankctl.ExecuteContext(ctx)
}
