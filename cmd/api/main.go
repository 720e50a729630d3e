package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/bazar-universal-api/internal/di"
)

func main() {
	a, err := di.InitializeApp()
	if err != nil {
		log.Fatal(err)
	}

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		log.Fatal(err)
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Serve(ln)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		a.Logger.Info("shutdown signal received", "signal", s.String())
	case err := <-serveErr:
		if err != nil {
			a.Logger.Error("http server stopped", "error", err)
		}
	}

	if err := a.Shutdown(context.Background()); err != nil {
		os.Exit(1)
	}
}
