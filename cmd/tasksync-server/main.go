// Package main runs a task server that stores one versioned task list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tasksync/internal/logging"
	"tasksync/internal/server"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	addrVar := flag.String("addr", ":3000", "the address to listen on")
	passwordVar := flag.String("password", os.Getenv("TASKSYNC_SERVER_PASSWORD"), "the password clients log in with")
	dbVar := flag.String("db", "", "sqlite database file (default: in memory, lost on exit)")
	logFileVar := flag.String("log-file", "", "write logs to a rotating file")
	debugVar := flag.Bool("debug", false, "enable debug logs")
	flag.Parse()

	logs := logging.Setup(logging.Options{Debug: *debugVar, File: *logFileVar})
	defer logs.Close()

	if *passwordVar == "" {
		return errors.New("a password is required (--password or TASKSYNC_SERVER_PASSWORD)")
	}

	var store server.Store = server.NewMemoryStore()
	if *dbVar != "" {
		slog.Info("Opening database", "path", *dbVar)
		db, err := server.OpenSQLite(*dbVar)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		store = db
	}
	defer store.Close()

	srv := server.New(server.Options{Store: store, Password: *passwordVar})
	httpServer := &http.Server{
		Addr:              *addrVar,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("listening", "addr", *addrVar)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server listen failed", "err", err)
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-exit
	slog.Info("Signal caught", "sig", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		_ = httpServer.Close()
	}
	wg.Wait()
	return nil
}
