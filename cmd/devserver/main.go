// Command devserver runs a local stand-in for the EducaConecta backend.
// It serves the same routes and error envelope over a sqlite database, so
// the client can be developed and demoed without the production API.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"educaconecta/internal/config"
	"educaconecta/internal/devserver"
	"educaconecta/internal/logging"
)

func main() {
	cfg := config.LoadServer()

	log, err := logging.New("devserver.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	store, err := devserver.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      devserver.NewServer(store, log, cfg.UploadsDir).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	fmt.Printf("devserver listening on %s (db %s)\n", cfg.Addr, cfg.DBPath)
	log.Infof("listening on %s", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}
