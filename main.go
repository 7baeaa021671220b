package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bodul/wordsearch/wordbank"
	"github.com/pkg/profile"
)

const shutdownGrace = 5 * time.Second

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	port := flag.String("port", envOr("PORT", "8080"), "HTTP port")
	dbPath := flag.String("db", envOr("WORDSEARCH_DB", "wordsearch.db"), "Path to the SQLite word bank")
	profileDir := flag.String("profile", os.Getenv("PROFILE_DIR"), "Write a CPU profile to this directory")
	flag.Parse()

	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	words, err := wordbank.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("Impossible d'ouvrir la base de mots : %v", err)
	}
	defer words.Close()
	log.Printf("Base de mots ouverte (%s)", *dbPath)

	var suggester wordSuggester
	if cfg, ok := geminiConfigFromEnv(); ok {
		gemini, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Impossible d'initialiser Gemini : %v", err)
		}
		defer gemini.Close()
		suggester = gemini
		log.Printf("Client Gemini initialisé (projet: %s, modèle: %s)", cfg.ProjectID, cfg.Model)
	} else {
		log.Println("GCP_PROJECT_ID non défini — génération de thèmes désactivée")
	}

	srv := NewServer(words, suggester)
	go srv.Run(ctx)

	httpSrv := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", httpSrv.Addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Serveur démarré sur http://localhost:%s", *port)
	if err := serve(ctx, httpSrv, ln); err != nil {
		log.Printf("Arrêt du serveur : %v", err)
	}
}

// serve runs httpSrv on ln until ctx is done, then shuts it down. It only
// returns once in-flight requests have finished or the grace period is over.
func serve(ctx context.Context, httpSrv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
