package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"cardscan/pkg/card"
	"cardscan/pkg/ocr"
	"cardscan/pkg/scan"
)

func main() {
	cfg := loadConfig()
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	lex, err := card.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		logger.Fatalf("load lexicon: %v", err)
	}
	detector, err := ocr.New(cfg.Detector)
	if err != nil {
		logger.Fatalf("init detector: %v", err)
	}
	store := fileStore{uploadDir: cfg.UploadDir, resultDir: cfg.ResultDir}
	if err := store.ensureDirs(); err != nil {
		logger.Fatalf("storage: %v", err)
	}
	if !cfg.authEnabled() {
		logger.Warn("JWT_SECRET/AUTH_USERNAME/AUTH_PASSWORD_HASH not all set; upload endpoints are open")
	}

	s := &server{
		cfg:     cfg,
		store:   store,
		scanner: scan.New(detector, lex, scan.WithLogger(logger.Named("scan"))),
		log:     logger,
	}
	r := gin.Default()
	setupRoutes(r, s)

	var handler http.Handler = r
	if len(cfg.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler(r)
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Infof("listening on %s (detector=%s)", addr, detector.Name())
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
