// scan_dir extracts contacts from every card image in a directory and keeps
// watching it for new ones when -watch is set.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cardscan/pkg/card"
	"cardscan/pkg/ocr"
	"cardscan/pkg/scan"
	"cardscan/process/batch"
)

func main() {
	// .env only fills variables that are not already set
	_ = godotenv.Load()

	dir := flag.String("dir", "uploads", "directory with card images")
	out := flag.String("out", "results", "directory for annotated images and JSON sidecars")
	workers := flag.Int("workers", 0, "concurrent workers (default NumCPU)")
	watch := flag.Bool("watch", false, "keep watching -dir for new images")
	force := flag.Bool("force", false, "reprocess images that already have a sidecar")
	detector := flag.String("detector", "tesseract", "tesseract or remote")
	url := flag.String("url", os.Getenv("DETECTOR_URL"), "remote detector endpoint")
	lang := flag.String("lang", "eng", "tesseract language")
	lexPath := flag.String("lexicon", "", "lexicon YAML (default built-in)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	zcfg := zap.NewProductionConfig()
	if *verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	zl, err := zcfg.Build()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	lex, err := card.LoadLexicon(*lexPath)
	if err != nil {
		logger.Fatalf("lexicon: %v", err)
	}
	det, err := ocr.New(ocr.Config{Name: *detector, Language: *lang, URL: *url, Timeout: 30 * time.Second})
	if err != nil {
		logger.Fatalf("detector: %v", err)
	}
	svc := scan.New(det, lex, scan.WithLogger(logger.Named("scan")))
	runner, err := batch.New(svc, batch.Options{Dir: *dir, OutDir: *out, Workers: *workers, Force: *force}, logger.Named("batch"))
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := runner.Run(ctx)
	if err != nil {
		logger.Fatalf("scan: %v", err)
	}
	logger.Infof("done: processed=%d skipped=%d failed=%d", sum.Processed, sum.Skipped, sum.Failed)

	if *watch {
		if err := runner.Watch(ctx); err != nil {
			logger.Fatalf("watch: %v", err)
		}
	}
}
