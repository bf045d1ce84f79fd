// card_dump runs one card image through the detector and prints every
// fragment with its tags, the size ranking and the assigned roles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cardscan/pkg/card"
	"cardscan/pkg/ocr"
)

func main() {
	// .env only fills variables that are not already set
	_ = godotenv.Load()

	f := flag.String("file", "", "card image to scan")
	detector := flag.String("detector", "tesseract", "tesseract or remote")
	url := flag.String("url", os.Getenv("DETECTOR_URL"), "remote detector endpoint")
	lang := flag.String("lang", "eng", "tesseract language")
	lexPath := flag.String("lexicon", "", "lexicon YAML (default built-in)")
	timeout := flag.Duration("timeout", 30*time.Second, "detector timeout")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}

	lex, err := card.LoadLexicon(*lexPath)
	if err != nil {
		log.Fatalf("lexicon: %v", err)
	}
	det, err := ocr.New(ocr.Config{Name: *detector, Language: *lang, URL: *url, Timeout: *timeout})
	if err != nil {
		log.Fatalf("detector: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	dets, err := det.Detect(ctx, *f)
	if err != nil {
		log.Fatalf("detect: %v", err)
	}

	ex := lex.Extract(dets)
	fmt.Printf("== %d fragments\n", len(ex.Fragments))
	for _, fr := range ex.Fragments {
		fmt.Printf("[%2d] conf=%.2f tags=%v %q\n", fr.Index, fr.Confidence, fr.Tags, fr.Text)
	}
	fmt.Println("== ranking (area desc, top asc)")
	for rank, g := range ex.Ranked {
		fmt.Printf("%2d. [%2d] area=%.0f top=%.0f %q\n", rank+1, g.DetectionIndex, g.Area(), g.TopY, dets[g.DetectionIndex].Text)
	}
	for _, i := range ex.Skipped {
		fmt.Printf("skipped [%2d]: malformed box\n", i)
	}
	fmt.Println("== roles")
	fmt.Printf("organization: %s\n", ex.OrganizationName)
	fmt.Printf("person:       %s\n", ex.PersonName)
	fmt.Printf("phone:        %s\n", ex.PhoneString())
}
