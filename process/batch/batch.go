// Package batch extracts contact fields from every card image in a
// directory, writing the annotated image and a JSON sidecar per card.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cardscan/pkg/annotate"
	"cardscan/pkg/scan"
)

// settle is how long a new file must stay quiet before it is processed.
const settle = 300 * time.Millisecond

// Options configures a Runner.
type Options struct {
	Dir     string
	OutDir  string
	Workers int  // defaults to NumCPU
	Force   bool // reprocess files that already have a sidecar
}

// Record is the JSON sidecar written next to each annotated image.
type Record struct {
	Source      string    `json:"source"`
	Annotated   string    `json:"annotated"`
	ProcessedAt time.Time `json:"processed_at"`
	*scan.Result
}

// Summary counts the outcome of a scan.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

type Runner struct {
	svc  *scan.Service
	opts Options
	log  *zap.SugaredLogger

	mu  sync.Mutex
	sum Summary
}

func New(svc *scan.Service, opts Options, log *zap.SugaredLogger) (*Runner, error) {
	if opts.Dir == "" || opts.OutDir == "" {
		return nil, errors.New("batch: dir and out dir are required")
	}
	in, _ := filepath.Abs(opts.Dir)
	out, _ := filepath.Abs(opts.OutDir)
	if in == out {
		return nil, errors.New("batch: out dir must differ from input dir")
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{svc: svc, opts: opts, log: log}, nil
}

// Run processes every supported image currently in the input directory.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := os.MkdirAll(r.opts.OutDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create out dir: %w", err)
	}
	files, err := ListImageFiles(r.opts.Dir)
	if err != nil {
		return Summary{}, err
	}
	r.log.Infof("scanning %d files (workers=%d)", len(files), r.opts.Workers)

	r.mu.Lock()
	r.sum = Summary{}
	r.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for _, name := range files {
		if ctx.Err() != nil {
			break
		}
		name := name
		g.Go(func() error {
			r.processFile(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sum, ctx.Err()
}

// Watch processes images as they appear in the input directory until ctx is
// cancelled. Files are handed to workers once they have been quiet for a
// short settle period, so partially written uploads are not read.
func (r *Runner) Watch(ctx context.Context) error {
	if err := os.MkdirAll(r.opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(r.opts.Dir); err != nil {
		return err
	}
	r.log.Infof("watching %s", r.opts.Dir)

	fileCh := make(chan string, 256)
	var g errgroup.Group
	for i := 0; i < r.opts.Workers; i++ {
		g.Go(func() error {
			for name := range fileCh {
				r.processFile(ctx, name)
			}
			return nil
		})
	}
	defer func() {
		close(fileCh)
		_ = g.Wait()
	}()

	pending := map[string]time.Time{}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if isSupportedExt(name) {
				pending[name] = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warnf("watch error: %v", err)
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) >= settle {
					delete(pending, name)
					fileCh <- name
				}
			}
		}
	}
}

func (r *Runner) count(f func(*Summary)) {
	r.mu.Lock()
	f(&r.sum)
	r.mu.Unlock()
}

// processFile runs the pipeline for one file and writes its sidecar.
func (r *Runner) processFile(ctx context.Context, name string) {
	src := filepath.Join(r.opts.Dir, name)
	annotated := filepath.Join(r.opts.OutDir, annotate.OutputName(name))
	sidecar := annotated + ".json"

	if !r.opts.Force {
		if _, err := os.Stat(sidecar); err == nil {
			r.log.Debugf("skip %s: already processed", name)
			r.count(func(s *Summary) { s.Skipped++ })
			return
		}
	}
	res, err := r.svc.Process(ctx, src, annotated)
	if err != nil {
		r.log.Errorf("process %s: %v", name, err)
		r.count(func(s *Summary) { s.Failed++ })
		return
	}
	rec := Record{Source: src, Annotated: annotated, ProcessedAt: time.Now().UTC(), Result: res}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err == nil {
		err = os.WriteFile(sidecar, data, 0o644)
	}
	if err != nil {
		r.log.Errorf("write sidecar %s: %v", sidecar, err)
		r.count(func(s *Summary) { s.Failed++ })
		return
	}
	r.log.Infof("card %s org=%q person=%q phone=%q", name, res.OrganizationName, res.PersonName, res.PhoneString())
	r.count(func(s *Summary) { s.Processed++ })
}

// ListImageFiles returns the supported image names in dir, sorted.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
