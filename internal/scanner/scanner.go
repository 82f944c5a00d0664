// Package scanner discovers candidate files for the upload picker.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// ResultItem is a regular file found under the scan root.
type ResultItem struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Err  error  `json:"-"`
}

// Options defines scanning behavior.
type Options struct {
	Concurrency   int      // workers stat'ing files
	MaxDepth      int      // -1 unlimited; 0 means only files directly in root
	FollowSymlink bool     // descend into symlinked directories
	ShowHidden    bool     // include dot files and dot directories
	Excludes      []string // glob patterns matched against full path and base name
	Extensions    []string // keep only these extensions (".pdf"); empty keeps all
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
		if o.Concurrency < 1 {
			o.Concurrency = 1
		}
	}
}

// ScanFiles walks root and returns every matching file sorted by path, plus a
// merged walk error (if any).
func ScanFiles(ctx context.Context, root string, opts Options) ([]ResultItem, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out, errCh := ScanFilesStream(ctx, root, opts)
	var results []ResultItem
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, <-errCh
}

// ScanFilesStream streams each ResultItem as soon as its size is known. When
// done, the results channel is closed and a single error (if any) is sent on
// errCh, then errCh is closed.
func ScanFilesStream(ctx context.Context, root string, opts Options) (<-chan ResultItem, <-chan error) {
	out := make(chan ResultItem)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		opts.normalize()

		var walkErrs []error
		rootDepth := depthOf(root)
		type job struct{ path string }
		jobs := make(chan job)
		var wg sync.WaitGroup

		worker := func() {
			defer wg.Done()
			for j := range jobs {
				sz, err := fileSize(j.path)
				select {
				case <-ctx.Done():
					return
				case out <- ResultItem{Path: j.path, Size: sz, Err: err}:
				}
			}
		}
		wg.Add(opts.Concurrency)
		for i := 0; i < opts.Concurrency; i++ {
			go worker()
		}

		visited := make(map[string]struct{})
		var walk func(dir string) error
		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				walkErrs = append(walkErrs, fmt.Errorf("walk error at %s: %w", path, err))
				return nil
			}
			if path != root && !opts.ShowHidden && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if excluded(path, opts.Excludes) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			depth := depthOf(path) - rootDepth
			if d.IsDir() {
				if opts.MaxDepth >= 0 && depth > opts.MaxDepth {
					return filepath.SkipDir
				}
				return nil
			}
			if opts.MaxDepth >= 0 && depth-1 > opts.MaxDepth {
				return nil
			}
			if d.Type()&os.ModeSymlink != 0 {
				info, serr := os.Stat(path)
				if serr != nil {
					return nil
				}
				if info.IsDir() {
					if opts.FollowSymlink {
						if real, e := filepath.EvalSymlinks(path); e == nil {
							if _, ok := visited[real]; !ok {
								visited[real] = struct{}{}
								if werr := walk(real); werr != nil {
									return werr
								}
							}
						}
					}
					return nil
				}
			}
			if !d.Type().IsRegular() && d.Type()&os.ModeSymlink == 0 {
				return nil
			}
			if !allowed(path, opts.Extensions) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- job{path: path}:
			}
			return nil
		}
		walk = func(dir string) error { return filepath.WalkDir(dir, walkFn) }

		walkDone := make(chan struct{})
		go func() {
			defer close(walkDone)
			defer close(jobs)
			if err := walk(root); err != nil && !errors.Is(err, context.Canceled) {
				walkErrs = append(walkErrs, err)
			}
		}()
		wg.Wait()
		// walkErrs belongs to the walker until it returns.
		<-walkDone
		errCh <- combineErrors(walkErrs)
	}()
	return out, errCh
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func depthOf(p string) int {
	clean := filepath.Clean(p)
	if clean == string(os.PathSeparator) {
		return 0
	}
	depth := 0
	for {
		parent := filepath.Dir(clean)
		if parent == clean {
			break
		}
		depth++
		clean = parent
	}
	return depth
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("multiple errors:")
	for _, e := range errs {
		if e == nil {
			continue
		}
		b.WriteString("\n - ")
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}

func excluded(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	base := filepath.Base(p)
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if ok, _ := filepath.Match(pat, p); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}

func allowed(p string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e == ext {
			return true
		}
	}
	return false
}
