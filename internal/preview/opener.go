package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Starter launches a command without waiting for it.
type Starter interface {
	Start(ctx context.Context, name string, args ...string) error
}

// execStarter starts detached viewer processes.
type execStarter struct{}

func (execStarter) Start(_ context.Context, name string, args ...string) error {
	// The viewer outlives skewscan, so it is not bound to ctx.
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// Opener opens files with the platform's default application.
type Opener struct {
	goos    string
	starter Starter
	logger  *slog.Logger
}

// OpenerOption configures an Opener.
type OpenerOption func(*Opener)

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) OpenerOption {
	return func(o *Opener) {
		o.goos = goos
	}
}

// WithStarter replaces the process starter.
func WithStarter(s Starter) OpenerOption {
	return func(o *Opener) {
		o.starter = s
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) OpenerOption {
	return func(o *Opener) {
		o.logger = logger
	}
}

// NewOpener creates an Opener for the running OS.
func NewOpener(opts ...OpenerOption) *Opener {
	o := &Opener{
		goos:    runtime.GOOS,
		starter: execStarter{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Command returns the program and arguments that open path.
func (o *Opener) Command(path string) (string, []string, error) {
	switch o.goos {
	case "darwin":
		return "open", []string{path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, o.goos)
	}
}

// OpenResult lists what Open did.
type OpenResult struct {
	Opened  []string
	Missing []string
}

// Open launches a viewer for every existing path. Missing files are
// reported in the result and logged; launch failures are joined into the
// returned error.
func (o *Opener) Open(ctx context.Context, paths []string) (OpenResult, error) {
	res := OpenResult{Opened: make([]string, 0, len(paths)), Missing: make([]string, 0)}
	var errs []error

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if _, err := os.Stat(abs); err != nil {
			o.logger.Warn("file not found", "path", abs)
			res.Missing = append(res.Missing, abs)
			continue
		}

		name, args, err := o.Command(abs)
		if err != nil {
			return res, err
		}
		if err := o.starter.Start(ctx, name, args...); err != nil {
			errs = append(errs, fmt.Errorf("open %s: %w", abs, err))
			continue
		}
		res.Opened = append(res.Opened, abs)
	}

	return res, errors.Join(errs...)
}
