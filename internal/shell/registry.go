package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/session"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/id"
)

// ErrNotFound is returned for unknown shell ids.
var ErrNotFound = errors.New("shell not found")

// Registry tracks the shells of every connected engine.
type Registry struct {
	shells sync.Map // map[id.ShellID]*Shell
	count  atomic.Int64
	opts   Options
	logger *zap.Logger
}

// NewRegistry creates a registry that opens shells with opts.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{opts: opts, logger: logger}
}

// Open creates a shell around engine, starts its loop and routes the start
// location. The shell stops when ctx ends or Close is called.
func (r *Registry) Open(ctx context.Context, engine session.Engine) (*Shell, error) {
	s, err := New(id.NewShellID(), engine, r.opts)
	if err != nil {
		return nil, err
	}

	go s.Run(ctx)
	if err := s.Start(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	r.shells.Store(s.ID(), s)
	r.opts.Metrics.SetSessionsActive(int(r.count.Add(1)))
	r.logger.Info("Shell opened", zap.String("shell", s.ID().String()), zap.String("start", s.start))
	return s, nil
}

// Get returns the shell with the given id.
func (r *Registry) Get(shellID id.ShellID) (*Shell, error) {
	v, ok := r.shells.Load(shellID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, shellID)
	}
	return v.(*Shell), nil
}

// List returns every open shell, oldest first.
func (r *Registry) List() []*Shell {
	var shells []*Shell
	r.shells.Range(func(_, v any) bool {
		shells = append(shells, v.(*Shell))
		return true
	})
	sort.Slice(shells, func(i, j int) bool { return shells[i].ID() < shells[j].ID() })
	return shells
}

// Close stops and forgets a shell. Closing an unknown id is a no-op.
func (r *Registry) Close(shellID id.ShellID) bool {
	v, ok := r.shells.LoadAndDelete(shellID)
	if !ok {
		return false
	}
	v.(*Shell).Close()
	r.opts.Metrics.SetSessionsActive(int(r.count.Add(-1)))
	r.logger.Info("Shell closed", zap.String("shell", shellID.String()))
	return true
}

// CloseAll stops every shell.
func (r *Registry) CloseAll() {
	for _, s := range r.List() {
		r.Close(s.ID())
	}
}

// Count returns the number of open shells.
func (r *Registry) Count() int {
	return int(r.count.Load())
}
