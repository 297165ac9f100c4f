package textgen

import (
	"context"
	"errors"
	"sync"

	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
)

// ErrNotReady is returned by Generate while the handle is not in the
// ready state
var ErrNotReady = errors.New("text generation handle is not ready")

// LoaderFunc constructs and verifies a text generator. It is called once
// per load attempt.
type LoaderFunc func(ctx context.Context) (core.TextGenerator, error)

// Handle is the shared text generation handle. It starts uninitialized,
// moves through loading on Load or Reload, and lands on ready or failed.
// Failed is terminal: classification falls back until an explicit reload
// succeeds. The generator is read-only between loads, so concurrent
// Generate calls share it without coordination beyond the state lock.
type Handle struct {
	mu     sync.RWMutex
	state  core.ModelState
	gen    core.TextGenerator
	loader LoaderFunc
	logger *zap.Logger
}

// NewHandle creates an uninitialized handle around the loader
func NewHandle(loader LoaderFunc, logger *zap.Logger) *Handle {
	return &Handle{
		state:  core.ModelUninitialized,
		loader: loader,
		logger: logger,
	}
}

// Load attempts the transition to ready. A failure leaves the handle in
// the failed state and returns the cause; the process keeps running and
// serves fallback classifications.
func (h *Handle) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.setState(core.ModelLoading)

	gen, err := h.loader(ctx)
	if err != nil {
		h.gen = nil
		h.setState(core.ModelFailed)
		h.logger.Error("Text generator failed to load", zap.Error(err))
		return err
	}

	h.closeCurrent()
	h.gen = gen
	h.setState(core.ModelReady)
	return nil
}

// Reload re-attempts loading from any state. This is the only transition
// out of failed.
func (h *Handle) Reload(ctx context.Context) error {
	return h.Load(ctx)
}

// Loaded reports whether the handle is ready for generation
func (h *Handle) Loaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state == core.ModelReady
}

// State returns the current lifecycle state
func (h *Handle) State() core.ModelState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Generate forwards to the loaded generator. Any state other than ready
// reports ErrNotReady, which callers treat as the fallback trigger.
func (h *Handle) Generate(ctx context.Context, req *core.GenerateRequest) ([]core.GeneratedText, error) {
	h.mu.RLock()
	gen := h.gen
	ready := h.state == core.ModelReady
	h.mu.RUnlock()

	if !ready || gen == nil {
		return nil, ErrNotReady
	}
	return gen.Generate(ctx, req)
}

// Close releases the current generator if it holds resources
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeCurrent()
	h.gen = nil
	h.setState(core.ModelUninitialized)
	return nil
}

// setState must be called with the write lock held
func (h *Handle) setState(next core.ModelState) {
	if h.state == next {
		return
	}
	h.logger.Info("Text generation handle state changed",
		zap.String("from", string(h.state)),
		zap.String("to", string(next)))
	h.state = next
}

// closeCurrent must be called with the write lock held
func (h *Handle) closeCurrent() {
	if closer, ok := h.gen.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			h.logger.Warn("Failed to close text generator", zap.Error(err))
		}
	}
}
