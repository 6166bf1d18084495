package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/draft-guard/internal/pkg/logger"
)

// DualStore composes a volatile fast store and a durable store.
//
// Writes go to both tiers best-effort: a single tier failing is logged and
// tolerated, only both tiers failing surfaces an error. Reads prefer the
// fast tier and fall back to the durable tier; a durable hit is backfilled
// into the fast tier so the next read is cheap. Either tier may be nil.
type DualStore struct {
	fast    Store
	durable Store
	timeout time.Duration
}

// NewDualStore composes the two tiers. timeout bounds each backend call;
// zero means a conservative default.
func NewDualStore(fast, durable Store, timeout time.Duration) *DualStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DualStore{fast: fast, durable: durable, timeout: timeout}
}

func (d *DualStore) Get(ctx context.Context, key string) ([]byte, error) {
	if d.fast != nil {
		data, err := d.call(ctx, key, d.fast.Get)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("fast store read failed, falling back", "store", d.fast.Name(), "error", err.Error())
		}
	}

	if d.durable == nil {
		return nil, ErrNotFound
	}

	data, err := d.call(ctx, key, d.durable.Get)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		// Total storage failure degrades to "no history" rather than blocking
		logger.Error("durable store read failed", "store", d.durable.Name(), "error", err.Error())
		return nil, ErrNotFound
	}

	if d.fast != nil {
		cctx, cancel := context.WithTimeout(ctx, d.timeout)
		if err := d.fast.Put(cctx, key, data); err != nil {
			logger.Debug("fast store backfill failed", "store", d.fast.Name(), "error", err.Error())
		}
		cancel()
	}
	return data, nil
}

// Put writes to both tiers. Partial failure is logged and absorbed; the
// operation only errors when no tier accepted the write.
func (d *DualStore) Put(ctx context.Context, key string, data []byte) error {
	var wrote bool
	var lastErr error

	for _, s := range []Store{d.fast, d.durable} {
		if s == nil {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, d.timeout)
		err := s.Put(cctx, key, data)
		cancel()
		if err != nil {
			lastErr = err
			logger.Warn("store write failed", "store", s.Name(), "error", err.Error())
			continue
		}
		wrote = true
	}

	if !wrote && lastErr != nil {
		return lastErr
	}
	return nil
}

func (d *DualStore) Name() string { return "dual" }

func (d *DualStore) call(ctx context.Context, key string, fn func(context.Context, string) ([]byte, error)) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return fn(cctx, key)
}
