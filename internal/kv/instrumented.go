package kv

import (
	"context"
	"errors"
	"time"

	"todolist-kv/internal/logging"
	"todolist-kv/internal/metrics"

	"github.com/sirupsen/logrus"
)

// InstrumentedStore records metrics and debug logs around another Store
type InstrumentedStore struct {
	next    Store
	backend string
}

// Instrumented wraps next, labelling its metrics with backend
func Instrumented(next Store, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend}
}

// Get delegates and records the outcome. A missing key counts as "miss", not as an error.
func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	result := metrics.Result(err)
	if errors.Is(err, ErrNotFound) {
		result = "miss"
	}
	s.observe("get", key, result, start, err)
	return value, err
}

// Put delegates and records the outcome
func (s *InstrumentedStore) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Put(ctx, key, value)
	s.observe("put", key, metrics.Result(err), start, err)
	return err
}

// Ping delegates when the wrapped engine supports it
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Unwrap returns the wrapped engine
func (s *InstrumentedStore) Unwrap() Store {
	return s.next
}

func (s *InstrumentedStore) observe(op, key, result string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.KVOperations.WithLabelValues(s.backend, op, result).Inc()
	metrics.KVDuration.WithLabelValues(s.backend, op).Observe(elapsed.Seconds())

	entry := logging.Logger.WithFields(logrus.Fields{
		"backend":    s.backend,
		"op":         op,
		"key":        key,
		"result":     result,
		"latency_ms": elapsed.Milliseconds(),
	})
	if result == "error" {
		entry.WithError(err).Warn("KV operation failed")
		return
	}
	entry.Debug("KV operation")
}
