package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
)

type stubPruner struct {
	maxAge    time.Duration
	batchSize int
	deleted   int64
	err       error
}

func (s *stubPruner) DeleteOlderThan(_ context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	s.maxAge = maxAge
	s.batchSize = batchSize
	return s.deleted, s.err
}

func TestRunOncePassesRetentionWindow(t *testing.T) {
	cfg := &config.Retention{MaxAge: 720 * time.Hour, BatchSize: 500}
	es := &stubPruner{deleted: 12}

	require.Equal(t, int64(12), runOnce(context.Background(), logger.Discard(), es, cfg))
	require.Equal(t, 720*time.Hour, es.maxAge)
	require.Equal(t, 500, es.batchSize)
}

func TestRunOnceSwallowsErrors(t *testing.T) {
	cfg := &config.Retention{MaxAge: time.Hour, BatchSize: 10}
	es := &stubPruner{err: errors.New("cluster red")}

	require.Zero(t, runOnce(context.Background(), logger.Discard(), es, cfg))
}
