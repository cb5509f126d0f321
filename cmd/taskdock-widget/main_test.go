package main

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelayRefreshStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	var triggered atomic.Int32

	done := make(chan struct{})
	go func() {
		relayRefresh(ctx, sig, func() { triggered.Add(1) })
		close(done)
	}()

	sig <- syscall.SIGHUP
	assert.Eventually(t, func() bool { return triggered.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay kept running after cancel")
	}
}
