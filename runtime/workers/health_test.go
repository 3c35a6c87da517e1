package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"presence-lab/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHealthWorker_ReportsAndStopsOnCancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().Len().Return(3).MinTimes(1)

	worker := NewHealthWorker(slog.Default(), registry, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Let at least one tick fire before shutting down.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("Health worker should have stopped on cancellation")
	}
}
