package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "i9score/pkg/platform/audit"
	"i9score/pkg/platform/audit/store/memory"
)

type failingSink struct{ calls int }

func (f *failingSink) Append(context.Context, audit.Event) error {
	f.calls++
	return errors.New("down")
}

func TestWorkerDrainsUntilInboxClosed(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{DocumentID: "a"}
	inbox <- audit.Event{DocumentID: "a"}
	close(inbox)

	err := NewWorker(store, inbox, nil).Run(context.Background())
	require.NoError(t, err)

	events, err := store.ListByDocument(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorkerKeepsGoingAfterSinkError(t *testing.T) {
	sink := &failingSink{}
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{DocumentID: "a"}
	inbox <- audit.Event{DocumentID: "b"}
	close(inbox)

	require.NoError(t, NewWorker(sink, inbox, nil).Run(context.Background()))
	assert.Equal(t, 2, sink.calls)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWorker(memory.NewInMemoryStore(), make(chan audit.Event), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
