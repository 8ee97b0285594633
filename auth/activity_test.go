package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivitySinkFuncRecords(t *testing.T) {
	var got auth.ActivityEvent
	sink := auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		got = event
		return nil
	})

	event := auth.ActivityEvent{
		EventType:  auth.ActivityEventLoginSuccess,
		UserID:     "user-42",
		Actor:      auth.ActorRef{ID: "user-42", Type: "user"},
		OccurredAt: time.Now(),
	}

	require.NoError(t, sink.Record(context.Background(), event))
	assert.Equal(t, auth.ActivityEventLoginSuccess, got.EventType)
	assert.Equal(t, "user-42", got.UserID)
}

func TestActivitySinkFuncNilIsNoop(t *testing.T) {
	var sink auth.ActivitySinkFunc

	err := sink.Record(context.Background(), auth.ActivityEvent{
		EventType: auth.ActivityEventSignupSuccess,
	})
	assert.NoError(t, err)
}
