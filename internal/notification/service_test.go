package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nhc/internal/notification"
	"nhc/internal/storage/memory"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/requestcontext"
)

func TestInboxIsNewestFirst(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := notification.NewService(memory.New())

	for i, msg := range []string{"first", "second", "third"} {
		ctx := requestcontext.WithTime(context.Background(), start.Add(time.Duration(i)*time.Minute))
		svc.Notify(ctx, "P-1", msg)
	}
	svc.Notify(context.Background(), "P-2", "someone else")

	inbox, err := svc.List(context.Background(), " P-1 ")
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, "third", inbox[0].Message)
	assert.Equal(t, "first", inbox[2].Message)
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	svc := notification.NewService(memory.New())

	_, err := svc.Send(ctx, notification.SendRequest{RecipientPersonalID: "P-1", Message: "  "})
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	_, err = svc.List(ctx, "")
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))

	// Notify swallows the same failure.
	svc.Notify(ctx, "", "dropped")
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "You have been elected Treasurer of Ward 1", notification.Elected("Treasurer", "Ward 1"))
	assert.Contains(t, notification.CandidacyReceived("President", "2025-06-10"), "2025-06-10")
}
