package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mockchat/internal/mocks"
)

func TestAuditEmitterPublishesEnvelope(t *testing.T) {
	pub := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(pub, "audit.mockchat", "mockchat", "test", nil)
	emitter.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	var got AuditEnvelope
	pub.On("Publish", mock.Anything, "audit.mockchat", mock.AnythingOfType("telemetry.AuditEnvelope"), map[string]string{"x-request-id": "req-1"}).
		Run(func(args mock.Arguments) { got = args.Get(2).(AuditEnvelope) }).
		Return(nil).Once()

	emitter.Emit(context.Background(), "WARN", "user-2 is not an admin of chat-2", "req-1", "user-2")

	pub.AssertExpectations(t)
	require.Equal(t, "audit_log", got.EventType)
	assert.Equal(t, "user-2", got.UserID)
	assert.Equal(t, "2024-05-01T12:00:00Z", got.OccurredAt)
	assert.Equal(t, AuditPayload{Level: "WARN", Text: "user-2 is not an admin of chat-2"}, got.Payload)
}

func TestAuditEmitterNilIsNoop(t *testing.T) {
	var emitter *AuditEmitter
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "x", "req", "user-1")
	})
}
