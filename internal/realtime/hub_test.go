package realtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	frames []envelope
	err    error
}

func (f *fakeSession) WriteJSON(v interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, v.(envelope))
	return nil
}

func TestHubRoomMembership(t *testing.T) {
	hub := NewHub()
	a, b := &fakeSession{}, &fakeSession{}

	hub.Join(CustomerRoom("c1"), a)
	hub.Join(CustomerRoom("c1"), b)
	hub.Join(AdminRoom, b)
	assert.Equal(t, 2, hub.RoomSize(CustomerRoom("c1")))
	assert.Equal(t, 1, hub.RoomSize(AdminRoom))

	hub.Leave(CustomerRoom("c1"), a)
	assert.Equal(t, 1, hub.RoomSize(CustomerRoom("c1")))

	hub.LeaveAll(b)
	assert.Equal(t, 0, hub.RoomSize(CustomerRoom("c1")))
	assert.Equal(t, 0, hub.RoomSize(AdminRoom))
}

func TestHubEmit(t *testing.T) {
	hub := NewHub()
	member := &fakeSession{}
	outsider := &fakeSession{}

	hub.Join(MerchantRoom("m1"), member)
	hub.Join(MerchantRoom("m2"), outsider)

	hub.Emit(MerchantRoom("m1"), EventTransactionConfirmed, map[string]string{"transaction_id": "t1"})

	assert.Len(t, member.frames, 1)
	assert.Equal(t, EventTransactionConfirmed, member.frames[0].Event)
	assert.Empty(t, outsider.frames)
}

func TestHubEmitSurvivesWriteFailure(t *testing.T) {
	hub := NewHub()
	broken := &fakeSession{err: errors.New("connection reset")}
	healthy := &fakeSession{}

	hub.Join(AdminRoom, broken)
	hub.Join(AdminRoom, healthy)

	// must not panic or drop the healthy member's frame
	hub.Emit(AdminRoom, EventCreditRequestNew, nil)
	assert.Len(t, healthy.frames, 1)
}

func TestNoopBroadcaster(t *testing.T) {
	var b Broadcaster = NoopBroadcaster{}
	b.Emit(AdminRoom, EventCreditUpdated, nil)
}
