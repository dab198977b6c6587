package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusIdle, StatusLoading, true},
		{StatusSuccess, StatusLoading, true},
		{StatusError, StatusLoading, true},
		{StatusLoading, StatusLoading, false},
		{StatusLoading, StatusSuccess, true},
		{StatusLoading, StatusError, true},
		{StatusIdle, StatusSuccess, false},
		{StatusSuccess, StatusError, false},
		{StatusLoading, StatusIdle, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusBoard(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("starts with every channel idle", func(t *testing.T) {
		b := NewStatusBoard(now)
		for _, cs := range b.Channels() {
			assert.Equal(t, StatusIdle, cs.Status)
			assert.Empty(t, cs.Message)
		}
		require.Len(t, b.Channels(), 2)
		require.Len(t, b.Actions(), len(AllActions()))
	})

	t.Run("begin and complete replace the channel entry", func(t *testing.T) {
		b0 := NewStatusBoard(now)
		b1, loading, err := b0.Begin(ActionSendData, "데이터 전송 중...", now)
		require.NoError(t, err)
		assert.Equal(t, StatusLoading, loading.Status)
		assert.Equal(t, ChannelN8N, loading.Channel)
		assert.Equal(t, StatusLoading, b1.Channel(ChannelN8N).Status)
		assert.True(t, b1.InFlight(ActionSendData))

		// the original board is untouched
		assert.Equal(t, StatusIdle, b0.Channel(ChannelN8N).Status)

		b2, done, err := b1.Complete(ActionSendData, StatusError, "오류: HTTP error! status: 500", now.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, StatusError, done.Status)
		assert.Equal(t, "오류: HTTP error! status: 500", b2.Channel(ChannelN8N).Message)
		assert.False(t, b2.InFlight(ActionSendData))
		assert.Equal(t, StatusIdle, b2.Channel(ChannelNotion).Status)
	})

	t.Run("rejects a second begin of the same action", func(t *testing.T) {
		b, _, err := NewStatusBoard(now).Begin(ActionSetupWorkflow, "", now)
		require.NoError(t, err)
		same, _, err := b.Begin(ActionSetupWorkflow, "", now)
		assert.ErrorIs(t, err, ErrDispatchInProgress)
		assert.Equal(t, b.Action(ActionSetupWorkflow), same.Action(ActionSetupWorkflow))
	})

	t.Run("different actions on a channel run independently", func(t *testing.T) {
		b, _, err := NewStatusBoard(now).Begin(ActionSetupWorkflow, "setup", now)
		require.NoError(t, err)
		b, _, err = b.Begin(ActionSendNotification, "notify", now)
		require.NoError(t, err)
		b, _, err = b.Complete(ActionSetupWorkflow, StatusSuccess, "ok", now)
		require.NoError(t, err)

		assert.Equal(t, StatusSuccess, b.Channel(ChannelN8N).Status)
		assert.True(t, b.InFlight(ActionSendNotification))
	})

	t.Run("complete requires loading", func(t *testing.T) {
		_, _, err := NewStatusBoard(now).Complete(ActionSendData, StatusSuccess, "", now)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("complete requires a terminal status", func(t *testing.T) {
		b, _, err := NewStatusBoard(now).Begin(ActionSendData, "", now)
		require.NoError(t, err)
		_, _, err = b.Complete(ActionSendData, StatusIdle, "", now)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("notion actions report on the notion channel", func(t *testing.T) {
		b, _, err := NewStatusBoard(now).Begin(ActionUploadToNotion, "", now)
		require.NoError(t, err)
		assert.Equal(t, StatusLoading, b.Channel(ChannelNotion).Status)
		assert.Equal(t, StatusIdle, b.Channel(ChannelN8N).Status)
	})
}

func TestDispatchError(t *testing.T) {
	t.Run("http status error", func(t *testing.T) {
		err := NewHTTPStatusError(500)
		assert.True(t, errors.Is(err, ErrIntegration))
		assert.Equal(t, "HTTP error! status: 500", err.Error())
		assert.Equal(t, ErrIntegration, Kind(err))
	})

	t.Run("transport error keeps the cause", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := NewTransportError(cause)
		assert.ErrorIs(t, err, ErrTransport)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("reason falls back when empty", func(t *testing.T) {
		assert.Equal(t, "데이터 전송 실패", Reason(nil, "데이터 전송 실패"))
		assert.Equal(t, "n8n 웹훅 URL이 필요합니다.", Reason(NewValidationError("n8n 웹훅 URL이 필요합니다."), "x"))
	})

	t.Run("kind of an unrelated error is nil", func(t *testing.T) {
		assert.Nil(t, Kind(errors.New("boom")))
	})
}
