package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigningSession_CompletionHeight_GivenCompleted_ThenCompletedAt(t *testing.T) {
	session := &SigningSession{SessionID: 5, CompletedAt: 100, ExpiresAt: 150, Completed: true}
	assert.Equal(t, uint64(100), session.CompletionHeight())
}

func TestSigningSession_CompletionHeight_GivenNotCompleted_ThenExpiresAt(t *testing.T) {
	session := &SigningSession{SessionID: 5, ExpiresAt: 150}
	assert.Equal(t, uint64(150), session.CompletionHeight())
}

func TestSigningSession_Participated(t *testing.T) {
	session := &SigningSession{Signers: []string{"axelar1aaa", "axelar1bbb"}}
	assert.True(t, session.Participated("axelar1aaa"))
	assert.False(t, session.Participated("axelar1ccc"))
}

func TestPoll_Record(t *testing.T) {
	poll := &Poll{PollID: 7, ExpiresAt: 910, Finished: true, Voters: []string{"axelar1aaa"}}
	assert.Equal(t, uint64(7), poll.ID())
	assert.Equal(t, uint64(910), poll.CompletionHeight())
	assert.True(t, poll.Participated("axelar1aaa"))
	assert.False(t, poll.Participated("axelar1bbb"))
}

func TestWindow_Contains(t *testing.T) {
	window := Window{Start: 700, End: 799}
	assert.False(t, window.Contains(699))
	assert.True(t, window.Contains(700))
	assert.True(t, window.Contains(799))
	assert.False(t, window.Contains(800))
}
