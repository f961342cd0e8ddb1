package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSettableStatus(t *testing.T) {
	assert.True(t, IsSettableStatus(UserStatusPending))
	assert.True(t, IsSettableStatus(UserStatusCompleted))
	assert.True(t, IsSettableStatus(UserStatusVerified))
	assert.True(t, IsSettableStatus(UserStatusRejected))

	assert.False(t, IsSettableStatus(UserStatusInvited))
	assert.False(t, IsSettableStatus(UserStatus("bogus")))
	assert.False(t, IsSettableStatus(UserStatus("")))
}
