package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyCanonical(t *testing.T) {
	assert.Equal(t, "3:17", PairKey(3, 17))
	assert.Equal(t, "3:17", PairKey(17, 3))
	assert.Equal(t, "5:5", PairKey(5, 5))
}

func TestCounterpart(t *testing.T) {
	reg := &FriendRegister{
		RequesterID:    1,
		RequesterEmail: "alice@bu.edu",
		AcceptorID:     2,
		AcceptorEmail:  "bob@bu.edu",
	}

	id, email := reg.Counterpart(1)
	assert.Equal(t, uint(2), id)
	assert.Equal(t, "bob@bu.edu", email)

	id, email = reg.Counterpart(2)
	assert.Equal(t, uint(1), id)
	assert.Equal(t, "alice@bu.edu", email)
}
