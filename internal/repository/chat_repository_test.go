package repository

import (
	"testing"

	"studybuddy_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestNewestFirstToAscending(t *testing.T) {
	page := []model.ChatMessage{
		{UUIDBase: model.UUIDBase{ID: "m3"}, Date: 300},
		{UUIDBase: model.UUIDBase{ID: "m2"}, Date: 200},
		{UUIDBase: model.UUIDBase{ID: "m1"}, Date: 100},
	}

	// 缓存和回源取到的都是最新在前的一页，出口统一反转成时间正序
	got := newestFirstToAscending(page)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, "m3", got[2].ID)

	assert.Empty(t, newestFirstToAscending(nil))
	single := newestFirstToAscending([]model.ChatMessage{{UUIDBase: model.UUIDBase{ID: "only"}}})
	assert.Equal(t, "only", single[0].ID)
}
