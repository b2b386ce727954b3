package controller

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestFriendRequestBodyAcceptsFreeText(t *testing.T) {
	// 乱填的邮箱也要放进目录查询，由查询结果决定走哪个 toast
	assert.NoError(t, binding.Validator.ValidateStruct(FriendRequestBody{Email: "definitely not an email"}))
	assert.NoError(t, binding.Validator.ValidateStruct(FriendRequestBody{Email: "bob@bu.edu"}))

	// 空邮箱仍然拦在入参层
	assert.Error(t, binding.Validator.ValidateStruct(FriendRequestBody{}))
}
