package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldMigrate(t *testing.T) {
	// debug 模式总是自动建表
	assert.True(t, ShouldMigrate("debug", false))
	assert.True(t, ShouldMigrate("", false))

	// release 模式要 -migrate 显式开启
	assert.False(t, ShouldMigrate("release", false))
	assert.True(t, ShouldMigrate("release", true))
}
