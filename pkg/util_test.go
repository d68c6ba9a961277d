package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToString(t *testing.T) {
	assert.Equal(t, "", BytesToString(nil))
	assert.Equal(t, "yolo", BytesToString([]byte("yolo")))
}

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(35)
	require.NoError(t, err)
	require.NotEmpty(t, s1)

	s2, err := GenerateRandomString(35)
	require.NoError(t, err)
	require.NotEmpty(t, s2)

	assert.NotEqual(t, s1, s2)
}

func TestPathExists(t *testing.T) {
	exists, err := PathExists(t.TempDir(), true)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists("/definitely/not/here/hopefully", true)
	require.NoError(t, err)
	assert.False(t, exists)
}
