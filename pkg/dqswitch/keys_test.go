package dqswitch

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestTrackedKeys(t *testing.T) {
	for _, code := range []KeyCode{KeyLeftCtrl, KeyRightCtrl, KeyLeftAlt, KeyRightAlt, KeyLeftMeta, KeyRightMeta} {
		assert.True(t, IsTracked(code), code.String())
	}
	assert.False(t, IsTracked(KeyF2))
	assert.False(t, IsTracked(KeyCode(42)))

	assert.True(t, IsMeta(KeyLeftMeta))
	assert.True(t, IsMeta(KeyRightMeta))
	assert.False(t, IsMeta(KeyLeftCtrl))
}

func TestKeyCodeValues(t *testing.T) {
	assert.Equal(t, KeyCode(29), KeyLeftCtrl)
	assert.Equal(t, KeyCode(97), KeyRightCtrl)
	assert.Equal(t, KeyCode(56), KeyLeftAlt)
	assert.Equal(t, KeyCode(100), KeyRightAlt)
	assert.Equal(t, KeyCode(125), KeyLeftMeta)
	assert.Equal(t, KeyCode(126), KeyRightMeta)
	assert.Equal(t, KeyCode(60), KeyF2)
	assert.Equal(t, KeyCode(62), KeyF4)
	assert.Equal(t, "KEY_LEFTCTRL", KeyLeftCtrl.String())
}

func TestExitComboPredicate(t *testing.T) {
	var c exitCombo

	assert.False(t, c.update(KeyF2, true))
	assert.False(t, c.update(KeyF2, false))
	assert.False(t, c.update(KeyF4, true))
	assert.False(t, c.update(KeyLeftCtrl, true))
	assert.True(t, c.update(KeyF2, true))
}
