package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme(t *testing.T) {
	assert.IsType(t, &DefaultTheme{}, GetTheme(""))
	assert.IsType(t, &DefaultTheme{}, GetTheme("dhidar"))
	assert.IsType(t, &DefaultTheme{}, GetTheme("unknown"))
	assert.IsType(t, &SimpleTheme{}, GetTheme("Simple"))
	assert.IsType(t, &ASCIITheme{}, GetTheme(" ascii "))
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("dhidar"))
	assert.True(t, Known(" ASCII "))
	assert.False(t, Known("dark"))
	assert.False(t, Known(""))
}

func TestThemesRenderText(t *testing.T) {
	for _, name := range Names {
		th := GetTheme(name)
		assert.Contains(t, th.Button().Render("Envoyer"), "Envoyer", name)
		assert.NotEmpty(t, th.GlamourStyle(), name)
	}
	assert.Equal(t, "ascii", GetTheme("ascii").GlamourStyle())
}
