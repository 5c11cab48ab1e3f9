package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/llm/llmtest"
	"github.com/dhidargpt/dhidar/internal/media"
	state "github.com/dhidargpt/dhidar/internal/page"
	"github.com/dhidargpt/dhidar/internal/tui/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShell(t *testing.T) *Model {
	t.Helper()
	gw := llm.NewGateway(&llmtest.FakeClient{}, llm.Models{})
	m := New(context.Background(), gw, nil, t.TempDir())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func keyPress(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestStartsOnHome(t *testing.T) {
	m := newShell(t)

	assert.Equal(t, state.Home, m.Current().ID())
	assert.Contains(t, ansi.Strip(m.View()), page.Footer)
}

func TestNavigateAndEscapeHome(t *testing.T) {
	m := newShell(t)

	for _, id := range []state.ID{state.Chat, state.Summarize, state.Image} {
		m.Update(page.NavigateMsg{To: id})
		assert.Equal(t, id, m.Current().ID())

		m.Update(keyPress(tea.KeyEsc))
		assert.Equal(t, state.Home, m.Current().ID(), "esc from %s", id)
	}
}

func TestHomeKeysNavigate(t *testing.T) {
	m := newShell(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, state.Chat, m.Current().ID())
}

func TestEscapeOnHomeStaysHome(t *testing.T) {
	m := newShell(t)
	mount := m.Current().MountID()

	m.Update(keyPress(tea.KeyEsc))

	assert.Equal(t, state.Home, m.Current().ID())
	assert.Equal(t, mount, m.Current().MountID(), "home is not remounted")
}

func TestEscapeClosesPickerFirst(t *testing.T) {
	m := newShell(t)
	m.Update(page.NavigateMsg{To: state.Image})

	m.Update(keyPress(tea.KeyCtrlO))
	img, ok := m.Current().(*page.ImagePage)
	require.True(t, ok)
	require.True(t, img.Modal())

	m.Update(keyPress(tea.KeyEsc))
	assert.Equal(t, state.Image, m.Current().ID())
	assert.False(t, img.Modal())

	m.Update(keyPress(tea.KeyEsc))
	assert.Equal(t, state.Home, m.Current().ID())
}

func TestEachVisitMountsFreshPage(t *testing.T) {
	m := newShell(t)

	m.Update(page.NavigateMsg{To: state.Summarize})
	first := m.Current().MountID()
	m.Update(keyPress(tea.KeyEsc))
	m.Update(page.NavigateMsg{To: state.Summarize})

	assert.Greater(t, m.Current().MountID(), first)
}

func TestStaleResultIsDroppedAndReleased(t *testing.T) {
	before := media.LivePreviews()
	m := newShell(t)

	m.Update(page.NavigateMsg{To: state.Image})
	stale := page.ImageResultMsg{
		Mount:   m.Current().MountID(),
		Result:  llm.Success("data:image/jpeg;base64,AAAA"),
		Preview: media.NewPlaceholderPreview("image"),
	}
	m.Update(keyPress(tea.KeyEsc))
	m.Update(page.NavigateMsg{To: state.Image})

	m.Update(stale)

	img := m.Current().(*page.ImagePage)
	assert.Empty(t, img.State().Output, "result belongs to the previous visit")
	assert.True(t, stale.Preview.Released())
	assert.Equal(t, before, media.LivePreviews())
}

func TestStaleResultAfterLeavingPage(t *testing.T) {
	m := newShell(t)

	m.Update(page.NavigateMsg{To: state.Summarize})
	stale := page.SummaryMsg{Mount: m.Current().MountID(), Result: llm.Success("résumé")}
	m.Update(keyPress(tea.KeyEsc))

	_, cmd := m.Update(stale)

	assert.Nil(t, cmd)
	assert.Equal(t, state.Home, m.Current().ID())
}

func TestLeavingImagePageReleasesPreviews(t *testing.T) {
	before := media.LivePreviews()
	m := newShell(t)
	m.Update(page.NavigateMsg{To: state.Image})

	input := &media.InputImage{Name: "a.png", MIMEType: "image/png", Preview: media.NewPlaceholderPreview("a.png")}
	m.Update(page.ImageLoadedMsg{Mount: m.Current().MountID(), Image: input})
	m.Update(page.ImageResultMsg{
		Mount:   m.Current().MountID(),
		Result:  llm.Success("data:image/jpeg;base64,AAAA"),
		Preview: media.NewPlaceholderPreview("image"),
	})
	require.Equal(t, before+1, media.LivePreviews(), "the output is only kept while loading")

	m.Update(keyPress(tea.KeyEsc))

	assert.True(t, input.Preview.Released())
	assert.Equal(t, before, media.LivePreviews())
}

func TestCtrlCQuits(t *testing.T) {
	m := newShell(t)
	m.Update(page.NavigateMsg{To: state.Image})

	_, cmd := m.Update(keyPress(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
