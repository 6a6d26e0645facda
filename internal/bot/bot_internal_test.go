package bot

import (
	"testing"

	"github.com/UnknownOlympus/janus/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManager(t *testing.T) {
	sm := NewStateManager()

	_, ok := sm.Get(1)
	assert.False(t, ok)

	sm.Set(1, UserState{WaitingFor: stateAwaitingName, Token: "abc"})
	state, ok := sm.Get(1)
	require.True(t, ok)
	assert.Equal(t, stateAwaitingName, state.WaitingFor)
	assert.Equal(t, "abc", state.Token)

	// state is consumed on read
	_, ok = sm.Get(1)
	assert.False(t, ok)
}

func TestResolveMenuKey(t *testing.T) {
	localizer, err := i18n.NewLocalizer()
	require.NoError(t, err)
	b := &Bot{localizer: localizer}

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "english label", text: localizer.Get("en", "menu.today"), want: "menu.today"},
		{name: "russian label", text: localizer.Get("ru", "menu.report"), want: "menu.report"},
		{name: "admin label", text: localizer.Get("en", "menu.sweep"), want: "menu.sweep"},
		{name: "free text", text: "hello there", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.resolveMenuKey(tt.text))
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0h 00m", formatMinutes(0))
	assert.Equal(t, "9h 30m", formatMinutes(570))
	assert.Equal(t, "17h 15m", formatMinutes(1035))
}
