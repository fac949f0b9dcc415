package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gitupdater/internal/hooks"
	"github.com/rshade/gitupdater/internal/store"
)

func TestLoadScrubsLockedValues(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, OptionKey, []byte(`{"my-plugin":"token","branch_switch":"-1","flag":true,"count":3}`)))

	opts, err := NewLoader().Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, Options{"my-plugin": "token", "flag": "1", "count": "3"}, opts)
}

func TestLoadDisableBackground(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	l := NewLoader()
	l.DisableBackground.Add("env", hooks.DefaultPriority, func(bool, struct{}) bool { return true })

	opts, err := l.Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, Locked, opts[BypassBackgroundProcessing])

	require.NoError(t, s.Set(ctx, OptionKey, []byte(`{"bypass_background_processing":"1"}`)))
	opts, err = l.Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "1", opts[BypassBackgroundProcessing], "saved value wins")

	opts, err = NewLoader().Load(ctx, store.NewMemory())
	require.NoError(t, err)
	assert.NotContains(t, opts, BypassBackgroundProcessing)
}

func TestLoadBadRow(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, OptionKey, []byte(`not json`)))

	opts, err := NewLoader().Load(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	in := Options{
		"my plugin":                "  tok\nen ",
		BypassBackgroundProcessing: Locked,
		"???":                      "dropped",
	}
	require.NoError(t, Save(ctx, s, in))

	data, ok, err := s.Get(ctx, OptionKey)
	require.NoError(t, err)
	require.True(t, ok)

	var saved map[string]string
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, map[string]string{"my-plugin": "tok en"}, saved)
}

func TestSanitize(t *testing.T) {
	got := Sanitize(Options{"Café Token": "<b>abc</b>", "ok_key": "v"})
	assert.Equal(t, Options{"Cafe-Token": "abc", "ok_key": "v"}, got)
}
