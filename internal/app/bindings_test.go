package app

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gestify/internal/action"
	"github.com/ayusman/gestify/internal/store"
)

func TestReloadBindings(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "gestify.db"))
	require.NoError(t, err)
	defer s.Close()

	repo := s.Bindings()
	require.NoError(t, repo.Create(&store.Binding{Label: "like", Action: "volume-up", PluginName: "speaker", Config: []byte(`{"device":"kitchen"}`), Enabled: true}))
	require.NoError(t, repo.Create(&store.Binding{Label: "four", Action: "skip", Enabled: true}))
	require.NoError(t, repo.Create(&store.Binding{Label: "fist", Action: "mute", PluginName: "media-control", Enabled: false}))

	d := action.NewDispatcher(action.NewMockSink(), nil)
	n, err := ReloadBindings(repo, d)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, map[string]action.Action{"like": action.VolumeUp, "four": action.Skip}, d.Bindings())

	r, ok := d.RouteFor("like")
	require.True(t, ok)
	assert.Equal(t, "speaker", r.Plugin)
	assert.JSONEq(t, `{"device":"kitchen"}`, string(r.Config))

	_, ok = d.RouteFor("four")
	assert.False(t, ok, "binding without plugin or config has no route")
}

type staticBindings struct {
	bindings []*store.Binding
	err      error
}

func (s staticBindings) Enabled() ([]*store.Binding, error) { return s.bindings, s.err }

func TestReloadBindings_ErrorsKeepTable(t *testing.T) {
	d := action.NewDispatcher(action.NewMockSink(), map[string]action.Action{"one": action.Play})

	_, err := ReloadBindings(staticBindings{err: errors.New("disk I/O error")}, d)
	assert.Error(t, err)

	_, err = ReloadBindings(staticBindings{bindings: []*store.Binding{{Label: "one", Action: "explode"}}}, d)
	assert.ErrorIs(t, err, action.ErrUnknownAction)

	a, ok := d.ActionFor("one")
	assert.True(t, ok)
	assert.Equal(t, action.Play, a)
}
