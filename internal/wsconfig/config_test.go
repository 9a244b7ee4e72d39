package wsconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{ShowBanner: false, PaneSplitFrac: 0.35}
	assert.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	assert.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFileYieldsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ImportsLegacyPartyFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "show_banner: false\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	assert.NoError(t, err)
	assert.False(t, cfg.ShowBanner)
	assert.Equal(t, Default().PaneSplitFrac, cfg.PaneSplitFrac)
}

func TestWatcher_NotifiesOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, Save(dir, Default()))

	w, err := NewWatcher(dir)
	assert.NoError(t, err)
	defer w.Close()

	events := w.Events(dir)

	updated := Config{ShowBanner: false, PaneSplitFrac: 0.7}
	assert.NoError(t, Save(dir, updated))

	select {
	case cfg := <-events:
		assert.Equal(t, updated, cfg)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not observe external write")
	}
}
