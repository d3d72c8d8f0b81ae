package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/rodroute/pkg/engine/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, rod.DefaultHyperparameters(), cfg.Routing.Hyperparameters())
	assert.Equal(t, 0.1, cfg.Routing.LimitFactor)
	assert.Equal(t, 0.5, cfg.Rating.Influence)
}

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "rodroute.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rodroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":8080"
  request_timeout: 5s
data:
  snapper: h3
routing:
  max_tries: 3
  random:
    min: 0.6
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "h3", cfg.Data.Snapper)
	assert.Equal(t, 3, cfg.Routing.MaxTries)
	assert.Equal(t, 0.6, cfg.Routing.Random.Min)
	assert.Equal(t, 0.8, cfg.Routing.Random.Max)
	assert.Equal(t, Default().Data.GraphFile, cfg.Data.GraphFile)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad snapper":      "data:\n  snapper: kdtree\n",
		"zero tries":       "routing:\n  max_tries: 0\n",
		"min above max":    "routing:\n  random:\n    min: 0.9\n    max: 0.8\n",
		"unknown loglevel": "log:\n  level: loud\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}

	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
