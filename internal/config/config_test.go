package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_GetDSN(t *testing.T) {
	db := Database{
		Host:       "db",
		Port:       3306,
		UsernameDB: "games",
		Password:   "secret",
		DBName:     "games",
	}

	assert.Equal(t, "games:secret@tcp(db:3306)/games?parseTime=true", db.GetDSN())
}

func TestReadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")

	data := []byte(`
env: local
uploads_path: ./uploads
app_id: 1
database:
  port: 3306
  username-db: root
clients:
  sso:
    address: localhost:44044
    timeout: 5s
    retries_count: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var cfg Config
	require.NoError(t, cleanenv.ReadConfig(path, &cfg))

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "games", cfg.Database.DBName)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
	assert.Equal(t, "/static/play.js", cfg.Play.BundleURL)
	assert.Equal(t, 10, cfg.Importer.Workers)
	assert.Equal(t, uint32(1), cfg.AppID)
}
