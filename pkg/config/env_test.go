// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"flvkit/pkg/log"

	"github.com/stretchr/testify/require"
)

func TestNewEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		env, err := NewEnv("/a/env.yaml", nil)
		require.NoError(t, err)

		want := &Env{
			LogLevel:  "info",
			ConfigDir: "/a",
		}
		require.Equal(t, want, env)
		require.Equal(t, log.LevelInfo, env.Level())
	})
	t.Run("full", func(t *testing.T) {
		envYAML := []byte("logLevel: debug\nlogDB: logs.db\noverwrite: true\n")
		env, err := NewEnv("/a/env.yaml", envYAML)
		require.NoError(t, err)

		want := &Env{
			LogLevel:  "debug",
			LogDB:     "/a/logs.db",
			Overwrite: true,
			ConfigDir: "/a",
		}
		require.Equal(t, want, env)
		require.Equal(t, log.LevelDebug, env.Level())
	})
	t.Run("absLogDB", func(t *testing.T) {
		env, err := NewEnv("/a/env.yaml", []byte("logDB: /b/logs.db"))
		require.NoError(t, err)
		require.Equal(t, "/b/logs.db", env.LogDB)
	})
	t.Run("invalidLevel", func(t *testing.T) {
		_, err := NewEnv("/a/env.yaml", []byte("logLevel: verbose"))
		require.ErrorIs(t, err, log.ErrInvalidLevel)
	})
	t.Run("unknownField", func(t *testing.T) {
		_, err := NewEnv("/a/env.yaml", []byte("port: 2020"))
		require.Error(t, err)
	})
	t.Run("unmarshalErr", func(t *testing.T) {
		_, err := NewEnv("/a/env.yaml", []byte("logLevel: ["))
		require.Error(t, err)
	})
}

func TestReadEnv(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		env, err := ReadEnv("")
		require.NoError(t, err)
		require.Equal(t, DefaultLogLevel, env.LogLevel)
	})
	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, "env.yaml")
		require.NoError(t, os.WriteFile(envPath, []byte("logLevel: error\n"), 0o600))

		env, err := ReadEnv(envPath)
		require.NoError(t, err)
		require.Equal(t, log.LevelError, env.Level())
		require.Equal(t, dir, env.ConfigDir)
	})
	t.Run("missing", func(t *testing.T) {
		_, err := ReadEnv(filepath.Join(t.TempDir(), "env.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestCheckOutput(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "a.flv")
	require.NoError(t, os.WriteFile(existing, nil, 0o600))
	missing := filepath.Join(dir, "b.flv")

	env := Env{}
	require.ErrorIs(t, env.CheckOutput(existing), ErrOutputExists)
	require.NoError(t, env.CheckOutput(missing))

	env.Overwrite = true
	require.NoError(t, env.CheckOutput(existing))
}
