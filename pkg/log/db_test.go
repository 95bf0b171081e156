// SPDX-License-Identifier: GPL-2.0-or-later

package log

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var testEntries = []Entry{
	{Level: LevelError, Time: 4000, Src: "copy", File: "a.flv", Msg: "1"},
	{Level: LevelWarning, Time: 3000, Src: "check", File: "b.flv", Msg: "2"},
	{Level: LevelInfo, Time: 2000, Src: "copy", File: "b.flv", Msg: "3"},
	{Level: LevelDebug, Time: 1000, Src: "info", File: "a.flv", Msg: "4"},
}

func newTestDB(t *testing.T) (*DB, context.CancelFunc, *sync.WaitGroup) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	logDB := NewDB(filepath.Join(t.TempDir(), "logs.db"), wg)
	require.NoError(t, logDB.Init(ctx))

	// Oldest first.
	for i := len(testEntries) - 1; i >= 0; i-- {
		require.NoError(t, logDB.saveLog(testEntries[i]))
	}
	return logDB, cancel, wg
}

func TestQuery(t *testing.T) {
	defer goleak.VerifyNone(t)

	logDB, cancel, wg := newTestDB(t)
	defer func() {
		cancel()
		wg.Wait()
	}()

	msgs := func(entries []Entry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.Msg)
		}
		return out
	}

	cases := []struct {
		name  string
		query Query
		want  []string
	}{
		{"all", Query{}, []string{"1", "2", "3", "4"}},
		{"limit", Query{Limit: 2}, []string{"1", "2"}},
		{"levels", Query{Levels: []Level{LevelError, LevelDebug}}, []string{"1", "4"}},
		{"sources", Query{Sources: []string{"copy"}}, []string{"1", "3"}},
		{"files", Query{Files: []string{"b.flv"}}, []string{"2", "3"}},
		{"time", Query{Time: 3000}, []string{"3", "4"}},
		{"timeAfterLast", Query{Time: 9000}, []string{"1", "2", "3", "4"}},
		{"none", Query{Sources: []string{"nil"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := logDB.Query(tc.query)
			require.NoError(t, err)
			require.Equal(t, tc.want, msgs(entries))
		})
	}
}

func TestSaveLogUniqueKeys(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	logDB := NewDB(filepath.Join(t.TempDir(), "logs.db"), wg)
	require.NoError(t, logDB.Init(ctx))

	require.NoError(t, logDB.saveLog(Entry{Time: 10, Msg: "a"}))
	require.NoError(t, logDB.saveLog(Entry{Time: 10, Msg: "b"}))
	require.NoError(t, logDB.saveLog(Entry{Time: 5, Msg: "c"}))

	entries, err := logDB.Query(Query{})
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Time: 12, Msg: "c"},
		{Time: 11, Msg: "b"},
		{Time: 10, Msg: "a"},
	}, entries)

	cancel()
	wg.Wait()
}

func TestSaveLogMaxKeys(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	logDB := NewDB(filepath.Join(t.TempDir(), "logs.db"), wg)
	logDB.maxKeys = 2
	require.NoError(t, logDB.Init(ctx))

	for i, msg := range []string{"a", "b", "c"} {
		require.NoError(t, logDB.saveLog(Entry{Time: UnixMicro(i + 1), Msg: msg}))
	}

	entries, err := logDB.Query(Query{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "c", entries[0].Msg)
	require.Equal(t, "b", entries[1].Msg)

	cancel()
	wg.Wait()
}

func TestSaveLogs(t *testing.T) {
	defer goleak.VerifyNone(t)

	dbPath := filepath.Join(t.TempDir(), "logs.db")

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	logger := NewLogger(wg)
	logger.Start(ctx)

	logDB := NewDB(dbPath, wg)
	require.NoError(t, logDB.Init(ctx))
	logDB.SaveLogs(logger)

	logger.Info().Src("copy").Msg("saved")

	cancel()
	wg.Wait()

	// Reopen to check the entry was persisted before close.
	ctx2, cancel2 := context.WithCancel(context.Background())
	wg2 := &sync.WaitGroup{}
	logDB2 := NewDB(dbPath, wg2)
	require.NoError(t, logDB2.Init(ctx2))

	entries, err := logDB2.Query(Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "saved", entries[0].Msg)
	require.Equal(t, "copy", entries[0].Src)

	cancel2()
	wg2.Wait()
}
