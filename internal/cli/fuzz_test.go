package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minrx/internal/pattern"
	"github.com/roach88/minrx/internal/store"
)

func TestFuzz_Agrees(t *testing.T) {
	out, _, err := executeCommand(t, "fuzz", "--seed", "7", "--count", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "Run ")
	assert.Contains(t, out, "(seed 7)")
	assert.Contains(t, out, "disagreements: 0")
	assert.Contains(t, out, "✓ VM and oracle agree")
}

func TestFuzz_JSON(t *testing.T) {
	out, _, err := executeCommand(t, "fuzz", "--format", "json", "--seed", "3", "--count", "200")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   FuzzResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, uint64(3), resp.Data.Seed)
	assert.Equal(t, 200, resp.Data.Requested)
	assert.Equal(t, 200, resp.Data.Checked+resp.Data.Exhausted)
	assert.Equal(t, 0, resp.Data.Disagreements)
	assert.Empty(t, resp.Data.Failures)
	assert.NotEmpty(t, resp.Data.RunID)
}

func TestFuzz_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative count", []string{"fuzz", "--count", "-1"}},
		{"empty alphabet", []string{"fuzz", "--alphabet", ""}},
		{"negative depth", []string{"fuzz", "--max-depth", "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestFuzz_RecordsRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "minrx.db")

	_, _, err := executeCommand(t, "fuzz", "--db", db, "--seed", "11", "--count", "50")
	require.NoError(t, err)

	out, _, err := executeCommand(t, "runs", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)

	run := resp.Data[0]
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, uint64(11), run.Seed)
	assert.Equal(t, 50, run.Requested)
	assert.True(t, run.Finished)
	assert.Equal(t, 0, run.Disagreements)
}

func TestRuns_Text(t *testing.T) {
	db := filepath.Join(t.TempDir(), "minrx.db")

	_, _, err := executeCommand(t, "fuzz", "--db", db, "--count", "10")
	require.NoError(t, err)

	out, _, err := executeCommand(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "seed=1")
	assert.Contains(t, out, "finished")
}

func TestRuns_NeedsDatabase(t *testing.T) {
	_, _, err := executeCommand(t, "runs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = executeCommand(t, "runs", "--db", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// seedStore creates a store holding one run with one recorded case whose
// stored verdicts disagree. The current VM and oracle agree on it.
func seedStore(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	db := filepath.Join(t.TempDir(), "minrx.db")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	runID := "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: runID, Seed: 99, Requested: 1}))
	added, err := st.RecordCase(ctx, store.Case{
		RunID:   runID,
		Pattern: pattern.Concat(pattern.Star(pattern.Lit("a")), pattern.Lit("a")),
		Subject: "aa",
		VM:      false,
		Oracle:  true,
	})
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, st.FinishRun(ctx, store.Run{ID: runID, Seed: 99, Requested: 1, Checked: 1, Disagreements: 1}))
	return db, runID
}

func TestReplay_StoredCaseNowAgrees(t *testing.T) {
	db, _ := seedStore(t)

	out, _, err := executeCommand(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 case(s)")
	assert.Contains(t, out, `✓ #1 a*a on "aa": vm=true oracle=true (recorded vm=false)`)
	assert.Contains(t, out, "1 fixed, 0 still failing")
}

func TestReplay_JSONForRun(t *testing.T) {
	db, runID := seedStore(t)

	out, _, err := executeCommand(t, "replay", "--db", db, "--run", runID, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Fixed)
	require.Len(t, resp.Data.Cases, 1)

	c := resp.Data.Cases[0]
	assert.Equal(t, runID, c.RunID)
	assert.Equal(t, "aa", c.Subject)
	assert.False(t, c.StoredVM)
	assert.True(t, c.VM)
	assert.True(t, c.Fixed)
	assert.Len(t, c.Fingerprint, 64)
}

func TestReplay_UnknownRun(t *testing.T) {
	db, _ := seedStore(t)

	out, _, err := executeCommand(t, "replay", "--db", db, "--run", "missing", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunNotFound, resp.Error.Code)
}

func TestReplay_EmptyStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "minrx.db")
	_, _, err := executeCommand(t, "fuzz", "--db", db, "--count", "5")
	require.NoError(t, err)

	out, _, err := executeCommand(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No stored cases.")
}

func TestReplay_NeedsDatabase(t *testing.T) {
	out, _, err := executeCommand(t, "replay", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoDatabase, resp.Error.Code)
}
