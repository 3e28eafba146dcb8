package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder("delete-account")
	r.Add(OutcomeDeleted, 3)
	r.Add(OutcomeFailed, 1)
	r.Add(OutcomeBlocked, 0)
	r.Finish(false)

	path := filepath.Join(t.TempDir(), "textfile", "acctree.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `acctree_accounts_total{command="delete-account",outcome="deleted"} 3`)
	assert.Contains(t, out, `acctree_accounts_total{command="delete-account",outcome="failed"} 1`)
	assert.NotContains(t, out, `outcome="blocked"`)
	assert.Contains(t, out, `acctree_run_success{command="delete-account"} 0`)
	assert.Contains(t, out, "acctree_run_duration_seconds")
	assert.Contains(t, out, "acctree_last_run_timestamp_seconds")
}

func TestWriteTextfile_Disabled(t *testing.T) {
	r := NewRecorder("import-chart-of-accounts")
	r.Finish(true)
	require.NoError(t, r.WriteTextfile(""))
}
