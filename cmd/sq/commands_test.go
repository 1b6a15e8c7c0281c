package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpendQueue/internal/fund"
	"SpendQueue/internal/purchase"
)

// runSQ executes one CLI invocation against statePath and returns stdout.
func runSQ(t *testing.T, statePath string, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	defer a.close()

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(append([]string{"--state", statePath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_AddListAndStatus(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SQ_CONFIG", filepath.Join(home, "none.yaml"))
	state := filepath.Join(home, "state.json")

	out, err := runSQ(t, state, "add", "--price", "$12.50", "--link", "https://example.com/novel", "Big", "Novel")
	require.NoError(t, err)
	assert.Contains(t, out, `Adding "Big Novel" for $12.50 to the end of the list.`)

	_, err = runSQ(t, state, "add", "--price", "3", "--link", "", "--prepend", "Comic")
	require.NoError(t, err)

	out, err = runSQ(t, state, "list")
	require.NoError(t, err)
	assert.Regexp(t, `(?s)Comic.*\$3\.00.*Big Novel.*\$12\.50`, out)

	out, err = runSQ(t, state, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "The next item in the queue is Comic for $3.00")
}

func TestCLI_BuyRejectedIsNotAnError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SQ_CONFIG", filepath.Join(home, "none.yaml"))
	state := filepath.Join(home, "state.json")

	_, err := runSQ(t, state, "add", "--price", "1000", "--link", "", "Piano")
	require.NoError(t, err)

	_, err = runSQ(t, state, "buy", "--no-open")
	assert.NoError(t, err)

	out, err := runSQ(t, state, "past")
	require.NoError(t, err)
	assert.Equal(t, "Nothing bought yet.\n", out)
}

func TestCLI_Errors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SQ_CONFIG", filepath.Join(home, "none.yaml"))
	state := filepath.Join(home, "state.json")

	_, err := runSQ(t, state, "queue", "select", "default")
	assert.True(t, errors.Is(err, fund.ErrNotImplemented))

	_, err = runSQ(t, state, "add", "--price", "-4", "Thing")
	assert.Error(t, err)

	_, err = runSQ(t, state, "budget")
	assert.Error(t, err, "amount is required")
}

func TestMoneyFlag(t *testing.T) {
	var f moneyFlag
	assert.Nil(t, f.Ptr())
	assert.Equal(t, "", f.String())

	require.NoError(t, f.Set("$4.20"))
	require.NotNil(t, f.Ptr())
	assert.Equal(t, "4.20", f.String())

	assert.ErrorIs(t, f.Set("-1"), purchase.ErrNegativeAmount)
	assert.Error(t, f.Set("four"))
}

func TestRejected(t *testing.T) {
	assert.NoError(t, rejected(purchase.ErrInsufficientFunds))
	assert.NoError(t, rejected(nil))
	other := errors.New("disk full")
	assert.Equal(t, other, rejected(other))
}

func TestCLI_AddReportsOnlyAfterSave(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SQ_CONFIG", filepath.Join(home, "none.yaml"))

	// A directory cannot be read as the state file.
	out, err := runSQ(t, home, "add", "--price", "3", "--link", "", "Comic")
	assert.Error(t, err)
	assert.NotContains(t, out, "Adding")
}
