package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, answers ...string) {
	t.Helper()
	origRead, origTTY := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTTY })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) {
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestPromptPassword_Terminal(t *testing.T) {
	stubTerminal(t, "s3cret", "s3cret")
	var out bytes.Buffer

	pw, err := promptPassword(os.Stdin, &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.Contains(t, out.String(), "Password (again): ")
}

func TestPromptPassword_Mismatch(t *testing.T) {
	stubTerminal(t, "one", "two")

	_, err := promptPassword(os.Stdin, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPromptPassword_Piped(t *testing.T) {
	origTTY := isTerminal
	t.Cleanup(func() { isTerminal = origTTY })
	isTerminal = func(int) bool { return false }

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("piped-pw\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	pw, err := promptPassword(r, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "piped-pw", pw)
}
