package cli

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("  alice \nlast"))

	got, err := prompt(r, &out, "Username")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Username: ", out.String())

	got, err = prompt(r, &out, "Email")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = prompt(r, &out, "Again")
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
		{input: "sure\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got := confirm(bufio.NewReader(strings.NewReader(tt.input)), &out, "Delete?")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Delete? [y/N]: ", out.String())
		})
	}
}

func TestPromptPassword_Terminal(t *testing.T) {
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(); _ = w.Close() })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("hunter2"), nil }

	var out bytes.Buffer
	got, err := promptPassword(r, bufio.NewReader(r), &out)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
	assert.Equal(t, "Password: \n", out.String())
}

func TestPromptPassword_Piped(t *testing.T) {
	in := strings.NewReader("pw\n")
	var out bytes.Buffer
	got, err := promptPassword(in, bufio.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, "pw", got)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", preview("short\n  text"))
	long := strings.Repeat("a", 60)
	assert.Equal(t, strings.Repeat("a", 37)+"...", preview(long))
}
