// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package procexec

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestLookup(t *testing.T) {
	old := lookPath
	defer func() { lookPath = old }()

	tests := []struct {
		name    string
		found   map[string]bool
		bin     string
		want    string
		wantErr bool
	}{
		{name: "on PATH", found: map[string]bool{"abiword": true}, bin: "abiword", want: "/usr/bin/abiword"},
		{name: "missing", found: map[string]bool{}, bin: "abiword", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath = func(file string) (string, error) {
				if tt.found[file] {
					return "/usr/bin/" + file, nil
				}
				return "", errors.New("not found: " + file)
			}
			got, err := Lookup(tt.bin)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.bin)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOSSpawner_ExitCodeAndStreams(t *testing.T) {
	requireShell(t)

	p, err := OS().Spawn("sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.NotZero(t, p.PID())
	require.NoError(t, p.Stdin().Close())

	stdout, err := io.ReadAll(p.Stdout())
	require.NoError(t, err)
	stderr, err := io.ReadAll(p.Stderr())
	require.NoError(t, err)

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "out\n", string(stdout))
	assert.Equal(t, "err\n", string(stderr))
}

func TestOSSpawner_Stdin(t *testing.T) {
	requireShell(t)

	p, err := OS().Spawn("sh", "-c", "read line; echo \"got $line\"")
	require.NoError(t, err)

	_, err = io.WriteString(p.Stdin(), "convert a b pdf\n")
	require.NoError(t, err)
	require.NoError(t, p.Stdin().Close())

	out, err := io.ReadAll(p.Stdout())
	require.NoError(t, err)
	_, _ = io.ReadAll(p.Stderr())

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "got convert a b pdf", strings.TrimSpace(string(out)))
}

func TestOSSpawner_MissingExecutable(t *testing.T) {
	_, err := OS().Spawn("/nonexistent/docbridge-converter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting /nonexistent/docbridge-converter")
}
