package execx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	runner := New(nil)

	res, err := runner.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo err 1>&2")
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	runner := New(nil)

	res, err := runner.Run(context.Background(), t.TempDir(), "sh", "-c", "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunMissingBinary(t *testing.T) {
	runner := New(nil)

	_, err := runner.Run(context.Background(), t.TempDir(), "definitely-not-a-binary-xyz")
	assert.Error(t, err)
}
