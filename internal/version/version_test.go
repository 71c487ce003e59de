package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := []string{Version, GitCommit, BuildTime}
	t.Cleanup(func() { Version, GitCommit, BuildTime = orig[0], orig[1], orig[2] })

	assert.Equal(t, "mdsite unknown (commit unknown, built unknown)", String())

	Version, GitCommit, BuildTime = "v1.2.3", "abc1234", "2026-01-02"
	assert.Equal(t, "mdsite v1.2.3 (commit abc1234, built 2026-01-02)", String())
}
