package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultsAreNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, Version())
	assert.NotEmpty(t, Commit())
	assert.NotEmpty(t, Date())
}

func TestLdflagsTakePriority(t *testing.T) {
	oldVersion, oldCommit, oldDate := version, commit, date
	t.Cleanup(func() { version, commit, date = oldVersion, oldCommit, oldDate })

	version, commit, date = "v1.2.3", "abc1234", "2026-01-01"

	assert.Equal(t, "v1.2.3", Version())
	assert.Equal(t, "abc1234", Commit())
	assert.Equal(t, "2026-01-01", Date())
}
