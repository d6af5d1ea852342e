package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	assert.Equal(t, Version, Info())
}

func TestFullInfo(t *testing.T) {
	full := FullInfo()
	assert.True(t, strings.HasPrefix(full, "pdepend "+Version+" (commit: "))
	assert.Contains(t, full, "built: "+BuildDate)
}

func TestFullInfoUsesLinkedCommit(t *testing.T) {
	old := GitCommit
	GitCommit = "abc1234"
	defer func() { GitCommit = old }()

	assert.Contains(t, FullInfo(), "commit: abc1234")
}

func TestBuildIDStable(t *testing.T) {
	id := BuildID()
	assert.NotEmpty(t, id)
	assert.Equal(t, id, BuildID())
}
