package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Run("ticket in title", func(t *testing.T) {
		id, ok := Extract("PROJ-123: fix bug", "", "")
		assert.True(t, ok)
		assert.Equal(t, "PROJ-123", id)
	})

	t.Run("no ticket anywhere", func(t *testing.T) {
		_, ok := Extract("fix bug", "small cleanup", "bugfix/cleanup")
		assert.False(t, ok)
	})

	t.Run("no hyphen digit separation", func(t *testing.T) {
		_, ok := Extract("proj123", "", "")
		assert.False(t, ok)
	})

	t.Run("lowercase project is not a ticket", func(t *testing.T) {
		_, ok := Extract("proj-123: fix bug", "", "")
		assert.False(t, ok)
	})

	t.Run("title scanned before description and branch", func(t *testing.T) {
		id, ok := Extract("TITLE-1 change", "DESC-2 context", "feature/BRANCH-3")
		assert.True(t, ok)
		assert.Equal(t, "TITLE-1", id)
	})

	t.Run("falls back to description then branch", func(t *testing.T) {
		id, ok := Extract("fix bug", "relates to DESC-2", "feature/BRANCH-3")
		assert.True(t, ok)
		assert.Equal(t, "DESC-2", id)

		id, ok = Extract("fix bug", "", "feature/BRANCH-3")
		assert.True(t, ok)
		assert.Equal(t, "BRANCH-3", id)
	})

	t.Run("ticket embedded in branch path", func(t *testing.T) {
		id, ok := Extract("", "", "feature/OPS-4521-rotate-keys")
		assert.True(t, ok)
		assert.Equal(t, "OPS-4521", id)
	})
}
