package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{"name": "Food", "color": "#10B981", "icon": "ri-restaurant-line"}
	newState := map[string]any{"name": "Fresh food", "color": "#10B981", "parent": "x"}

	changes := Diff(oldState, newState)

	assert.Equal(t, map[string]any{"old": "Food", "new": "Fresh food"}, changes["name"])
	assert.Equal(t, map[string]any{"old": nil, "new": "x"}, changes["parent"])
	assert.Equal(t, map[string]any{"old": "ri-restaurant-line", "new": nil}, changes["icon"])
	assert.NotContains(t, changes, "color")
}
