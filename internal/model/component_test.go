package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentListValue(t *testing.T) {
	t.Run("nil list serializes as empty array", func(t *testing.T) {
		var list ComponentList
		value, err := list.Value()
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(value.([]byte)))
	})

	t.Run("nested children serialize in order", func(t *testing.T) {
		list := ComponentList{
			{
				ID:   "c1",
				Name: "DashboardProvider",
				Type: "provider",
				Children: ComponentList{
					{ID: "g1", Name: "ActionTable", Completed: true},
					{ID: "g2", Name: "Snapshot"},
				},
			},
		}
		value, err := list.Value()
		require.NoError(t, err)

		var parsed ComponentList
		require.NoError(t, parsed.Scan(value))
		require.Len(t, parsed, 1)
		require.Len(t, parsed[0].Children, 2)
		assert.Equal(t, "ActionTable", parsed[0].Children[0].Name)
		assert.True(t, parsed[0].Children[0].Completed)
		assert.Equal(t, "Snapshot", parsed[0].Children[1].Name)
	})
}

func TestComponentListScan(t *testing.T) {
	t.Run("nil database value", func(t *testing.T) {
		list := ComponentList{{ID: "stale"}}
		require.NoError(t, list.Scan(nil))
		assert.Nil(t, list)
	})

	t.Run("string value", func(t *testing.T) {
		var list ComponentList
		require.NoError(t, list.Scan(`[{"id":"c1","name":"Widget"}]`))
		require.Len(t, list, 1)
		assert.Equal(t, "Widget", list[0].Name)
	})

	t.Run("byte slice preserves timestamps", func(t *testing.T) {
		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		original := ComponentList{{ID: "c1", Name: "Widget", CreatedAt: created, UpdatedAt: created}}
		raw, err := original.Value()
		require.NoError(t, err)

		var list ComponentList
		require.NoError(t, list.Scan(raw))
		require.Len(t, list, 1)
		assert.True(t, list[0].CreatedAt.Equal(created))
	})

	t.Run("unsupported type", func(t *testing.T) {
		var list ComponentList
		assert.Error(t, list.Scan(42))
	})
}
