package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoin_SkipsEmptyParts(t *testing.T) {
	require.Equal(t, "SELECT 1 WHERE x = $1", Join("SELECT 1", "", "WHERE x = $1", "  "))
}

func TestJoinWhere(t *testing.T) {
	require.Equal(t, "", JoinWhere())
	require.Equal(t, "WHERE a = $1", JoinWhere("a = $1", ""))
	require.Equal(t, "WHERE a = $1 AND b = $2", JoinWhere("a = $1", "b = $2"))
}

func TestInsert_WithReturning(t *testing.T) {
	q := Insert("tree_nodes", []string{"id", "kind"}, "id")
	require.Equal(t, "INSERT INTO tree_nodes (id, kind) VALUES ($1, $2) RETURNING id", q)
}
