package visibility_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"manestream/internal/persistence/friends"
	"manestream/internal/persistence/persistencetest"
	"manestream/internal/visibility"
)

func TestScope(t *testing.T) {
	t.Parallel()

	db := persistencetest.NewDB(t)
	graph := &friends.Repository{DB: db}
	scope := &visibility.Scope{Friends: graph}

	mano := persistencetest.NewUser(t, db, "mano")
	booma := persistencetest.NewUser(t, db, "booma")
	e := persistencetest.NewUser(t, db, "e")
	dyli := persistencetest.NewUser(t, db, "dyli")

	require.NoError(t, graph.RequestFriend(t.Context(), mano.ID, booma.ID))
	require.NoError(t, graph.ConfirmFriend(t.Context(), booma.ID, mano.ID))
	require.NoError(t, graph.RequestFriend(t.Context(), e.ID, mano.ID))
	require.NoError(t, graph.ConfirmFriend(t.Context(), mano.ID, e.ID))
	// Pending requests do not widen the scope.
	require.NoError(t, graph.RequestFriend(t.Context(), dyli.ID, mano.ID))

	ids, err := scope.Scope(t.Context(), mano.ID)
	require.NoError(t, err)
	require.Equal(t, mano.ID, ids[0])
	require.ElementsMatch(t, []string{mano.ID, booma.ID, e.ID}, ids)

	ids, err = scope.Scope(t.Context(), booma.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{booma.ID, mano.ID}, ids)

	ids, err = scope.Scope(t.Context(), dyli.ID)
	require.NoError(t, err)
	require.Equal(t, []string{dyli.ID}, ids)

	ok, err := scope.Contains(t.Context(), booma.ID, e.ID)
	require.NoError(t, err)
	require.False(t, ok)

	t.Run("recomputed after unfriending", func(t *testing.T) {
		require.NoError(t, graph.DeleteFriend(t.Context(), mano.ID, booma.ID))

		ok, err := scope.Contains(t.Context(), mano.ID, booma.ID)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = scope.Contains(t.Context(), booma.ID, booma.ID)
		require.NoError(t, err)
		require.True(t, ok)
	})
}
