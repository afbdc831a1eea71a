package clicfg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"manestream/pkg/clicfg"
)

type settings struct {
	Name    string        `flag:"name"`
	Verbose bool          `flag:"verbose"`
	Workers int           `flag:"workers"`
	Timeout time.Duration `flag:"timeout"`
	Kept    string        `flag:"kept"`
	Plain   string
}

func parse(t *testing.T, s any, args ...string) error {
	t.Helper()

	var parseErr error
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.BoolFlag{Name: "verbose"},
			&cli.IntFlag{Name: "workers", Value: 8},
			&cli.DurationFlag{Name: "timeout"},
			&cli.StringFlag{Name: "kept", Value: "flag default"},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			parseErr = clicfg.ParseFlags(c, s)
			return nil
		},
	}

	require.NoError(t, cmd.Run(t.Context(), append([]string{"test"}, args...)))
	return parseErr
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	t.Run("overlays set flags only", func(t *testing.T) {
		t.Parallel()

		s := settings{Kept: "from env", Workers: 3, Plain: "untouched"}
		require.NoError(t, parse(t, &s, "--name", "mano", "--verbose", "--timeout", "3s"))

		require.Equal(t, "mano", s.Name)
		require.True(t, s.Verbose)
		require.Equal(t, 3*time.Second, s.Timeout)
		require.Equal(t, 3, s.Workers)
		require.Equal(t, "from env", s.Kept)
		require.Equal(t, "untouched", s.Plain)
	})

	t.Run("ints", func(t *testing.T) {
		t.Parallel()

		s := settings{}
		require.NoError(t, parse(t, &s, "--workers", "16"))
		require.Equal(t, 16, s.Workers)
	})

	t.Run("not a pointer", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, parse(t, settings{}), clicfg.ErrCannotParseFlags)
	})

	t.Run("not a struct", func(t *testing.T) {
		t.Parallel()

		name := "x"
		require.ErrorIs(t, parse(t, &name), clicfg.ErrCannotParseFlags)
	})
}
