package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/similr/similr/internal/app"
	"github.com/similr/similr/internal/auth"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Jump straight into rapid fire",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.session.Session().LoggedIn() {
			return errors.Join(auth.ErrNotLoggedIn, errors.New("run `similr login` first"))
		}
		return app.RunRapidFire(rt.options())
	},
}
