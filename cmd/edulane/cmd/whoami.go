package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiRemote bool

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session's user",
	Long: `Show the user of the restored session.

By default the answer comes from the locally restored session. With
--remote the authoritative profile is fetched from the server instead,
which also proves the credential is still accepted.`,
	RunE: runWhoami,
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiRemote, "remote", false, "Fetch the profile from the server")
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	snap := a.store.Snapshot()
	if !snap.IsAuthenticated {
		return fmt.Errorf("not logged in")
	}

	user := snap.User
	if whoamiRemote {
		if user, err = a.client.CurrentUser(ctx); err != nil {
			if !a.store.Snapshot().IsAuthenticated {
				return fmt.Errorf("session is no longer valid, please log in again")
			}
			return err
		}
	}

	role := "student"
	if user.IsEducator {
		role = "educator"
	}
	fmt.Printf("%s <%s> (%s)\n", user.Username, user.Email, role)
	if !user.IsActive {
		fmt.Println("account is inactive")
	}
	return nil
}
