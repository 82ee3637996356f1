package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edulane/edulane-go/pkg/credential"
	"github.com/edulane/edulane-go/pkg/guard"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the session layer's current state",
	Long: `Report the persisted credential, its expiry, and the access
decision for each role-gated area, without contacting the server.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	snap := a.store.Snapshot()

	if !snap.IsAuthenticated {
		fmt.Println("session:    not authenticated")
		if raw, ok := a.slot.Get(ctx); ok {
			// Rehydration left it in place, so it decodes but should
			// not normally end up here.
			fmt.Printf("credential: persisted (%d bytes)\n", len(raw))
		} else {
			fmt.Println("credential: none persisted")
		}
		return nil
	}

	fmt.Printf("session:    authenticated as %s\n", snap.User.Username)

	if claims, err := credential.Decode(snap.Credential); err == nil && claims.ExpiresAt != nil {
		remaining := time.Until(claims.ExpiresAt.Time).Round(time.Second)
		fmt.Printf("credential: expires %s (in %s)\n",
			claims.ExpiresAt.Time.Format(time.RFC3339), remaining)
	}

	for _, role := range []guard.Role{guard.RoleStudent, guard.RoleEducator} {
		decision := guard.Evaluate(snap, a.rehydrator.Ready(), []guard.Role{role})
		fmt.Printf("access:     %-9s %s\n", role.String()+":", decision)
	}
	return nil
}
