package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and persist the session",
	Long: `Authenticate against the platform with a username and password.

On success the issued credential is stored locally and reused by later
invocations until it expires or is revoked.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	username := loginUsername
	if username == "" {
		if username, err = prompt("Username: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = prompt("Password: "); err != nil {
			return err
		}
	}

	user, err := a.client.Login(ctx, username, password)
	if err != nil {
		if msg := a.store.Snapshot().Error; msg != "" {
			return fmt.Errorf("login failed: %s", msg)
		}
		return err
	}

	role := "student"
	if user.IsEducator {
		role = "educator"
	}
	fmt.Printf("Logged in as %s (%s)\n", user.Username, role)
	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
