package main

import (
	"fmt"
	"os"

	"github.com/nebari-dev/modelconfig/internal/db"
	"github.com/nebari-dev/modelconfig/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	userEmail    string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user",
	Long: `Create a user that can log in to the API and own configuration.

Examples:
  modelconfig user create alice                      # Prompt for the password
  modelconfig user create alice --email a@corp.com`,
	Args: cobra.ExactArgs(1),
	RunE: runUserCreate,
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address (default: <username>@modelconfig.local)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password (prompted when omitted)")
	userCmd.AddCommand(userCreateCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	password := userPassword
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(passBytes)
	}

	_, database, err := server.Bootstrap(configFile)
	if err != nil {
		return err
	}

	user, err := db.CreateUser(database, args[0], userEmail, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Username, user.ID)
	return nil
}
