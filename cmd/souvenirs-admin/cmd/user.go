package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/osouvenir/souvenirs/internal/app"
	"github.com/osouvenir/souvenirs/internal/service"
	"github.com/spf13/cobra"
)

func UserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	userCmd.AddCommand(userCreateCmd())
	userCmd.AddCommand(userListCmd())
	return userCmd
}

func userCreateCmd() *cobra.Command {
	var in service.UserInput

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user; --admin grants back office access",
		Example: "  SOUVENIRS_PASSWORD=secret souvenirs-admin user create --email ada@example.fr " +
			"--firstname Ada --lastname Lovelace --admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("SOUVENIRS_PASSWORD")
			}
			if in.Password == "" {
				return errors.New("password is required (--password or SOUVENIRS_PASSWORD)")
			}

			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			a := app.Wire(cfg, database, nil)
			user, err := a.UserService.Create(context.Background(), in)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> roles=%s\n", user.ID, user.Email, strings.Join(user.Roles.All(), ","))
			return nil
		},
	}

	createCmd.Flags().StringVar(&in.Email, "email", "", "email address, also the login")
	createCmd.Flags().StringVar(&in.Firstname, "firstname", "", "first name")
	createCmd.Flags().StringVar(&in.Lastname, "lastname", "", "last name")
	createCmd.Flags().StringVar(&in.Password, "password", "", "password (prefer SOUVENIRS_PASSWORD)")
	createCmd.Flags().BoolVar(&in.Admin, "admin", false, "grant ROLE_ADMIN")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("firstname")
	_ = createCmd.MarkFlagRequired("lastname")

	return createCmd
}

func userListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			users, err := app.Wire(cfg, database, nil).UserService.Users(context.Background())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLES")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s\n", u.ID, u.Email, u.Firstname, u.Lastname, strings.Join(u.Roles.All(), ","))
			}
			return tw.Flush()
		},
	}
}
