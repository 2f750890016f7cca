package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/service"
	"github.com/vibast-solutions/ms-go-wellness/config"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the Admin user type, which can read audit logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		adminService := service.NewAdminService(repository.NewUserRepository(db))
		user, err := adminService.Promote(context.Background(), args[0])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				return fmt.Errorf("no account registered for %q", args[0])
			case errors.Is(err, service.ErrAlreadyAdmin):
				return fmt.Errorf("%q is already an admin", args[0])
			}
			return err
		}

		fmt.Printf("user_id: %d\n", user.ID)
		fmt.Printf("email: %s\n", user.Email)
		fmt.Printf("type: %s\n", user.Type)
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminPromoteCmd)
	rootCmd.AddCommand(adminCmd)
}
