package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/repository"
	"github.com/iliyamo/sabha-admin/internal/service"
)

var admin struct {
	name, email, password, role string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the first user so someone can log in",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		role, err := ensureRole(cmd, a, admin.role)
		if err != nil {
			return err
		}
		users := a.userService()
		// Publish before returning; the process exits right after.
		users.NotifyInline = true
		v, err := users.Create(ctx, service.UserInput{
			Name:     admin.name,
			Email:    admin.email,
			Password: admin.password,
			RoleID:   role.ID,
		})
		if err != nil {
			var ae *apperr.Error
			if errors.As(err, &ae) {
				return errors.New(ae.Message)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (karykarID %s, role %s)\n", v.Username, v.KarykarID, role.Name)
		return nil
	},
}

// ensureRole returns the role named name, creating it when absent.
func ensureRole(cmd *cobra.Command, a *app, name string) (*model.Role, error) {
	ctx := cmd.Context()
	for attempt := 0; attempt < 2; attempt++ {
		roles, err := a.roles.List(ctx)
		if err != nil {
			return nil, err
		}
		for i := range roles {
			if roles[i].Name == name {
				return &roles[i], nil
			}
		}
		id, err := a.roles.Create(ctx, name)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return a.roles.GetByID(ctx, id)
	}
	return nil, fmt.Errorf("role %q could not be resolved", name)
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&admin.name, "name", "", "full name")
	f.StringVar(&admin.email, "email", "", "email address")
	f.StringVar(&admin.password, "password", "", "initial password")
	f.StringVar(&admin.role, "role", "Admin", "role to assign, created when missing")
	for _, n := range []string{"name", "email", "password"} {
		_ = createAdminCmd.MarkFlagRequired(n)
	}
}
