package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
)

func groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Manage category groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List groups in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			groups, err := store.AllGroups(ctx)
			if err != nil {
				return fmt.Errorf("failed to load groups: %w", err)
			}
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No groups found. Use 'zb groups add' to create one."))
				return nil
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", g.ID, g.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a group after the existing ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			name := strings.TrimSpace(args[0])
			if name == "" {
				return common.NewUserError("Group name cannot be blank", common.ErrInvalidInput)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			groups, err := store.AllGroups(ctx)
			if err != nil {
				return fmt.Errorf("failed to load groups: %w", err)
			}
			for _, g := range groups {
				if strings.EqualFold(g.Name, name) {
					return common.NewUserError(fmt.Sprintf("Group %q already exists", g.Name), common.ErrDuplicateEntry)
				}
			}

			if _, err := store.AddGroups(ctx, model.Group{Name: name, Position: len(groups)}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Added group "+name))
			return nil
		},
	})

	return cmd
}
