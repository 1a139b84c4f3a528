package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/zerobudget/internal/categories"
	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage budget categories",
		Long: `List, add, rename, reorder and remove the categories money is budgeted to.

Removing a category deletes its budgets and moves its transactions back to
"To be budgeted". New categories start with a zero budget in every month.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(renameCategoryCmd())
	cmd.AddCommand(moveCategoryCmd())
	cmd.AddCommand(moveCategoryToGroupCmd())
	cmd.AddCommand(removeCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories by group",
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
			all, err := store.AllCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(all) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'zb categories add' to create one."))
				return nil
			}

			byGroup := make(map[int64][]model.Category, len(groups))
			for _, c := range all {
				byGroup[c.GroupID] = append(byGroup[c.GroupID], c)
			}
			for _, g := range groups {
				fmt.Fprintln(out, cli.BoldStyle.Render(g.Name))
				for _, c := range byGroup[g.ID] {
					fmt.Fprintf(out, "  %4d  %s\n", c.ID, c.Name)
				}
			}
			return nil
		},
	}
}

// editCategories loads the committed categories into a manager, lets edit change
// the draft and commits the result.
func (s *session) editCategories(ctx context.Context, defaultGroup int64, edit func(m *categories.Manager) error) error {
	committed, err := s.store.AllCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	manager := categories.NewManager(committed, defaultGroup)
	if err := edit(manager); err != nil {
		return err
	}
	if !manager.Changed() {
		return nil
	}
	return manager.Commit(ctx, s.store, s.selector.AvailableMonths())
}

// defaultGroup returns the group new categories go to: ref when given, else
// the first group, which is created when there is none.
func (s *session) defaultGroup(ctx context.Context, ref string) (int64, error) {
	groups, err := s.store.AllGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load groups: %w", err)
	}
	if ref != "" {
		g, err := findGroup(groups, ref)
		if err != nil {
			return 0, err
		}
		return g.ID, nil
	}
	if len(groups) > 0 {
		return groups[0].ID, nil
	}

	ids, err := s.store.AddGroups(ctx, model.Group{Name: "General"})
	if err != nil {
		return 0, fmt.Errorf("failed to create default group: %w", err)
	}
	return ids[0], nil
}

func addCategoryCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			groupID, err := s.defaultGroup(ctx, group)
			if err != nil {
				return err
			}

			err = s.editCategories(ctx, groupID, func(m *categories.Manager) error {
				if !m.AddOrEdit(nil, args[0]) {
					return common.NewUserError(fmt.Sprintf("Cannot add %q: the name is blank or already taken", args[0]), common.ErrInvalidInput)
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Added category "+args[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group to add the category to (default: the first group)")
	return cmd
}

func renameCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category> <new-name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			err = s.editCategories(ctx, 0, func(m *categories.Manager) error {
				c, err := findCategory(m.Draft(), args[0])
				if err != nil {
					return err
				}
				if !m.AddOrEdit(&c.ID, args[1]) {
					return common.NewUserError(fmt.Sprintf("Cannot rename to %q: the name is blank or already taken", args[1]), common.ErrInvalidInput)
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed %s to %s", args[0], args[1])))
			return nil
		},
	}
}

func moveCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <category> <position>",
		Short: "Move a category within its group",
		Long:  `Move a category to a position within its group. Positions start at 0.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			position, err := strconv.Atoi(args[1])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Invalid position %q", args[1]), err)
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			err = s.editCategories(ctx, 0, func(m *categories.Manager) error {
				c, err := findCategory(m.Draft(), args[0])
				if err != nil {
					return err
				}
				if !m.Move(c.ID, position) {
					return common.NewUserError(fmt.Sprintf("Position %d is outside the group", position), common.ErrInvalidInput)
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Moved %s to position %d", args[0], position)))
			return nil
		},
	}
}

func moveCategoryToGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move-group <category> <group>",
		Short: "Move a category to the end of another group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			groups, err := s.store.AllGroups(ctx)
			if err != nil {
				return fmt.Errorf("failed to load groups: %w", err)
			}
			group, err := findGroup(groups, args[1])
			if err != nil {
				return err
			}

			err = s.editCategories(ctx, 0, func(m *categories.Manager) error {
				c, err := findCategory(m.Draft(), args[0])
				if err != nil {
					return err
				}
				if c.GroupID == group.ID {
					return common.NewUserError(fmt.Sprintf("%s is already in %s", c.Name, group.Name), common.ErrInvalidInput)
				}
				if !m.MoveToGroup(c.ID, group.ID) {
					return common.NewUserError(fmt.Sprintf("Cannot move %s to %s", c.Name, group.Name), common.ErrInvalidInput)
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Moved %s to %s", args[0], group.Name)))
			return nil
		},
	}
}

func removeCategoryCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <category>",
		Short: "Remove a category",
		Long: `Remove a category and its budgets. Its transactions move back to
"To be budgeted".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			var removed string
			err = s.editCategories(ctx, 0, func(m *categories.Manager) error {
				c, err := findCategory(m.Draft(), args[0])
				if err != nil {
					return err
				}
				m.Remove(c.ID)
				if !yes {
					reader := cli.NewNonBlockingReader(cmd.InOrStdin())
					ok, err := reader.Confirm(ctx, cmd.OutOrStdout(),
						fmt.Sprintf("Remove %s and all of its budgets?", c.Name))
					if err != nil {
						return err
					}
					if !ok {
						m.Discard()
						return nil
					}
				}
				removed = c.Name
				return nil
			})
			if err != nil {
				return err
			}

			if removed == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Nothing removed."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed category "+removed))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
