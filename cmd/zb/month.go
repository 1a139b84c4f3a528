package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/zerobudget/internal/cli"
	"github.com/Veraticus/zerobudget/internal/common"
	"github.com/Veraticus/zerobudget/internal/model"
)

func monthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show or change the selected month",
		Long: `The selected month is the one 'zb budget' and the TUI open on.
It can be any month from the start of the budget through next month.`,
		RunE: runMonthGet,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the selected month",
		Args:  cobra.NoArgs,
		RunE:  runMonthGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <YYYY-MM>",
		Short: "Select a month",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonthSet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "next",
		Short: "Select the following month",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return runMonthStep(cmd, 1) },
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "prev",
		Short: "Select the previous month",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return runMonthStep(cmd, -1) },
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the months that can be selected",
		Args:  cobra.NoArgs,
		RunE:  runMonthList,
	})

	return cmd
}

func runMonthGet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := s.selector.GetOrInitialize(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", m.Label(), m)
	return nil
}

func runMonthSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := model.ParseMonth(args[0])
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Invalid month %q, expected YYYY-MM", args[0]), err)
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.selector.Set(ctx, m); err != nil {
		if errors.Is(err, common.ErrMonthOutOfRange) {
			return monthOutOfRange(s.selector, m)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Selected "+m.Label()))
	return nil
}

func runMonthStep(cmd *cobra.Command, delta int) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	before, err := s.selector.GetOrInitialize(ctx)
	if err != nil {
		return err
	}
	after, err := s.selector.Step(ctx, delta)
	if err != nil {
		return err
	}
	if after == before {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(before.Label()+" is the last month in that direction"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Selected "+after.Label()))
	return nil
}

func runMonthList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	selected, err := s.selector.GetOrInitialize(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range s.selector.AvailableMonths() {
		if m == selected {
			fmt.Fprintln(out, cli.BoldStyle.Render(fmt.Sprintf("* %s  %s", m, m.Label())))
			continue
		}
		fmt.Fprintf(out, "  %s  %s\n", m, m.Label())
	}
	return nil
}
