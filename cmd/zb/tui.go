package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/zerobudget/internal/engine"
	"github.com/Veraticus/zerobudget/internal/tui"
	"github.com/Veraticus/zerobudget/internal/tui/themes"
)

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit budgets interactively",
		Long: `Open the interactive budget view for the selected month.

Move between categories with j/k, change months with the left and right arrows,
press enter to edit a budget and ? for all key bindings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			return tui.Run(ctx,
				engine.NewPipeline(s.store),
				engine.NewEditor(s.store),
				s.selector,
				tuiOptions(cmd)...,
			)
		},
	}

	cmd.Flags().String("theme", "", "color theme (default, catppuccin)")
	cmd.Flags().Bool("full-help", false, "list every key binding from the start")

	return cmd
}

func tuiOptions(cmd *cobra.Command) []tui.Option {
	theme, _ := cmd.Flags().GetString("theme")
	if theme == "" {
		theme = viper.GetString("tui.theme")
	}
	fullHelp, _ := cmd.Flags().GetBool("full-help")

	return []tui.Option{
		tui.WithTheme(themes.ByName(theme)),
		tui.WithFullHelp(fullHelp),
	}
}
