package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"rezepte/internal/recipe"
	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	"github.com/spf13/cobra"
)

func (a *app) newListCmd() *cobra.Command {
	var (
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your recipes",
		Long: `Loads all recipes from the backend and prints those matching --search
(case-sensitive substring of the name). Nothing is listed when not logged in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.loadedViewModel(cmd)
			if err != nil {
				return err
			}
			if vm.Mode() != session.ModeAuthenticated {
				fmt.Fprintln(cmd.ErrOrStderr(), "Willkommen! Logge dich ein, um deine Rezepte zu sehen.")
				return nil
			}

			vm.SetSearch(search)
			recipes := vm.Visible()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(recipes)
			}
			return printRecipes(cmd, recipes)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only recipes whose name contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func (a *app) newAddCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add NAME INSTRUCTIONS",
		Short: "Create a recipe owned by the current user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.sessionViewModel()
			if err != nil {
				return err
			}
			vm.SetForm(viewmodel.CreateForm{Name: args[0], Instructions: args[1], Category: category})
			if err := vm.SubmitForm(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rezept %q gespeichert (%d Rezepte)\n", args[0], len(vm.Recipes()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category (kategorie)")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recipe by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid recipe id: %q", args[0])
			}
			vm, err := a.sessionViewModel()
			if err != nil {
				return err
			}
			if err := vm.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rezept #%d gelöscht\n", id)
			return nil
		},
	}
}

func (a *app) sessionViewModel() (*viewmodel.ViewModel, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	return a.viewModel(sess), nil
}

func (a *app) loadedViewModel(cmd *cobra.Command) (*viewmodel.ViewModel, error) {
	vm, err := a.sessionViewModel()
	if err != nil {
		return nil, err
	}
	if err := vm.Mount(cmd.Context()); err != nil {
		return nil, err
	}
	return vm, nil
}

func printRecipes(cmd *cobra.Command, recipes []recipe.Recipe) error {
	if len(recipes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Keine Rezepte gefunden.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKATEGORIE")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, r.Category)
	}
	return tw.Flush()
}
