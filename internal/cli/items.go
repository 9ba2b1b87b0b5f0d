package cli

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/todosync/internal/commands"
	"github.com/sandeepkv93/todosync/internal/model"
	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Print the task collection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(cmd, app)
			if err != nil {
				return err
			}
			items, err := loadItems(c)
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), items, group)
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "Group by pending and done")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var done bool
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("add: empty title")
			}
			c, err := newController(cmd, app)
			if err != nil {
				return err
			}
			if _, err := dispatchAll(c,
				commands.FieldChanged(model.FieldTitle, title),
				commands.FieldChanged(model.FieldCompleted, done),
			); err != nil {
				return err
			}
			_, err = dispatchAll(c, commands.Submit(c.EditState().ActiveItem))
			return report(cmd, "add", fmt.Sprintf("added %q", title), err)
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "Create the task already completed")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var (
		title  string
		done   bool
		undone bool
	)
	cmd := &cobra.Command{
		Use:   "edit <index>",
		Short: "Change the title or completion of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !done && !undone {
				return fmt.Errorf("edit: nothing to change, pass --title, --done or --undone")
			}
			c, err := newController(cmd, app)
			if err != nil {
				return err
			}
			item, err := resolveItem(c, args[0])
			if err != nil {
				return err
			}

			steps := []commands.Command{commands.Edit(item)}
			if flags.Changed("title") {
				steps = append(steps, commands.FieldChanged(model.FieldTitle, title))
			}
			if done {
				steps = append(steps, commands.FieldChanged(model.FieldCompleted, true))
			}
			if undone {
				steps = append(steps, commands.FieldChanged(model.FieldCompleted, false))
			}
			if _, err := dispatchAll(c, steps...); err != nil {
				return err
			}
			draft := c.EditState().ActiveItem
			_, err = dispatchAll(c, commands.Submit(draft))
			return report(cmd, "edit", fmt.Sprintf("saved %q", draft.Title), err)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().BoolVar(&done, "done", false, "Mark completed")
	cmd.Flags().BoolVar(&undone, "undone", false, "Mark not completed")
	cmd.MarkFlagsMutuallyExclusive("done", "undone")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "done <index>",
		Aliases: []string{"toggle"},
		Short:   "Toggle completion of a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(cmd, app)
			if err != nil {
				return err
			}
			item, err := resolveItem(c, args[0])
			if err != nil {
				return err
			}
			item.Completed = !item.Completed
			_, err = dispatchAll(c, commands.Submit(item))
			state := "pending"
			if item.Completed {
				state = "done"
			}
			return report(cmd, "done", fmt.Sprintf("%q is %s", item.Title, state), err)
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(cmd, app)
			if err != nil {
				return err
			}
			item, err := resolveItem(c, args[0])
			if err != nil {
				return err
			}
			_, err = dispatchAll(c, commands.Delete(item))
			return report(cmd, "rm", fmt.Sprintf("removed %q", item.Title), err)
		},
	}
}
