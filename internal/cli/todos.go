package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifeman/internal/organizer"
)

// todosCommand builds the reminders or chores group. Both operate on the
// same VTODO collection; only the label differs.
func (a *app) todosCommand(group organizer.Group, title string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(group),
		Short: title + " manager",
	}
	cmd.AddCommand(
		a.showTodosCommand(group),
		a.addTodoCommand(),
		a.removeTodoCommand(),
		a.completeTodoCommand(),
	)
	return cmd
}

func (a *app) showTodosCommand(group organizer.Group) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List all " + string(group),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.open()
			if err != nil {
				return err
			}
			o.ShowTodos(cmd.OutOrStdout(), group)
			return nil
		},
	}
}

func (a *app) addTodoCommand() *cobra.Command {
	var name, at, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a todo due at --time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			due, err := parseDateTime(at, a.loc)
			if err != nil {
				return fmt.Errorf("--time: %w", err)
			}

			o, err := a.open()
			if err != nil {
				return err
			}
			td, err := o.AddTodo(organizer.TodoInput{Name: name, Due: due, Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added todo %s\n", td.UID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "todo name")
	cmd.Flags().StringVar(&at, "time", "", "due time, e.g. 2024-01-01T12:00")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func (a *app) removeTodoCommand() *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a todo by UID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.open()
			if err != nil {
				return err
			}
			if _, err := o.RemoveTodo(uid); err != nil {
				return reportNotFound(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed todo %s\n", uid)
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "UID of the todo")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

func (a *app) completeTodoCommand() *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark a todo as completed now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.open()
			if err != nil {
				return err
			}
			td, err := o.CompleteTodo(uid)
			if err != nil {
				return reportNotFound(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed todo %s at %s\n", td.UID, td.Completed.In(a.loc).Format(a.cfg.TimeLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "UID of the todo")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
