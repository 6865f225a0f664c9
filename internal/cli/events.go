package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifeman/internal/organizer"
)

func (a *app) eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"classes"},
		Short:   "Events manager (classes, appointments)",
	}
	cmd.AddCommand(a.showEventsCommand(), a.addEventCommand(), a.removeEventCommand())
	return cmd
}

func (a *app) showEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.open()
			if err != nil {
				return err
			}
			o.ShowEvents(cmd.OutOrStdout())
			return nil
		},
	}
}

func (a *app) addEventCommand() *cobra.Command {
	var (
		name, begin, end  string
		description, room string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := parseDateTime(begin, a.loc)
			if err != nil {
				return fmt.Errorf("--begin: %w", err)
			}
			e := b.Add(a.cfg.DefaultEventDuration)
			if end != "" {
				if e, err = parseDateTime(end, a.loc); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}

			o, err := a.open()
			if err != nil {
				return err
			}
			ev, err := o.AddEvent(organizer.EventInput{
				Name:        name,
				Begin:       b,
				End:         e,
				Description: description,
				Location:    room,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added event %s\n", ev.UID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "event name")
	cmd.Flags().StringVar(&begin, "begin", "", "start time, e.g. 2024-01-01T09:00")
	cmd.Flags().StringVar(&end, "end", "", "end time (default: begin + default_event_duration)")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	cmd.Flags().StringVar(&room, "location", "", "optional location")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("begin")
	return cmd
}

func (a *app) removeEventCommand() *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an event by UID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := a.open()
			if err != nil {
				return err
			}
			if _, err := o.RemoveEvent(uid); err != nil {
				return reportNotFound(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed event %s\n", uid)
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "UID of the event")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
