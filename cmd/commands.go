package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"blindclock/internal/calendar"
	"blindclock/internal/core/clockset"
	"blindclock/internal/storage"
	"blindclock/internal/ui/preferences"
)

// listClocks prints the clocks as they would appear on the board at now.
func listClocks(ctx context.Context, w io.Writer, store storage.EventStore, settings preferences.Settings, now time.Time) error {
	events, err := store.List(ctx)
	if err != nil {
		return err
	}
	clocks, _ := clockset.Rebuild(events, now, settings.StartingWindow, nil)

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "NAME\tENTER BY\tSTATE")
	for _, clock := range clocks {
		target := "--:--"
		if clock.HasTarget() {
			target = clock.Target.Local().Format("Mon 15:04")
		}
		state := "not current"
		if clock.Enabled {
			state = "ready"
		}
		fmt.Fprintf(table, "%s\t%s\t%s\n", clock.DisplayName, target, state)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	ready := 0
	for _, clock := range clocks {
		if clock.Enabled {
			ready++
		}
	}
	_, err = fmt.Fprintf(w, "%d of %d clocks ready\n", ready, len(clocks))
	return err
}

// exportCalendar writes every stored event to path as iCalendar.
func exportCalendar(ctx context.Context, path string, store storage.EventStore, now time.Time) error {
	events, err := store.List(ctx)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := calendar.Export(file, events, now); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
