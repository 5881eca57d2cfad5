package dnd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/models"
)

const historyTimeFormat = "2006-01-02 15:04"

type HistoryCmd struct {
	Limit int `help:"Number of transitions to show." default:"20"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	events, err := ctx.Store.GetEvents(c.Limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No DND transitions recorded.")
		return nil
	}

	now := ctx.Clock()
	for _, e := range events {
		fmt.Println(formatEvent(e, now))
	}
	return nil
}

func formatEvent(e models.DNDEvent, now time.Time) string {
	prayer := string(e.Prayer)
	if prayer == "" {
		prayer = "-"
	}
	return fmt.Sprintf("%s  %-8s  %-20s  %-7s  %-6s  (%s)",
		e.OccurredAt.Local().Format(historyTimeFormat),
		e.Action, e.Reason, prayer, e.Backend,
		humanize.RelTime(e.OccurredAt, now, "ago", "from now"))
}
