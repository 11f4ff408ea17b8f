package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sweeney/relay-scheduler/internal/config"
	"github.com/sweeney/relay-scheduler/internal/logging"
	"github.com/sweeney/relay-scheduler/internal/logic"
	"github.com/sweeney/relay-scheduler/internal/solar"
)

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	atFlag, _ := cmd.Flags().GetString("at")
	at, err := parseAt(atFlag, loc, time.Now)
	if err != nil {
		return err
	}

	sun := solar.New(cfg.Latitude, cfg.Longitude, loc, zerolog.Nop())
	tables := cfg.Schedule.Tables(logger)
	printCheck(cmd.OutOrStdout(), tables, sun.Today(at), at)
	return nil
}

// parseAt reads an RFC 3339 instant or a local "2006-01-02T15:04". Empty
// means now.
func parseAt(s string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--at %q: want RFC 3339 or YYYY-MM-DDTHH:MM", s)
}

func printCheck(w io.Writer, t config.Tables, sun logic.SunTimes, at time.Time) {
	now := logic.TimestampOf(at)

	fmt.Fprintf(w, "%-12s%s %s\n", "time", at.Format("2006-01-02 15:04 MST"), logic.WeekdayName(now.Weekday))
	fmt.Fprintf(w, "%-12s%s / %s\n", "sun", sun.Sunrise, sun.Sunset)
	fmt.Fprintf(w, "%-12s%s (%s)\n", "lighting", onOff(t.Lighting.Active(now, sun)), describe(t.Lighting))
	fmt.Fprintf(w, "%-12s%s (%s)\n", "irrigation", onOff(t.Irrigation.Active(now, sun)), describe(t.Irrigation))

	bell := "silent"
	if src := logic.MatchRing(now, t.Bells.Normal, t.Bells.Special); src != logic.SourceNone {
		bell = "RING (" + string(src) + ")"
	}
	fmt.Fprintf(w, "%-12s%s, %d normal, %d special\n", "bell", bell, len(t.Bells.Normal), len(t.Bells.Special))

	next, in := logic.NextBellIn(now, t.Bells.Normal, t.Bells.Special)
	if next.IsSet() {
		fmt.Fprintf(w, "%-12s%s (in %d min)\n", "next bell", next, in)
	} else {
		fmt.Fprintf(w, "%-12s%s\n", "next bell", next)
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func describe(c logic.ActuatorConfig) string {
	switch {
	case c.Mode == logic.ModeNone:
		return "no mode"
	case c.Mode == logic.ModeManual && c.Manual != nil:
		return fmt.Sprintf("MANUAL %s-%s", c.Manual.Start, c.Manual.End)
	case c.Mode == logic.ModeManual:
		return "MANUAL, no window"
	case c.OffsetMinutes != 0:
		return fmt.Sprintf("%s, %d min", c.Mode, c.OffsetMinutes)
	}
	return string(c.Mode)
}
