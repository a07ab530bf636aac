package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/teamdb/internal/accrual"
)

// Holidays prints the entitlement of one person and, when absence data has
// been imported for them, what is left and how urgent it is to take it.
func (a *App) Holidays(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return usage("holidays <person>")
	}

	store, err := a.session.Directory(ctx)
	if err != nil {
		return err
	}
	p, ok := store.PersonByName(name)
	if !ok {
		return notFound("person", name)
	}
	if _, ok := accrual.PolicyFor(p.Site); !ok {
		a.logger.Warn(ctx, "unknown site, ERL rules apply", "person", p.Name, "site", p.Site)
	}

	now := a.now()
	h := accrual.Holder{Site: p.Site, CarryOver: p.CarryOverHolidays}
	b := accrual.Compute(h, now)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Site:\t%s\n", b.Site)
	fmt.Fprintf(tw, "Accrual year start:\t%s\n", b.AccrualYearStart)
	fmt.Fprintf(tw, "Months passed:\t%d\n", b.MonthsPassed)
	fmt.Fprintf(tw, "Carry over:\t%s\n", accrual.FormatDays(b.CarryOver))
	if b.LY != nil {
		fmt.Fprintf(tw, "Bulk days:\t%s\n", accrual.FormatDays(b.LY.BulkDays))
		fmt.Fprintf(tw, "Monthly accrued:\t%s\n", accrual.FormatDays(b.LY.MonthlyAccrued))
	}
	fmt.Fprintf(tw, "Accrued:\t%s\n", accrual.FormatDays(b.Accrued))
	fmt.Fprintf(tw, "Total available:\t%s\n", accrual.FormatDays(b.TotalAvailable))

	if !p.HasHolidayData() {
		fmt.Fprintln(tw, "Remaining:\tno absence data")
		return tw.Flush()
	}

	yearStart := accrual.AccrualYearStart(now)
	spent := store.SpentDaysByType(p.UserID, yearStart, now)
	rem := accrual.ComputeRemaining(h, accrual.SpendFromTypes(p.Site, spent), now)
	urg := accrual.ComputeUrgency(p.Site, rem, now)

	fmt.Fprintf(tw, "Remaining:\t%s\n", rem.DisplayText)
	fmt.Fprintf(tw, "Urgency:\t%s\n", urg.Severity)
	if urg.Tooltip != "" {
		for _, line := range strings.Split(urg.Tooltip, "\n") {
			fmt.Fprintf(tw, "\t%s\n", line)
		}
	}

	if cal, ok := store.Holidays(p.Name, yearStart.Format(time.DateOnly), now.AddDate(1, 0, 0).Format(time.DateOnly)); ok {
		days := make([]string, 0, len(cal.Holidays))
		for _, d := range cal.Holidays {
			days = append(days, d.Date)
		}
		if len(days) > 0 {
			fmt.Fprintf(tw, "Public holidays:\t%s\n", strings.Join(days, ", "))
		}
	}
	return tw.Flush()
}

// ImportAbsence reads an absence feed from a file and merges it into the
// directory.
func (a *App) ImportAbsence(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("import-absence <file>")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read absence feed: %w", err)
	}
	if err := a.session.ImportAbsence(ctx, raw); err != nil {
		return err
	}
	a.println("Absence data imported")
	return nil
}
