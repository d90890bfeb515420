package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout. Las alertas de
// oportunidades, los recordatorios y los diagnósticos del run se imprimen
// en bloques visualmente separados.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime las oportunidades nuevas como tabla.
func (c *Console) Notify(_ context.Context, opportunities []domain.Opportunity) error {
	if len(opportunities) == 0 {
		fmt.Fprintf(c.out, "[%s] no opportunities found\n", time.Now().Format("15:04:05"))
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] POTENTIAL BETS FOUND — %d opportunities\n",
		time.Now().Format("15:04:05"), len(opportunities))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Date", "Matchup", "Bet", "Venue", "Odds", "Min Odds", "Kelly", "½ Kelly", "Stake")

	for i, opp := range opportunities {
		table.Append(
			fmt.Sprintf("%d", i+1),
			opp.Event.StartTime.Format("01/02 3:04 PM"),
			matchupLabel(opp.Event),
			opp.Selection,
			opp.Venue,
			formatOdds(opp.VenuePrice),
			formatOdds(opp.Threshold),
			fmt.Sprintf("%.0f%%", opp.Kelly*100),
			fmt.Sprintf("%.0f%%", opp.HalfKelly*100),
			fmt.Sprintf("$%.2f", opp.Stake),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Odds = current venue price | Min Odds = lowest still-profitable price")
	fmt.Fprintln(c.out, "  Kelly/½ Kelly = % of bankroll | Stake = full-Kelly wager on current bankroll")
	return nil
}

// NotifyReminders imprime una línea por oportunidad ya registrada que
// sigue siendo válida — sin tabla, no son alertas nuevas.
func (c *Console) NotifyReminders(_ context.Context, opportunities []domain.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}
	fmt.Fprintf(c.out, "\n[%s] still live (already alerted):\n", time.Now().Format("15:04:05"))
	for _, opp := range opportunities {
		fmt.Fprintf(c.out, "  %s — %s on %s still good as long as odds ≥ %s\n",
			opp.ID, opp.Selection, opp.Venue, formatOdds(opp.Threshold))
	}
	return nil
}

// NotifyReport imprime el diagnóstico del run, separado de las alertas.
func (c *Console) NotifyReport(_ context.Context, report domain.RunReport) error {
	fmt.Fprintf(c.out, "\n=== RUN %s ===\n", shortID(report.RunID))
	fmt.Fprintf(c.out, "  leagues:%d  quotes:%d  consensus:%d  lines-in-window:%d\n",
		report.LeaguesScanned, report.VenueQuotes, report.ConsensusRows, report.LinesExamined)
	fmt.Fprintf(c.out, "  unmatched:%d  dropped:%d  notified:%d  reminders:%d\n",
		report.Unmatched, report.QuotesDropped, report.Notified, report.Reminders)

	if report.Failed() {
		fmt.Fprintf(c.out, "  FAILURES (%d):\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(c.out, "    [%s/%s] %v\n", f.League, f.Stage, f.Err)
		}
	}
	return nil
}

// matchupLabel formatea "away @ home", estilo US.
func matchupLabel(ev domain.Event) string {
	return fmt.Sprintf("%s @ %s", ev.AwayTeam, ev.HomeTeam)
}

// formatOdds muestra el precio decimal con su equivalente americano:
// "2.30 (+130)".
func formatOdds(price float64) string {
	american, err := domain.DecimalToAmerican(price)
	if err != nil {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.2f (%s)", price, domain.FormatAmerican(american))
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
