package ports

import (
	"context"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// Notifier entrega los resultados de un run al usuario. El transporte es
// cosa del adapter; el engine solo distingue alertas, recordatorios y
// diagnósticos.
type Notifier interface {
	// Notify presenta las oportunidades nuevas de este run.
	Notify(ctx context.Context, opportunities []domain.Opportunity) error

	// NotifyReminders presenta oportunidades ya registradas en el ledger
	// que siguen siendo válidas — no son alertas nuevas.
	NotifyReminders(ctx context.Context, opportunities []domain.Opportunity) error

	// NotifyReport presenta el reporte diagnóstico del run, separado
	// visualmente de las alertas de oportunidades.
	NotifyReport(ctx context.Context, report domain.RunReport) error
}
