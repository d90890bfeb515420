package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/cjarmstrong/edgehound/internal/ports"
	"github.com/cjarmstrong/edgehound/internal/resolver"
)

// Config contiene la configuración del engine.
type Config struct {
	Leagues             []string // ligas habilitadas, en orden de escaneo
	ScanInterval        time.Duration
	Alpha               float64
	Window              time.Duration
	InitialBankroll     float64
	MinConsensusSources int
	StakeMultiplier     float64 // fracción de Kelly aplicada al stake en moneda
	CollectWorkers      int
	RunOnce             bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		ScanInterval:        15 * time.Minute,
		Alpha:               0.05,
		Window:              3 * time.Hour,
		InitialBankroll:     500,
		MinConsensusSources: 3,
		StakeMultiplier:     1.0,
		CollectWorkers:      4,
	}
}

// Engine es el orquestador del run: colecta por liga, resuelve entidades,
// detecta edges, calibra, dimensiona, filtra contra el ledger, notifica y
// persiste. Los fallos por liga se aíslan; los del ledger abortan el run.
type Engine struct {
	cfg       Config
	venues    []ports.VenueProvider
	consensus ports.ConsensusProvider
	ledger    ports.Ledger
	notifier  ports.Notifier
	resolver  *resolver.Resolver
	detector  Detector
	sizer     *Sizer
}

// New crea un Engine con todas las dependencias inyectadas.
func New(
	cfg Config,
	venues []ports.VenueProvider,
	consensus ports.ConsensusProvider,
	ledger ports.Ledger,
	notifier ports.Notifier,
	res *resolver.Resolver,
	calibrator ports.Calibrator,
) *Engine {
	if cfg.CollectWorkers <= 0 {
		cfg.CollectWorkers = DefaultConfig().CollectWorkers
	}
	return &Engine{
		cfg:       cfg,
		venues:    venues,
		consensus: consensus,
		ledger:    ledger,
		notifier:  notifier,
		resolver:  res,
		detector:  Detector{Alpha: cfg.Alpha, Window: cfg.Window},
		sizer:     NewSizer(calibrator, cfg.StakeMultiplier),
	}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Con cfg.RunOnce solo ejecuta un ciclo. Un run fallido no tumba el
// loop: el siguiente tick lo reintenta desde cero.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"interval", e.cfg.ScanInterval,
		"leagues", len(e.cfg.Leagues),
		"once", e.cfg.RunOnce,
	)

	if err := e.runCycle(ctx); err != nil {
		slog.Error("run failed", "err", err)
		if e.cfg.RunOnce {
			return err
		}
	}

	if e.cfg.RunOnce {
		return nil
	}

	ticker := time.NewTicker(e.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-ticker.C:
			if err := e.runCycle(ctx); err != nil {
				slog.Error("run failed", "err", err)
			}
		}
	}
}

func (e *Engine) runCycle(ctx context.Context) error {
	start := time.Now()
	report, err := e.RunOnce(ctx)
	if err != nil {
		return err
	}
	slog.Info("run complete",
		"run_id", report.RunID,
		"notified", report.Notified,
		"reminders", report.Reminders,
		"lines", report.LinesExamined,
		"failures", len(report.Failures),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// RunOnce ejecuta exactamente un run completo y devuelve su reporte.
//
// Orden del pipeline final: agregar oportunidades → calibrar y
// dimensionar → filtrar contra el ledger → notificar → persistir. El
// ledger se consulta ANTES de notificar: un crash entre notificar y
// persistir nunca puede producir una alerta duplicada en el siguiente
// run una vez persistida.
func (e *Engine) RunOnce(ctx context.Context) (domain.RunReport, error) {
	now := time.Now().UTC()
	report := domain.RunReport{
		RunID:     uuid.New().String(),
		StartedAt: now,
	}

	if err := e.ledger.AcquireRunLock(ctx, report.RunID); err != nil {
		return report, fmt.Errorf("engine.RunOnce: acquire run lock: %w", err)
	}
	defer func() {
		// el release tiene que sobrevivir a la cancelación del run: un
		// shutdown no puede dejar el lock colgado hasta el takeover stale
		if err := e.ledger.ReleaseRunLock(context.WithoutCancel(ctx), report.RunID); err != nil {
			slog.Warn("release run lock failed", "run_id", report.RunID, "err", err)
		}
	}()

	entries, err := e.ledger.ReadAll(ctx)
	if err != nil {
		return report, fmt.Errorf("engine.RunOnce: read ledger: %w", err)
	}
	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		known[entry.ID] = true
	}
	bankroll := domain.ReplayBankroll(e.cfg.InitialBankroll, entries)
	slog.Debug("bankroll replayed", "entries", len(entries), "bankroll", bankroll)

	var detected []domain.Opportunity
	for _, league := range e.cfg.Leagues {
		opps := e.scanLeague(ctx, league, now, &report)
		detected = append(detected, opps...)
	}

	fresh, reminders := e.splitByLedger(dedupeByID(detected), known)
	sized := e.sizer.Size(fresh, bankroll)

	if err := e.notifier.Notify(ctx, sized); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	if len(reminders) > 0 {
		if err := e.notifier.NotifyReminders(ctx, reminders); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	for _, opp := range sized {
		inserted, err := e.ledger.Insert(ctx, domain.LedgerEntry{
			Opportunity: opp,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return report, fmt.Errorf("engine.RunOnce: persist %s: %w", opp.ID, err)
		}
		if !inserted {
			// otro run la persistió entre nuestro ReadAll y aquí
			slog.Debug("opportunity already persisted", "id", opp.ID)
		}
	}

	report.Notified = len(sized)
	report.Reminders = len(reminders)
	report.FinishedAt = time.Now().UTC()

	if err := e.notifier.NotifyReport(ctx, report); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	return report, nil
}

// scanLeague corre las fases de colección, resolución y detección de una
// liga. Cualquier fallo de colección se registra en el reporte y la liga
// se salta — el run continúa con las demás.
func (e *Engine) scanLeague(ctx context.Context, league string, now time.Time, report *domain.RunReport) []domain.Opportunity {
	report.LeaguesScanned++
	log := slog.With("league", league)

	quotes, failures, dropped := e.collectVenues(ctx, league)
	report.Failures = append(report.Failures, failures...)
	report.QuotesDropped += dropped
	report.VenueQuotes += len(quotes)
	if len(quotes) == 0 {
		log.Info("no venue lines available")
		return nil
	}

	rows, err := e.consensus.FetchConsensus(ctx, league)
	if err != nil {
		log.Warn("consensus fetch failed", "err", err)
		report.Failures = append(report.Failures, domain.LeagueFailure{
			League: league,
			Stage:  domain.StageCollectConsensus,
			Err:    err,
		})
		return nil
	}
	report.ConsensusRows += len(rows)

	prices := domain.PivotConsensus(rows, e.cfg.MinConsensusSources)
	if len(prices) == 0 {
		log.Info("no trusted consensus prices")
		return nil
	}

	matches, unmatched := e.resolver.Resolve(prices, quotes)
	report.Unmatched += unmatched

	opps, examined := e.detector.Detect(now, matches)
	report.LinesExamined += examined

	log.Debug("league scanned",
		"quotes", len(quotes),
		"consensus", len(prices),
		"matched", len(matches),
		"unmatched", unmatched,
		"edges", len(opps),
	)
	return opps
}

// splitByLedger separa oportunidades nuevas de las ya registradas. Las
// registradas se devuelven como recordatorios: siguen siendo apuestas
// válidas pero no se alertan (ni se persisten) de nuevo.
func (e *Engine) splitByLedger(opps []domain.Opportunity, known map[string]bool) (fresh, reminders []domain.Opportunity) {
	for _, o := range opps {
		if known[o.ID] {
			reminders = append(reminders, o)
			continue
		}
		fresh = append(fresh, o)
	}
	return fresh, reminders
}

// dedupeByID colapsa detecciones del mismo id dentro del run (la misma
// apuesta vista en varias venues) quedándose con el mejor precio.
func dedupeByID(opps []domain.Opportunity) []domain.Opportunity {
	best := make(map[string]domain.Opportunity, len(opps))
	for _, o := range opps {
		if cur, ok := best[o.ID]; !ok || o.VenuePrice > cur.VenuePrice {
			best[o.ID] = o
		}
	}

	out := make([]domain.Opportunity, 0, len(best))
	for _, o := range best {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
