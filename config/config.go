package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del engine.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Leagues   map[string]bool `yaml:"leagues"` // liga → habilitada
	Consensus ConsensusConfig `yaml:"consensus"`
	Venues    VenuesConfig    `yaml:"venues"`
	Storage   StorageConfig   `yaml:"storage"`
	Model     ModelConfig     `yaml:"model"`
	Log       LogConfig       `yaml:"log"`
}

// EngineConfig controla la detección y el sizing.
type EngineConfig struct {
	IntervalMinutes     int     `yaml:"interval_minutes"`
	Alpha               float64 `yaml:"alpha"`                 // margen mínimo sobre la probabilidad implícita
	WindowHours         float64 `yaml:"window_hours"`          // solo eventos que empiezan dentro de esta ventana
	InitialBankroll     float64 `yaml:"initial_bankroll"`
	MinConsensusSources int     `yaml:"min_consensus_sources"` // filas con menos sources se descartan
	MatchThreshold      float64 `yaml:"match_threshold"`       // similitud mínima de nombres para emparejar
	TimeToleranceMin    int     `yaml:"time_tolerance_minutes"`
	StakeMultiplier     float64 `yaml:"stake_multiplier"` // 1.0 Kelly completo, 0.5 half-Kelly
	CollectWorkers      int     `yaml:"collect_workers"`
}

// ConsensusConfig contiene el acceso al agregador de consenso.
type ConsensusConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"` // normalmente via CONSENSUS_API_KEY
}

// VenuesConfig apunta al directorio de drops de las venues.
type VenuesConfig struct {
	Dir string `yaml:"dir"`
}

// StorageConfig controla dónde se persiste el ledger.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ModelConfig apunta al modelo de calibración.
type ModelConfig struct {
	Path string `yaml:"path"` // JSON del calibrador piecewise-linear
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ScanInterval devuelve el intervalo entre runs como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Engine.IntervalMinutes) * time.Minute
}

// Window devuelve la ventana de eventos como time.Duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Engine.WindowHours * float64(time.Hour))
}

// TimeTolerance devuelve la tolerancia de horarios al emparejar.
func (c *Config) TimeTolerance() time.Duration {
	return time.Duration(c.Engine.TimeToleranceMin) * time.Minute
}

// EnabledLeagues devuelve las ligas habilitadas en orden estable.
func (c *Config) EnabledLeagues() []string {
	var leagues []string
	for name, enabled := range c.Leagues {
		if enabled {
			leagues = append(leagues, name)
		}
	}
	sort.Strings(leagues)
	return leagues
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONSENSUS_API_KEY"); v != "" {
		cfg.Consensus.APIKey = v
	}
	if v := os.Getenv("CONSENSUS_BASE_URL"); v != "" {
		cfg.Consensus.BaseURL = v
	}
	if v := os.Getenv("LEDGER_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Engine.IntervalMinutes <= 0 {
		cfg.Engine.IntervalMinutes = 15
	}
	if cfg.Engine.Alpha <= 0 {
		cfg.Engine.Alpha = 0.05
	}
	if cfg.Engine.WindowHours <= 0 {
		cfg.Engine.WindowHours = 3
	}
	if cfg.Engine.InitialBankroll <= 0 {
		cfg.Engine.InitialBankroll = 500
	}
	if cfg.Engine.MinConsensusSources <= 0 {
		cfg.Engine.MinConsensusSources = 3
	}
	if cfg.Engine.MatchThreshold <= 0 {
		cfg.Engine.MatchThreshold = 0.85
	}
	if cfg.Engine.TimeToleranceMin <= 0 {
		cfg.Engine.TimeToleranceMin = 5
	}
	if cfg.Engine.StakeMultiplier <= 0 {
		cfg.Engine.StakeMultiplier = 1.0
	}
	if cfg.Engine.CollectWorkers <= 0 {
		cfg.Engine.CollectWorkers = 4
	}
	if len(cfg.Leagues) == 0 {
		// Flags de temporada del deployment original.
		cfg.Leagues = map[string]bool{
			"NBA":              true,
			"NFL":              true,
			"MLB":              false,
			"NHL":              true,
			"NCAAB":            true,
			"NCAAF":            false,
			"EPL":              true,
			"LaLiga":           true,
			"SerieA":           true,
			"Champions_League": false,
			"Ligue1":           true,
			"Bundesliga":       true,
			"MLS":              false,
		}
	}
	if cfg.Venues.Dir == "" {
		cfg.Venues.Dir = "venues"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "edgehound.db"
	}
	if cfg.Model.Path == "" {
		cfg.Model.Path = "model.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
