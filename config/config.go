package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"caxcast/internal/domain"
)

// Config es la configuración completa de la herramienta.
type Config struct {
	Funnel   FunnelConfig   `yaml:"funnel"`
	Forecast ForecastConfig `yaml:"forecast"`
	Sheet    SheetConfig    `yaml:"sheet"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// FunnelConfig define las etapas del pipeline y sus parámetros.
type FunnelConfig struct {
	// Stages en orden; la última es la etapa terminal (onboarded).
	Stages []string `yaml:"stages"`
	// Params por etapa no terminal. Etapas sin entrada usan los defaults
	// del dominio (0.5 / 2 días hábiles).
	Params map[string]StageParams `yaml:"params"`
}

// StageParams son los parámetros tuneables de una etapa.
type StageParams struct {
	ConversionRate float64 `yaml:"conversion_rate"` // probabilidad [0,1] de avanzar
	LeadTimeDays   int     `yaml:"lead_time_days"`  // días hábiles en la etapa
}

// ForecastConfig controla la corrida del motor.
type ForecastConfig struct {
	HorizonDays int     `yaml:"horizon_days"`
	UnitValue   float64 `yaml:"unit_value"` // receita lineal por conversión, para escenarios
	Workers     int     `yaml:"workers"`    // 0 = NumCPU
}

// SheetConfig apunta al export CSV de la planilla.
type SheetConfig struct {
	// URLs en orden de preferencia; la primera que responda gana.
	URLs           []string `yaml:"urls"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// StorageConfig controla el cache de snapshots.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
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

// Default devuelve la configuración completa sin leer archivo alguno.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// ForecastDomain traduce la configuración al value object inmutable que
// consume el motor.
func (c *Config) ForecastDomain() domain.ForecastConfig {
	stages := make(map[string]domain.StageConfig, len(c.Funnel.Params))
	for stage, p := range c.Funnel.Params {
		stages[stage] = domain.StageConfig{
			ConversionRate: p.ConversionRate,
			LeadTimeDays:   p.LeadTimeDays,
		}
	}
	return domain.ForecastConfig{Funnel: c.Funnel.Stages, Stages: stages}
}

// SheetTimeout devuelve el timeout del fetch como time.Duration.
func (c *Config) SheetTimeout() time.Duration {
	return time.Duration(c.Sheet.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SHEET_URL"); v != "" {
		// Una URL por env pasa al frente de la lista de fallback.
		cfg.Sheet.URLs = append([]string{v}, cfg.Sheet.URLs...)
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if len(cfg.Funnel.Stages) == 0 {
		cfg.Funnel.Stages = domain.DefaultFunnel()
	}
	if len(cfg.Funnel.Params) == 0 {
		cfg.Funnel.Params = map[string]StageParams{
			"SAL":       {ConversionRate: 0.45, LeadTimeDays: 3},
			"SQL":       {ConversionRate: 0.55, LeadTimeDays: 4},
			"OPP":       {ConversionRate: 0.65, LeadTimeDays: 5},
			"BC":        {ConversionRate: 0.75, LeadTimeDays: 4},
			"ONB_AGEND": {ConversionRate: 0.90, LeadTimeDays: 2},
		}
	}
	if cfg.Forecast.HorizonDays <= 0 {
		cfg.Forecast.HorizonDays = 15
	}
	if cfg.Forecast.UnitValue <= 0 {
		cfg.Forecast.UnitValue = 12_000 // ticket medio por cliente onboarded
	}
	if cfg.Sheet.TimeoutSeconds <= 0 {
		cfg.Sheet.TimeoutSeconds = 15
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "caxcast.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
