package wager

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when a configuration does not pass validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownInstrument is returned when an instrument id is not configured.
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// Instrument describes one tracked asset or benchmark and how its raw series is normalized.
type Instrument struct {
	ID           string   `yaml:"id" validate:"required,alphanum"`
	Name         string   `yaml:"name" validate:"required"`
	Color        string   `yaml:"color" validate:"omitempty,hexcolor"`
	Kind         Kind     `yaml:"kind"`
	AnnualSpread float64  `yaml:"annual_spread" validate:"gte=0,lt=1"`
	Sources      []string `yaml:"sources" validate:"required,min=1,dive,required"`
	Primary      bool     `yaml:"primary"`
}

// Normalization returns the normalization parameters of this instrument for a given configuration.
func (i Instrument) Normalization(cfg Config) Normalization {
	return Normalization{
		Kind:              i.Kind,
		InitialInvestment: cfg.InitialInvestment,
		AnnualSpread:      i.AnnualSpread,
		Start:             cfg.StartDate,
	}
}

// Config is the immutable configuration of a wager: the amount and start date
// of the hypothetical investments and the table of tracked instruments.
type Config struct {
	InitialInvestment float64       `yaml:"initial_investment" validate:"gt=0"`
	StartDate         Date          `yaml:"start_date"`
	Currency          string        `yaml:"currency" validate:"required,len=3"`
	Instruments       []Instrument  `yaml:"instruments" validate:"min=2,dive"`
	HTTPAddr          string        `yaml:"http_addr" validate:"omitempty,hostname_port"`
	RedisAddr         string        `yaml:"redis_addr" validate:"omitempty,hostname_port"`
	CacheTTL          time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

// DefaultConfig returns the configuration of the Bitcoin versus Ibovespa wager.
func DefaultConfig() Config {
	return Config{
		InitialInvestment: 100000,
		StartDate:         NewDate(2024, time.June, 24),
		Currency:          "BRL",
		HTTPAddr:          ":8080",
		CacheTTL:          time.Hour,
		Instruments: []Instrument{
			{ID: "bitcoin", Name: "Bitcoin", Color: "#FFFFFF", Kind: PriceRatio, Primary: true,
				Sources: []string{"binance:BTCBRL", "coingecko:bitcoin", "yahoo-cross:BTC-USD*BRL=X"}},
			{ID: "ibovespa", Name: "Ibovespa", Color: "#3B82F6", Kind: PriceRatio, Primary: true,
				Sources: []string{"yahoo:^BVSP"}},
			{ID: "cdi", Name: "CDI", Color: "#D97706", Kind: DailyRate, Sources: []string{"bcb:12"}},
			{ID: "poupanca", Name: "Poupança", Color: "#7C3AED", Kind: MonthlyRate, Sources: []string{"bcb:25"}},
			{ID: "ifix", Name: "IFIX", Color: "#0F766E", Kind: PriceRatio, Sources: []string{"yahoo:IFIX.SA"}},
			{ID: "ipca", Name: "IPCA", Color: "#C2410C", Kind: MonthlyRate, Sources: []string{"bcb:433"}},
			{ID: "ipcaPlus5", Name: "IPCA + 5%", Color: "#DC2626", Kind: MonthlyRate, AnnualSpread: 0.05,
				Sources: []string{"bcb:433"}},
			{ID: "dolarPlus4", Name: "Dólar + 4%", Color: "#059669", Kind: FXLinearSpread, AnnualSpread: 0.04,
				Sources: []string{"bcb:1"}},
		},
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig, then
// applies environment overrides and validates the result.
//
// An empty path only applies the environment to the default configuration.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from WAGER_* environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	if v, ok := lookup("WAGER_INITIAL_INVESTMENT"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("WAGER_INITIAL_INVESTMENT: %w", err))
		}
		c.InitialInvestment = f
	}
	if v, ok := lookup("WAGER_START_DATE"); ok {
		on, err := ParseDate(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WAGER_START_DATE: %w", err))
		}
		c.StartDate = on
	}
	if v, ok := lookup("WAGER_HTTP_ADDR"); ok {
		c.HTTPAddr = v
	}
	if v, ok := lookup("WAGER_REDIS_ADDR"); ok {
		c.RedisAddr = v
	}
	if v, ok := lookup("WAGER_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WAGER_CACHE_TTL: %w", err))
		}
		c.CacheTTL = d
	}
	return errors.Join(errs...)
}

// reservedIDs are the keys the dashboard payload and its chart rows use themselves.
var reservedIDs = []string{"benchmarks", "chartData", "tableData", "lastUpdate", "date"}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration. All problems are reported at once, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}
	if c.StartDate.IsZero() {
		errs = append(errs, errors.New("start date is required"))
	}
	seen := make(map[string]bool, len(c.Instruments))
	primaries := 0
	for _, in := range c.Instruments {
		if seen[in.ID] {
			errs = append(errs, fmt.Errorf("duplicate instrument %q", in.ID))
		}
		seen[in.ID] = true
		if slices.Contains(reservedIDs, in.ID) {
			errs = append(errs, fmt.Errorf("instrument id %q is reserved", in.ID))
		}
		if in.Primary {
			primaries++
		}
	}
	if primaries != 2 {
		errs = append(errs, fmt.Errorf("want exactly 2 primary instruments, got %d", primaries))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Instrument returns the instrument with the given id.
func (c Config) Instrument(id string) (Instrument, error) {
	for _, in := range c.Instruments {
		if in.ID == id {
			return in, nil
		}
	}
	return Instrument{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, id)
}

// Primaries returns the two contest entrants, in configuration order.
func (c Config) Primaries() []Instrument {
	var primaries []Instrument
	for _, in := range c.Instruments {
		if in.Primary {
			primaries = append(primaries, in)
		}
	}
	return primaries
}

// UnmarshalYAML reads a date from a YAML scalar, using the same rules as ParseDate.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", value.Line)
	}
	on, err := ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = on
	return nil
}

func (d Date) MarshalYAML() (any, error) { return d.String(), nil }

// UnmarshalYAML reads a kind from its name.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	kind, err := ParseKind(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = kind
	return nil
}

func (k Kind) MarshalYAML() (any, error) { return k.String(), nil }
