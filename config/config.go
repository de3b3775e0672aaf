package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"commission-fees/app"
	"commission-fees/domain"
	"commission-fees/exchange"
	"commission-fees/shared"
)

const (
	EnvPrefix = "COMMISSION"

	// MaxPrecision bounds the configurable decimal places of a currency.
	MaxPrecision = 18
)

// Config holds the rate table and fee policy for a run.
type Config struct {
	BaseCurrency shared.Currency
	Rates        map[shared.Currency]decimal.Decimal
	Precision    domain.PrecisionTable
	Policy       app.FeePolicy
	// WeeklyAllowance is in minor units of the base currency.
	WeeklyAllowance int64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_currency", "EUR")
	v.SetDefault("rates", map[string]string{
		"EUR": "1",
		"USD": "1.1497",
		"JPY": "129.53",
	})
	v.SetDefault("precision", map[string]any{"JPY": 0})
	v.SetDefault("fees.cash_in_percent", "0.03")
	v.SetDefault("fees.cash_in_max", 50000)
	v.SetDefault("fees.cash_out_percent", "0.3")
	v.SetDefault("fees.cash_out_legal_min", 5000)
	v.SetDefault("discount.weekly_operations", 3)
	v.SetDefault("discount.weekly_amount", 100000)
}

// LoadDotEnv loads a .env file into the environment if one exists.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("No %s file found, relying on environment variables", path)
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from defaults, an optional config file and
// COMMISSION_ prefixed environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		log.Printf("Loaded configuration from %s", v.ConfigFileUsed())
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	base, err := shared.ParseCurrency(v.GetString("base_currency"))
	if err != nil {
		return nil, fmt.Errorf("base_currency: %w", err)
	}

	rawRates := make(map[string]string)
	for code, raw := range v.GetStringMapString("rates") {
		rawRates[strings.ToLower(code)] = raw
	}
	for code, raw := range envMapOverrides("rates") {
		rawRates[code] = raw
	}

	rates := make(map[shared.Currency]decimal.Decimal)
	for code, raw := range rawRates {
		cur, err := shared.ParseCurrency(code)
		if err != nil {
			return nil, fmt.Errorf("rates: %w", err)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("rates.%s: invalid rate %q: %w", cur, raw, err)
		}
		rates[cur] = rate
	}
	if _, ok := rates[base]; !ok {
		return nil, fmt.Errorf("%w: base currency %s missing from rates", domain.ErrUnknownCurrency, base)
	}

	rawPrecision := make(map[string]any)
	for code, raw := range v.GetStringMap("precision") {
		rawPrecision[strings.ToLower(code)] = raw
	}
	for code, raw := range envMapOverrides("precision") {
		rawPrecision[code] = raw
	}

	precision := make(domain.PrecisionTable)
	for code, raw := range rawPrecision {
		cur, err := shared.ParseCurrency(code)
		if err != nil {
			return nil, fmt.Errorf("precision: %w", err)
		}
		places, err := toPrecision(raw)
		if err != nil {
			return nil, fmt.Errorf("precision.%s: %w", cur, err)
		}
		precision[cur] = places
	}

	cashInPercent, err := decimal.NewFromString(v.GetString("fees.cash_in_percent"))
	if err != nil {
		return nil, fmt.Errorf("fees.cash_in_percent: %w", err)
	}
	cashOutPercent, err := decimal.NewFromString(v.GetString("fees.cash_out_percent"))
	if err != nil {
		return nil, fmt.Errorf("fees.cash_out_percent: %w", err)
	}

	cfg := &Config{
		BaseCurrency: base,
		Rates:        rates,
		Precision:    precision,
		Policy: app.FeePolicy{
			CashInPercent:        cashInPercent,
			CashInMax:            v.GetInt64("fees.cash_in_max"),
			CashOutPercent:       cashOutPercent,
			CashOutLegalMin:      v.GetInt64("fees.cash_out_legal_min"),
			WeeklyFreeOperations: v.GetInt("discount.weekly_operations"),
		},
		WeeklyAllowance: v.GetInt64("discount.weekly_amount"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Policy.CashInPercent.IsNegative() || c.Policy.CashOutPercent.IsNegative() {
		return domain.NewDomainError("fee percentages cannot be negative")
	}
	if c.Policy.CashInMax < 0 || c.Policy.CashOutLegalMin < 0 {
		return domain.NewDomainError("fee limits cannot be negative")
	}
	if c.Policy.WeeklyFreeOperations < 0 {
		return domain.NewDomainError("discount.weekly_operations cannot be negative")
	}
	if c.WeeklyAllowance < 0 {
		return domain.NewDomainError("discount.weekly_amount cannot be negative")
	}
	return nil
}

// RateTable builds the immutable rate table described by the config.
func (c *Config) RateTable() (*exchange.FixedRates, error) {
	return exchange.NewFixedRates(c.BaseCurrency, c.Rates)
}

func (c *Config) BatchOptions() app.BatchOptions {
	return app.BatchOptions{
		Policy:          c.Policy,
		Precision:       c.Precision,
		WeeklyAllowance: c.WeeklyAllowance,
	}
}

// envMapOverrides collects COMMISSION_<SECTION>_<CUR> variables. Viper only
// resolves the environment for the map key itself, not for its entries.
// Returned keys are lower case, matching what viper yields for the map.
func envMapOverrides(section string) map[string]string {
	prefix := EnvPrefix + "_" + strings.ToUpper(section) + "_"
	overrides := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		overrides[strings.ToLower(strings.TrimPrefix(key, prefix))] = value
	}
	return overrides
}

// toPrecision accepts a whole number of decimal places in [0, MaxPrecision].
func toPrecision(raw any) (int32, error) {
	var places decimal.Decimal
	switch n := raw.(type) {
	case int:
		places = decimal.NewFromInt(int64(n))
	case int64:
		places = decimal.NewFromInt(n)
	case float64:
		places = decimal.NewFromFloat(n)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("invalid decimal places %q: %w", n, err)
		}
		places = parsed
	default:
		return 0, fmt.Errorf("unsupported decimal places value %T", raw)
	}

	if !places.IsInteger() || places.IsNegative() || places.GreaterThan(decimal.NewFromInt(MaxPrecision)) {
		return 0, fmt.Errorf("decimal places must be a whole number between 0 and %d, got %s", MaxPrecision, places.String())
	}
	return int32(places.IntPart()), nil
}
