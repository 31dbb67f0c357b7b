// Package config loads tuning, preferences, and service settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Targeting holds the hand-tuned constants of target selection and the
// invisible fence.
type Targeting struct {
	StickyBonus         float64 `mapstructure:"stickyBonus"`     // subtracted for the current or parent's target
	GrudgeBonus         float64 `mapstructure:"grudgeBonus"`     // subtracted for foes that boarded our faction
	SearchRange         float64 `mapstructure:"searchRange"`     // default search radius
	DisabledPenalty     float64 `mapstructure:"disabledPenalty"` // added for disabled foes by non-plunderers
	PlunderTiebreak     float64 `mapstructure:"plunderTiebreak"` // added for disabled foes by plunderers
	UnarmedPenalty      float64 `mapstructure:"unarmedPenalty"`  // added for unarmed foes, doubled for non-plunderers
	HealthWeight        float64 `mapstructure:"healthWeight"`    // times shields+hull
	HeatWeight          float64 `mapstructure:"heatWeight"`      // times heat above the threshold
	HeatThreshold       float64 `mapstructure:"heatThreshold"`
	LongRangeThreshold  float64 `mapstructure:"longRangeThreshold"`  // min weapon range that widens the search
	LongRangeFactor     float64 `mapstructure:"longRangeFactor"`     // times max range when widened
	StrengthFactor      float64 `mapstructure:"strengthFactor"`      // foes stronger than this multiple are skipped
	ExtrapolationFrames float64 `mapstructure:"extrapolationFrames"` // distance is measured this far ahead
	RetargetPeriod      int     `mapstructure:"retargetPeriod"`      // ticks between target searches
	AttackRange         float64 `mapstructure:"attackRange"`         // escorts engage targets within this
	FenceMax            int     `mapstructure:"fenceMax"`
	FenceDecay          int     `mapstructure:"fenceDecay"`
	FenceGrowth         int     `mapstructure:"fenceGrowth"`
}

// Preferences are the player options the controller honours.
type Preferences struct {
	EscortsExpendAmmo      bool   `mapstructure:"escortsExpendAmmo"`
	EscortsFrugal          bool   `mapstructure:"escortsFrugal"`
	DamagedFightersRetreat bool   `mapstructure:"damagedFightersRetreat"`
	FightersTransferCargo  bool   `mapstructure:"fightersTransferCargo"`
	TurretsFocusFire       bool   `mapstructure:"turretsFocusFire"`
	AimTurretsWithMouse    bool   `mapstructure:"aimTurretsWithMouse"`
	AutomaticFiring        string `mapstructure:"automaticFiring"`  // all, guns only, turrets only, off
	AutoAim                string `mapstructure:"autoAim"`          // off, always, when firing
	TargetAsteroidBy       string `mapstructure:"targetAsteroidBy"` // proximity, value
	BoardingPriority       string `mapstructure:"boardingPriority"` // proximity, value, mixed
}

// Log configures zerolog output.
type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	Dir    string `mapstructure:"dir"`
}

// Store selects the gorm backend.
type Store struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

// Influx configures the condition sink.
type Influx struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

// Telemetry configures OpenTelemetry metrics.
type Telemetry struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"serviceName"`
}

// Config is the whole configuration tree.
type Config struct {
	Targeting   Targeting   `mapstructure:"targeting"`
	Preferences Preferences `mapstructure:"preferences"`
	Log         Log         `mapstructure:"log"`
	Store       Store       `mapstructure:"store"`
	Influx      Influx      `mapstructure:"influx"`
	Telemetry   Telemetry   `mapstructure:"telemetry"`
}

// DefaultTargeting returns the stock targeting constants.
func DefaultTargeting() Targeting {
	return Targeting{
		StickyBonus:         500,
		GrudgeBonus:         1000,
		SearchRange:         4000,
		DisabledPenalty:     5000,
		PlunderTiebreak:     2000,
		UnarmedPenalty:      1000,
		HealthWeight:        500,
		HeatWeight:          3000,
		HeatThreshold:       .9,
		LongRangeThreshold:  1000,
		LongRangeFactor:     1.5,
		StrengthFactor:      2,
		ExtrapolationFrames: 60,
		RetargetPeriod:      16,
		AttackRange:         2000,
		FenceMax:            600,
		FenceDecay:          4,
		FenceGrowth:         5,
	}
}

// DefaultPreferences returns the stock player preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		EscortsExpendAmmo: true,
		EscortsFrugal:     true,
		AutomaticFiring:   "all",
		AutoAim:           "off",
		TargetAsteroidBy:  "proximity",
		BoardingPriority:  "proximity",
	}
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Targeting:   DefaultTargeting(),
		Preferences: DefaultPreferences(),
		Log:         Log{Level: "info", Dir: "./logs"},
		Store:       Store{Driver: "sqlite", DSN: "shipsense.db"},
		Influx:      Influx{URL: "http://localhost:8086", Org: "shipsense", Bucket: "conditions"},
		Telemetry:   Telemetry{ServiceName: "ship-sense"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("targeting.stickyBonus", d.Targeting.StickyBonus)
	v.SetDefault("targeting.grudgeBonus", d.Targeting.GrudgeBonus)
	v.SetDefault("targeting.searchRange", d.Targeting.SearchRange)
	v.SetDefault("targeting.disabledPenalty", d.Targeting.DisabledPenalty)
	v.SetDefault("targeting.plunderTiebreak", d.Targeting.PlunderTiebreak)
	v.SetDefault("targeting.unarmedPenalty", d.Targeting.UnarmedPenalty)
	v.SetDefault("targeting.healthWeight", d.Targeting.HealthWeight)
	v.SetDefault("targeting.heatWeight", d.Targeting.HeatWeight)
	v.SetDefault("targeting.heatThreshold", d.Targeting.HeatThreshold)
	v.SetDefault("targeting.longRangeThreshold", d.Targeting.LongRangeThreshold)
	v.SetDefault("targeting.longRangeFactor", d.Targeting.LongRangeFactor)
	v.SetDefault("targeting.strengthFactor", d.Targeting.StrengthFactor)
	v.SetDefault("targeting.extrapolationFrames", d.Targeting.ExtrapolationFrames)
	v.SetDefault("targeting.retargetPeriod", d.Targeting.RetargetPeriod)
	v.SetDefault("targeting.attackRange", d.Targeting.AttackRange)
	v.SetDefault("targeting.fenceMax", d.Targeting.FenceMax)
	v.SetDefault("targeting.fenceDecay", d.Targeting.FenceDecay)
	v.SetDefault("targeting.fenceGrowth", d.Targeting.FenceGrowth)

	v.SetDefault("preferences.escortsExpendAmmo", d.Preferences.EscortsExpendAmmo)
	v.SetDefault("preferences.escortsFrugal", d.Preferences.EscortsFrugal)
	v.SetDefault("preferences.damagedFightersRetreat", d.Preferences.DamagedFightersRetreat)
	v.SetDefault("preferences.fightersTransferCargo", d.Preferences.FightersTransferCargo)
	v.SetDefault("preferences.turretsFocusFire", d.Preferences.TurretsFocusFire)
	v.SetDefault("preferences.aimTurretsWithMouse", d.Preferences.AimTurretsWithMouse)
	v.SetDefault("preferences.automaticFiring", d.Preferences.AutomaticFiring)
	v.SetDefault("preferences.autoAim", d.Preferences.AutoAim)
	v.SetDefault("preferences.targetAsteroidBy", d.Preferences.TargetAsteroidBy)
	v.SetDefault("preferences.boardingPriority", d.Preferences.BoardingPriority)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
	v.SetDefault("log.dir", d.Log.Dir)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)

	v.SetDefault("influx.enabled", d.Influx.Enabled)
	v.SetDefault("influx.url", d.Influx.URL)
	v.SetDefault("influx.token", d.Influx.Token)
	v.SetDefault("influx.org", d.Influx.Org)
	v.SetDefault("influx.bucket", d.Influx.Bucket)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.serviceName", d.Telemetry.ServiceName)
}

// Load reads the configuration file at path over the defaults. An empty path
// loads defaults and environment overrides only. Environment variables use
// the SHIPSENSE_ prefix with dots replaced by underscores.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHIPSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the controller cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Targeting.RetargetPeriod <= 0 {
		errs = append(errs, errors.New("targeting.retargetPeriod must be positive"))
	}
	if c.Targeting.FenceMax <= 0 || c.Targeting.FenceDecay < 0 || c.Targeting.FenceGrowth < 0 {
		errs = append(errs, errors.New("targeting fence values must be non-negative with a positive max"))
	}
	if _, err := ParseFireMode(c.Preferences.AutomaticFiring); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseAutoAim(c.Preferences.AutoAim); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseBoardingPriority(c.Preferences.BoardingPriority); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseAsteroidPriority(c.Preferences.TargetAsteroidBy); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not sqlite or postgres", c.Store.Driver))
	}
	return errors.Join(errs...)
}
