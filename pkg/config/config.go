package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config :
// Regroups every configuration option recognized by the core, as
// named in the environment surface of the specification. Unlike the
// teacher repo which scatters a `parseConfiguration` function across
// every package, this single loader is shared by every component so
// that there is one place describing the runtime-tunable behavior of
// the server.
//
// The `RoundWindow` defines the deadline given to participants of a
// combat encounter to submit an action before the round auto-resolves.
//
// The `DeadlinePollInterval` defines how often the scheduler sweeps
// encounters looking for an expired deadline.
//
// The `SalvageTTL` defines how long a salvage container survives in a
// sector before the sweeper removes it.
//
// The `CorporationCreationCost` defines the credits required to found
// a corporation.
//
// The `FighterPrice` and `WarpPowerPrice` define the per-unit prices
// charged in the banking sector.
//
// The `BankingSectorID` names the sector where bank deposits/withdraws
// and fighter/warp-power purchases are allowed.
//
// The `AdminPassword` is validated against the `admin_password` field
// carried by admin-only RPCs.
//
// The `MaxParticipantsPerSectorCombat` caps the number of combatants
// that may be merged into a single encounter.
//
// The `LockCount` sizes the named-mutex registry used by the lock
// manager, mirroring the teacher's `Concurrent.LockCount` option.
//
// The `Database` sub-configuration mirrors the teacher's connection
// options, reused to back the optional persisted event journal.
type Config struct {
	RoundWindow                    time.Duration
	DeadlinePollInterval           time.Duration
	SalvageTTL                     time.Duration
	CorporationCreationCost        int
	FighterPrice                   int
	WarpPowerPrice                 int
	BankingSectorID                string
	AdminPassword                  string
	MaxParticipantsPerSectorCombat int
	LockCount                      int
	ServerPort                     int

	Database DatabaseConfig
}

// DatabaseConfig :
// Connection parameters for the optional Postgres-backed event
// journal, mirroring the teacher's `pkg/db` configuration surface.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// Load :
// Parses the configuration file (if any was set up by the caller
// through `viper.SetConfigFile`/`viper.AddConfigPath` beforehand) and
// the environment, filling every non-set property with its default
// value.
//
// Returns the parsed configuration.
func Load() Config {
	cfg := Config{
		RoundWindow:                    15 * time.Second,
		DeadlinePollInterval:           1 * time.Second,
		SalvageTTL:                     10 * time.Minute,
		CorporationCreationCost:        25000,
		FighterPrice:                   5,
		WarpPowerPrice:                 2,
		BankingSectorID:                "0",
		AdminPassword:                  "",
		MaxParticipantsPerSectorCombat: 32,
		LockCount:                      64,
		ServerPort:                     8080,
		Database: DatabaseConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    5432,
			Name:    "",
			User:    "",
		},
	}

	if viper.IsSet("Combat.RoundWindowSeconds") {
		cfg.RoundWindow = time.Duration(viper.GetInt("Combat.RoundWindowSeconds")) * time.Second
	}
	if viper.IsSet("Combat.DeadlinePollIntervalSeconds") {
		cfg.DeadlinePollInterval = time.Duration(viper.GetInt("Combat.DeadlinePollIntervalSeconds")) * time.Second
	}
	if viper.IsSet("Salvage.TTLSeconds") {
		cfg.SalvageTTL = time.Duration(viper.GetInt("Salvage.TTLSeconds")) * time.Second
	}
	if viper.IsSet("Corporation.CreationCost") {
		cfg.CorporationCreationCost = viper.GetInt("Corporation.CreationCost")
	}
	if viper.IsSet("Economy.FighterPrice") {
		cfg.FighterPrice = viper.GetInt("Economy.FighterPrice")
	}
	if viper.IsSet("Economy.WarpPowerPrice") {
		cfg.WarpPowerPrice = viper.GetInt("Economy.WarpPowerPrice")
	}
	if viper.IsSet("Economy.BankingSectorID") {
		cfg.BankingSectorID = viper.GetString("Economy.BankingSectorID")
	}
	if viper.IsSet("Admin.Password") {
		cfg.AdminPassword = viper.GetString("Admin.Password")
	}
	if viper.IsSet("Combat.MaxParticipantsPerSectorCombat") {
		cfg.MaxParticipantsPerSectorCombat = viper.GetInt("Combat.MaxParticipantsPerSectorCombat")
	}
	if viper.IsSet("Concurrent.LockCount") {
		cfg.LockCount = viper.GetInt("Concurrent.LockCount")
	}
	if viper.IsSet("Server.Port") {
		cfg.ServerPort = viper.GetInt("Server.Port")
	}

	if viper.IsSet("Database.Enabled") {
		cfg.Database.Enabled = viper.GetBool("Database.Enabled")
	}
	if viper.IsSet("Database.Host") {
		cfg.Database.Host = viper.GetString("Database.Host")
	}
	if viper.IsSet("Database.Port") {
		cfg.Database.Port = viper.GetInt("Database.Port")
	}
	if viper.IsSet("Database.Name") {
		cfg.Database.Name = viper.GetString("Database.Name")
	}
	if viper.IsSet("Database.User") {
		cfg.Database.User = viper.GetString("Database.User")
	}
	if viper.IsSet("Database.Password") {
		cfg.Database.Password = viper.GetString("Database.Password")
	}

	return cfg
}
