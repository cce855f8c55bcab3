package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spacecore/internal/combat"
	"spacecore/internal/corp"
	"spacecore/internal/dispatch"
	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/transport"
	"spacecore/internal/upkeep"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/db"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

var configFile string

// newRootCmd :
// Builds the `spacecored` command, mirroring the teacher's flag set
// (a single optional configuration file name) while fronting it with
// `cobra` instead of the bare `flag` package.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spacecored",
		Short: "Runs the spacecore persistent world server core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "configuration file to customize app behavior (development/production)")
	return cmd
}

func loadConfiguration() config.Config {
	viper.SetEnvPrefix("ENV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigName(configFile)
		viper.AddConfigPath(".")
		viper.AddConfigPath("data/config")
		if err := viper.ReadInConfig(); err != nil {
			fmt.Printf("no configuration file \"%s\" found, running on defaults (%v)\n", configFile, err)
		}
	}

	return config.Load()
}

func run() (err error) {
	cfg := loadConfiguration()
	log := logger.NewStdLogger(uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			log.Trace(logger.Fatal, "main", fmt.Sprintf("server crashed: %v (stack: %s)", r, debug.Stack()))
		}
		log.Release()
	}()

	database := db.NewPool(cfg.Database, log)

	repo := world.New()
	seedUniverse(repo, cfg)

	index := sectorindex.New()
	hub := events.NewHub()
	bus := events.NewBus(hub)
	journal := events.NewJournal(database, log)
	bus.SetJournal(journal)

	locks := locker.NewLockManager(cfg.LockCount, log)
	combatMgr := combat.New(repo, index, bus, locks, cfg, log)
	corpMgr := corp.New(repo, bus, locks, cfg, log)

	catalog := defaultShipCatalog()
	dis := dispatch.New(repo, index, bus, hub, locks, combatMgr, corpMgr, catalog, journal, cfg, log)

	combatScheduler := combat.NewScheduler(combatMgr, cfg, log)
	if err := combatScheduler.Start(); err != nil {
		return fmt.Errorf("starting combat scheduler: %w", err)
	}
	defer combatScheduler.Stop()

	salvageScheduler := upkeep.NewSalvageScheduler(repo, index, bus, cfg, log)
	if err := salvageScheduler.Start(); err != nil {
		return fmt.Errorf("starting salvage scheduler: %w", err)
	}
	defer salvageScheduler.Stop()

	server := transport.NewServer(cfg.ServerPort, dis, log)
	if err := server.Serve(); err != nil {
		return fmt.Errorf("listening on port %d: %w", cfg.ServerPort, err)
	}
	return nil
}

// seedUniverse :
// Populates a minimal default sector topology so the server has
// somewhere for a first `join` to land. A full deployment would
// instead hydrate `WorldRepository` from the external universe
// generator named out of scope in §1; this stands in for it the same
// way `ShipCatalog` stands in for the external ship-stat table.
func seedUniverse(repo *world.Repository, cfg config.Config) {
	bank := cfg.BankingSectorID
	ring := []string{bank, "sector-1", "sector-2", "sector-3"}

	for i, id := range ring {
		adjacent := []string{ring[(i+len(ring)-1)%len(ring)], ring[(i+1)%len(ring)]}
		repo.SeedSector(model.Sector{SectorID: id, Adjacent: adjacent})
	}

	repo.SavePort(model.Port{
		SectorID:    "sector-1",
		Code:        "SSS",
		Stock:       map[string]int{"ore": 500, "organics": 500, "equipment": 500},
		MaxCapacity: map[string]int{"ore": 1000, "organics": 1000, "equipment": 1000},
	})
}

// defaultShipCatalog :
// Stands in for the external ship-stat collaborator (§1 Non-goals):
// just enough entries to let `join` and `ship_purchase` exercise
// every code path.
func defaultShipCatalog() dispatch.ShipCatalog {
	return dispatch.ShipCatalog{
		"starter_scout": model.ShipTypeSpec{
			Name: "starter_scout", MaxFighters: 20, MaxShields: 20,
			CargoCapacity: 20, WarpPowerCapacity: 50, TurnsPerWarp: 5,
			Price: 0, TradeInValue: 0,
		},
		"freighter": model.ShipTypeSpec{
			Name: "freighter", MaxFighters: 40, MaxShields: 40,
			CargoCapacity: 150, WarpPowerCapacity: 150, TurnsPerWarp: 8,
			Price: 8000, TradeInValue: 3000,
		},
		"corvette": model.ShipTypeSpec{
			Name: "corvette", MaxFighters: 120, MaxShields: 80,
			CargoCapacity: 40, WarpPowerCapacity: 200, TurnsPerWarp: 6,
			Price: 15000, TradeInValue: 6000,
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		panic(err)
	}
}
