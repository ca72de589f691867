// Command veggiechain runs the farm-to-market supply chain game:
// interactively on the terminal, or as an HTTP API for a browser
// frontend.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/croplab/veggiechain/internal/api"
	"github.com/croplab/veggiechain/internal/config"
	"github.com/croplab/veggiechain/internal/persistence"
	"github.com/croplab/veggiechain/internal/session"
	"github.com/croplab/veggiechain/internal/sim"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML run configuration")
		serve      = flag.Bool("serve", false, "serve the HTTP API instead of the terminal game")
		port       = flag.Int("port", 8080, "HTTP API port (with -serve)")
		dbPath     = flag.String("record", "", "record turns to a SQLite database at this path")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg := config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		slog.Info("config loaded", "path", *configPath, "weather", cfg.Weather, "random_demand", cfg.RandomDemand)
	}

	sess, err := session.New(cfg.SessionOptions())
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	var db *persistence.DB
	if *dbPath != "" {
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.BeginRun(sess.ID(), sess.Current().Parameters, sess.WeatherEnabled()); err != nil {
			slog.Error("failed to register run", "error", err)
			os.Exit(1)
		}
	}

	if *serve {
		server := &api.Server{Session: sess, DB: db, Port: *port}
		server.Start()

		fmt.Printf("VeggieChain API: http://localhost:%d/api/v1/status\n", *port)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		return
	}

	runTerminal(sess, db)
}

// runTerminal drives the game from stdin: one prompt cycle per turn.
func runTerminal(sess *session.Session, db *persistence.DB) {
	fmt.Println("VeggieChain: farm to market, one day at a time.")
	fmt.Println("Commands: numbers to play, 'reset' to start over, 'quit' to leave.")

	// The first run records under the session's own id (registered in
	// main); each reset rotates to a fresh run id.
	runID := sess.ID()

	in := bufio.NewScanner(os.Stdin)
	for {
		cur := sess.Current()
		printState(cur.State)

		d, action := promptDecisions(in, cur.Decisions)
		switch action {
		case actionQuit:
			flushRun(db, runID, sess)
			fmt.Println("Goodbye.")
			return
		case actionReset:
			flushRun(db, runID, sess)
			if db != nil {
				runID = uuid.New()
				if err := db.BeginRun(runID, sess.Current().Parameters, sess.WeatherEnabled()); err != nil {
					slog.Error("begin run failed", "error", err, "run", runID)
				}
			}
			sess.Reset()
			fmt.Println("Back to day 0.")
			continue
		}

		if err := sess.SetDecisions(d.PlantArea, d.ShipQty, d.Price, d.DemandMarket); err != nil {
			fmt.Printf("Invalid decisions: %v\n", err)
			continue
		}
		next := sess.Advance()

		if db != nil {
			if err := db.RecordTurn(runID, sess.Current()); err != nil {
				slog.Error("record turn failed", "error", err, "turn", next.Turn)
			}
		}

		printResults(next)
	}
}

// flushRun writes the session's full trail so a run survives even if
// an individual RecordTurn failed along the way.
func flushRun(db *persistence.DB, runID uuid.UUID, sess *session.Session) {
	if db == nil {
		return
	}
	if err := db.RecordHistory(runID, sess.History()); err != nil {
		slog.Error("flush run history failed", "error", err, "run", runID)
	}
}

type promptAction int

const (
	actionPlay promptAction = iota
	actionReset
	actionQuit
)

// promptDecisions collects the four decisions, keeping the previous
// value on empty input.
func promptDecisions(in *bufio.Scanner, prev sim.Decisions) (sim.Decisions, promptAction) {
	d := prev
	fields := []struct {
		label string
		value *float64
	}{
		{"Plant area", &d.PlantArea},
		{"Ship quantity", &d.ShipQty},
		{"Price per unit", &d.Price},
		{"Market demand", &d.DemandMarket},
	}

	for _, f := range fields {
		for {
			fmt.Printf("%s [%s]: ", f.label, humanize.Ftoa(*f.value))
			if !in.Scan() {
				return d, actionQuit
			}
			text := strings.TrimSpace(in.Text())
			switch strings.ToLower(text) {
			case "":
				// keep previous
			case "quit", "q", "exit":
				return d, actionQuit
			case "reset":
				return d, actionReset
			default:
				v, err := strconv.ParseFloat(text, 64)
				if err != nil {
					fmt.Println("Please enter a number.")
					continue
				}
				*f.value = v
			}
			break
		}
	}
	return d, actionPlay
}

func printState(s sim.State) {
	fmt.Printf("\n=== Day %d ===\n", s.Turn)
	if s.Weather != "" {
		fmt.Printf("Weather: %s (harvest x%.1f)\n", s.Weather, s.WeatherMultiplier)
	}
	fmt.Printf("Cash: $%s   Total profit: $%s\n",
		humanize.CommafWithDigits(s.Cash, 2),
		humanize.CommafWithDigits(s.ProfitCum, 2),
	)
	fmt.Printf("Farm stock: %s   Market stock: %s\n",
		humanize.CommafWithDigits(s.InventoryFarm, 1),
		humanize.CommafWithDigits(s.InventoryMarket, 1),
	)
}

func printResults(s sim.State) {
	fmt.Printf("\nDay %d results:\n", s.Turn)
	fmt.Printf("  harvested %s, shipped %s, sold %s\n",
		humanize.CommafWithDigits(s.Harvest, 1),
		humanize.CommafWithDigits(s.FeasibleShip, 1),
		humanize.CommafWithDigits(s.Sales, 1),
	)
	fmt.Printf("  revenue $%s - planting $%s - shipping $%s = profit $%s\n",
		humanize.CommafWithDigits(s.Revenue, 2),
		humanize.CommafWithDigits(s.CostPlantTurn, 2),
		humanize.CommafWithDigits(s.CostShipTurn, 2),
		humanize.CommafWithDigits(s.ProfitTurn, 2),
	)
}
