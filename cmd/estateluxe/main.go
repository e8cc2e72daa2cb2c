package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/estateluxe/estateluxe/internal/api"
	"github.com/estateluxe/estateluxe/internal/predict"
	"github.com/estateluxe/estateluxe/internal/store"
	"github.com/estateluxe/estateluxe/internal/valuation"
)

var cli struct {
	DB         string `help:"Path to SQLite database." default:"data/estateluxe.db" env:"ESTATELUXE_DB"`
	Port       string `help:"HTTP server port." default:"8080" env:"PORT"`
	BackendURL string `name:"backend-url" help:"Base URL of the pricing backend." default:"http://127.0.0.1:8000" env:"ESTATELUXE_BACKEND_URL"`
	NoProbe    bool   `help:"Skip the startup backend probe."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("estateluxe"),
		kong.Description("Property valuation service."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("warning: %s: %v", pragma, err)
		}
	}

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	predictor := predict.New(cli.BackendURL)
	if !cli.NoProbe {
		// The service works without the backend, it just serves heuristic
		// valuations, so a failed probe is a warning rather than fatal.
		probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := predictor.Ping(probeCtx); err != nil {
			log.Printf("warning: pricing backend unreachable at %s: %v", cli.BackendURL, err)
		} else {
			log.Printf("pricing backend reachable at %s", cli.BackendURL)
		}
		cancel()
	}

	server := api.NewServer(st, predictor, valuation.NewRandomIDSource(), cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
