package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/teamops/teamledger/internal/app"
	"github.com/teamops/teamledger/internal/auth"
	"github.com/teamops/teamledger/internal/logger"
)

var version = "dev"

// envDefault returns the environment value for key, or fallback when unset
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// .env is optional; flags and real environment take precedence
	_ = godotenv.Load()

	port := flag.Int("port", envDefaultInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envDefault("DB_PATH", "teamledger.db"), "SQLite database path")
	adminPw := flag.String("adminpw", envDefault("ADMIN_PASSWORD", ""), "Admin password (admin login disabled if empty)")
	logLevel := flag.String("loglevel", envDefault("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	httpLog := flag.Bool("httplog", false, "Log HTTP requests")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `TeamLedger - attendance and payment reconciliation for sports teams

Usage:
  teamledger [options]

Options:
  -port int      HTTP server port (default 8080, env PORT)
  -db string     SQLite database path (default "teamledger.db", env DB_PATH)
  -adminpw str   Admin password (env ADMIN_PASSWORD; admin login disabled if empty)
  -loglevel str  Log level: debug, info, warn, error (default "info", env LOG_LEVEL)
  -httplog       Log HTTP requests
  -version       Show version and exit
  -help          Show this help message

Examples:
  teamledger                          # Run on port 8080 with teamledger.db
  teamledger -port 9090               # Run on port 9090
  teamledger -db /data/club.db        # Use custom database path
  teamledger -adminpw secret123       # Enable admin login

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("teamledger %s\n", version)
		os.Exit(0)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))
	appLog.SetHTTPLogging(*httpLog)

	if *adminPw == "" {
		appLog.Warn("No admin password configured, only manager access codes can log in")
	}
	sessions := auth.New(*adminPw)

	a, err := app.New(appLog, *dbPath, sessions)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", *port)
	if err := a.Run(addr); err != nil {
		log.Fatal(err)
	}
}
