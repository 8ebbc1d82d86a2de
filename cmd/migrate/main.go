package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	var (
		command = flag.String("command", "up", "migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "number of steps for down (0 = all)")
		version = flag.Int("version", 0, "target version for force")
		path    = flag.String("path", "migrations", "migrations directory")
	)
	flag.Parse()

	_ = godotenv.Load()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("❌ DATABASE_URL is not set")
	}

	log.Printf("🔗 Using database %s", maskDatabaseURL(databaseURL))

	m, err := migrate.New("file://"+*path, databaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to init migrate: %v", err)
	}
	defer m.Close()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("❌ Migration up failed: %v", err)
		}
		log.Println("✅ Migrations applied")
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("❌ Migration down failed: %v", err)
		}
		log.Println("✅ Migrations rolled back")
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("❌ Failed to read version: %v", err)
		}
		log.Printf("📌 Version %d (dirty: %v)", v, dirty)
	case "force":
		if err := m.Force(*version); err != nil {
			log.Fatalf("❌ Force failed: %v", err)
		}
		log.Printf("✅ Forced version %d", *version)
	default:
		log.Fatalf("❌ Unknown command: %s", *command)
	}
}

// maskDatabaseURL hides credentials when logging the connection string.
func maskDatabaseURL(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at == -1 || scheme == -1 {
		return url
	}
	return fmt.Sprintf("%s://***:***%s", url[:scheme], url[at:])
}
