package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/quizzine/quizzine-backend/internal/config"
)

func main() {
	dir := flag.String("path", "migrations", "directory containing migration files")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+*dir, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		run(m.Up(), "migrated up")
	case "down":
		run(m.Down(), "migrated down")
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("version: %v", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
	case "force":
		if flag.NArg() < 2 {
			log.Fatal("force requires a version argument")
		}
		v, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatalf("bad version %q: %v", flag.Arg(1), err)
		}
		if err := m.Force(v); err != nil {
			log.Fatalf("force: %v", err)
		}
		fmt.Printf("forced version to %d\n", v)
	default:
		log.Fatalf("unknown command %q", cmd)
	}
}

func run(err error, msg string) {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate: %v", err)
	}
	fmt.Println(msg)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-path dir] <up|down|version|force N>")
	flag.PrintDefaults()
}
