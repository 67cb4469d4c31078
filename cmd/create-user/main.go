package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/quizzine/quizzine-backend/internal/config"
	"github.com/quizzine/quizzine-backend/internal/database"
	"github.com/quizzine/quizzine-backend/internal/logger"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/quizzine/quizzine-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Interactive bootstrap tool for creating a user account without going
// through the HTTP API, useful for the first account on a fresh install.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres unavailable")
	}
	defer pool.Close()
	userRepo := repository.NewUserRepository(pool)

	fmt.Println("=== Create User ===")
	in := bufio.NewReader(os.Stdin)

	name := prompt(in, "Name: ")
	if name == "" {
		fail("name is required")
	}
	email := prompt(in, "Email: ")
	if email == "" {
		fail("email is required")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fail("could not read password")
	}
	if len(raw) < 8 {
		fail("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword(raw, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("create user")
	}

	fmt.Printf("created %s <%s> with id %s\n", user.Name, user.Email, user.ID)
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "error:", msg)
	os.Exit(1)
}
