// Command tandatoken issues an actor token signed with the configured secret.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmynk/tandas/internal/auth"
	"github.com/mmynk/tandas/internal/config"
	"github.com/mmynk/tandas/pkg/logging"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	actorID := flag.String("actor", "", "actor id (member client id or operator id)")
	name := flag.String("name", "", "display name")
	role := flag.String("role", string(auth.RoleMember), "member or operator")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()
	logging.Setup()

	cfg, err := config.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.Secret == "" {
		slog.Error("No auth secret configured")
		os.Exit(1)
	}
	switch auth.Role(*role) {
	case auth.RoleMember, auth.RoleOperator:
	default:
		slog.Error("Unknown role", "role", *role)
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.Auth.Secret, *ttl).Generate(auth.Actor{
		ID:   *actorID,
		Name: *name,
		Role: auth.Role(*role),
	})
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
