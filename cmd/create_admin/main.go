// Command create_admin creates the first admin account, or promotes an
// existing account to admin. The campaign has no self-service way to do this.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"buddhist-lent/pledgeboard/internal/config"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "Administrator", "display name for a new account")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	gdb, err := open(cfg)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	users := repositories.NewUserRepository(gdb)
	addr := strings.ToLower(strings.TrimSpace(*email))

	existing, err := users.GetByEmail(ctx, addr)
	switch {
	case err == nil:
		if err := users.SetRole(ctx, existing.ID, constants.RoleAdmin); err != nil {
			log.Fatalf("promote: %v", err)
		}
		fmt.Printf("Promoted %s (id %d) to admin\n", addr, existing.ID)
		return
	case !errors.Is(err, repositories.ErrNotFound):
		log.Fatalf("lookup: %v", err)
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if len(password) < 8 {
		log.Fatal("set ADMIN_PASSWORD (at least 8 characters) to create a new account")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	u := &gormModels.User{Name: *name, Email: addr, PasswordHash: string(hash), Role: constants.RoleAdmin}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("create: %v", err)
	}
	fmt.Printf("Created admin %s (id %d)\n", addr, u.ID)
}

func open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return db.OpenSQLite(cfg.SQLitePath)
	}
	return db.InitPostgresORM(cfg.PostgresDSN())
}
