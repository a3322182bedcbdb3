package main // Staff account provisioning tool

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/goviettour/booking-backend/internal/config"
	"github.com/goviettour/booking-backend/internal/database"
	"github.com/goviettour/booking-backend/internal/model"
	"github.com/goviettour/booking-backend/internal/repository"
	"github.com/goviettour/booking-backend/internal/utils"
)

// adminctl creates staff accounts for the admin console.  The API has no
// registration endpoint on purpose; this tool is the only way accounts
// come into existence.
//
//	adminctl -email finance@goviettour.vn -password s3cret -role ACCOUNTANT
func main() {
	email := flag.String("email", "", "staff email address")
	password := flag.String("password", "", "initial password")
	role := flag.String("role", model.RoleAccountant, "ADMIN or ACCOUNTANT")
	flag.Parse()

	*email = strings.ToLower(strings.TrimSpace(*email))
	*role = strings.ToUpper(strings.TrimSpace(*role))
	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role != model.RoleAdmin && *role != model.RoleAccountant {
		log.Fatalf("unknown role %q", *role)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	hash, err := utils.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	a := &model.AdminUser{Email: *email, PasswordHash: hash, Role: *role}
	if err := repository.NewAdminRepo(db).Create(context.Background(), a); err != nil {
		log.Fatalf("create account: %v", err)
	}
	fmt.Printf("created %s account %s (id %d)\n", a.Role, a.Email, a.ID)
}
