package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"oracle/internal/adapter/repo"
	"oracle/internal/domain"
	"oracle/internal/infra"
	"oracle/internal/oracle"
)

// grantplan applies a confirmed tier purchase to a user out-of-band, the same
// path the payment collaborator's webhook takes.
func main() {
	var (
		userFlag   string
		tierFlag   string
		monthsFlag int
	)

	flag.StringVar(&userFlag, "user", "", "user ID to upgrade")
	flag.StringVar(&tierFlag, "tier", string(domain.TierPremium6M), "tier to assign (free, premium_6m, premium_12m)")
	flag.IntVar(&monthsFlag, "months", 6, "validity in months for paid tiers")
	flag.Parse()

	userID := strings.TrimSpace(userFlag)
	if userID == "" {
		exitWithError(errors.New("-user is required"))
	}

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "grantplan").Logger()
	catalog := domain.NewTierCatalog()
	engine := oracle.NewEngine(catalog, repo.NewEntitlementRepository(pool), logger)

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, monthsFlag, 0)
	tierID := domain.TierID(strings.TrimSpace(strings.ToLower(tierFlag)))

	if err := engine.Upgrade(ctx, userID, tierID, expiresAt, now); err != nil {
		exitWithError(fmt.Errorf("failed to upgrade user: %w", err))
	}

	tier, _ := catalog.Tier(tierID)
	fmt.Printf("User %s upgraded to %s", userID, tier.Name)
	if tier.Paid() {
		fmt.Printf(" until %s", expiresAt.Format(time.RFC3339))
	}
	fmt.Println()
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
