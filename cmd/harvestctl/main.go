package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaumahan/harvest-market-api/internal/config"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
)

// rootCmd is the operational CLI for the marketplace. It reuses the
// server's configuration so it targets the same database.
var rootCmd = &cobra.Command{
	Use:          "harvestctl",
	Short:        "harvestctl administers the harvest market backend.",
	SilenceUsage: true,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff account that can use the admin endpoints.",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		fullName, _ := cmd.Flags().GetString("name")

		if email == "" || password == "" {
			return fmt.Errorf("--email and --password are required")
		}

		return withAccounts(cmd.Context(), func(ctx context.Context, accounts repository.AccountRepository) error {
			existing, err := accounts.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if existing != nil {
				return fmt.Errorf("account %s already exists", email)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			account := &model.Account{
				Email:        email,
				PasswordHash: string(hash),
				FullName:     fullName,
				Role:         model.RoleBuyer,
				IsApproved:   true,
				IsStaff:      true,
				IsActive:     true,
			}
			if err := accounts.Create(ctx, account); err != nil {
				return fmt.Errorf("create account: %w", err)
			}

			fmt.Printf("created staff account %s (%s)\n", email, account.ID)
			return nil
		})
	},
}

var approveSellerCmd = &cobra.Command{
	Use:   "approve-seller <account-id>",
	Short: "Approve a pending seller from the command line.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sellerID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}

		return withAccounts(cmd.Context(), func(ctx context.Context, accounts repository.AccountRepository) error {
			account, err := accounts.GetByID(ctx, sellerID)
			if err != nil {
				return fmt.Errorf("get account: %w", err)
			}
			if account == nil {
				return fmt.Errorf("account %s not found", sellerID)
			}
			if !account.IsSeller() {
				return fmt.Errorf("account %s is not a seller", sellerID)
			}

			if err := accounts.SetApproval(ctx, sellerID, true, true); err != nil {
				return fmt.Errorf("approve seller: %w", err)
			}

			fmt.Printf("approved seller %s (%s)\n", account.Email, sellerID)
			return nil
		})
	},
}

func withAccounts(ctx context.Context, fn func(context.Context, repository.AccountRepository) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, repository.NewAccountRepository(pool))
}

func init() {
	createAdminCmd.Flags().String("email", "", "staff account email")
	createAdminCmd.Flags().String("password", "", "staff account password")
	createAdminCmd.Flags().String("name", "Administrator", "staff account full name")

	rootCmd.AddCommand(createAdminCmd, approveSellerCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
