package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/mazzdev/pilotage/internal/config"
	"github.com/mazzdev/pilotage/internal/rbac"
	"github.com/mazzdev/pilotage/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an initial admin and a demo developer",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	userStore := user.NewStore(pool, cfg.Auth.SessionDuration)

	// Check if seed has already run.
	existing, err := userStore.List(ctx)
	if err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("users already exist, skipping seed")
		return nil
	}

	adminPassword, err := user.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating admin password: %w", err)
	}
	admin, err := userStore.Create(ctx, user.CreateUserInput{
		Email:    "admin@pilotage.local",
		Password: adminPassword,
		Name:     "Admin",
		Roles:    rbac.RoleSet{rbac.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	devPassword, err := user.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating developer password: %w", err)
	}
	dev, err := userStore.Create(ctx, user.CreateUserInput{
		Email:    "dev@pilotage.local",
		Password: devPassword,
		Name:     "Demo Dev",
		Roles:    rbac.RoleSet{rbac.RoleDev},
	})
	if err != nil {
		return fmt.Errorf("creating demo developer: %w", err)
	}

	slog.Info("seeded accounts", "admin", admin.Email, "developer", dev.Email)
	fmt.Printf("\n=== Accounts Seeded ===\n")
	fmt.Printf("Admin:     %s / %s\n", admin.Email, adminPassword)
	fmt.Printf("Developer: %s / %s\n", dev.Email, devPassword)
	fmt.Printf("\nPasswords are shown once, store them now.\n")

	return nil
}
