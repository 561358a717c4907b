package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/mazzdev/pilotage/internal/config"
	"github.com/mazzdev/pilotage/internal/recap"
	"github.com/mazzdev/pilotage/internal/shareholder"
	"github.com/mazzdev/pilotage/internal/timeentry"
)

var (
	recapMonth  int
	recapYear   int
	recapEmail  string
	recapDryRun bool
)

// staticRecipients satisfies recap.RecipientLister for the --email mode.
type staticRecipients []string

func (s staticRecipients) Emails(context.Context) ([]string, error) { return s, nil }

var recapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Generate and send the monthly shareholder recap",
	Long:  "Generates the activity recap for one month and mails it to every registered shareholder. Defaults to the previous month. With --dry-run the recap is printed instead of sent.",
	RunE:  runRecap,
}

func init() {
	recapCmd.Flags().IntVar(&recapMonth, "month", 0, "month to recap (1-12, default: previous month)")
	recapCmd.Flags().IntVar(&recapYear, "year", 0, "year to recap (default: previous month's year)")
	recapCmd.Flags().StringVar(&recapEmail, "email", "", "send to this single address instead of the registry")
	recapCmd.Flags().BoolVar(&recapDryRun, "dry-run", false, "print the recap instead of mailing it")
	rootCmd.AddCommand(recapCmd)
}

func runRecap(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	month, year := recapMonth, recapYear
	if month == 0 || year == 0 {
		month, year = recap.PreviousMonth(time.Now().UTC())
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var recipients recap.RecipientLister = shareholder.NewStore(pool)
	if recapEmail != "" {
		recipients = staticRecipients{recapEmail}
	}

	job := &recap.Job{
		Entries:    timeentry.NewStore(pool),
		Recipients: recipients,
		Generator:  recap.NewAnthropicClient(cfg.Recap.AnthropicAPIKey, cfg.Recap.AnthropicModel, cfg.Recap.AnthropicURL),
		Mailer: recap.NewSMTPMailer(cfg.Recap.SMTP.Host, cfg.Recap.SMTP.Port,
			cfg.Recap.SMTP.From, cfg.Recap.SMTP.Username, cfg.Recap.SMTP.Password),
		Logger: logger,
		DryRun: recapDryRun,
	}

	res, err := job.Run(ctx, month, year)
	if err != nil {
		return err
	}

	if recapDryRun {
		fmt.Printf("=== Recap %s %d (dry run, %d recipients) ===\n\n%s\n", recap.MonthName(month), year, res.Recipients, res.Recap)
		return nil
	}

	slog.Info("recap done", "month", month, "year", year, "sent", res.Sent, "recipients", res.Recipients)
	return nil
}
