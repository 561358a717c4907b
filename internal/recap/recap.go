// Package recap builds and sends the monthly activity recap to
// shareholders. It aggregates the previous month's time entries per
// product, asks the Anthropic API for a short narrative summary and
// mails the result to every registered shareholder.
package recap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mazzdev/pilotage/internal/timeentry"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthName returns the French name of a month (1-12).
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return frenchMonths[month-1]
}

// AppActivity aggregates one product's entries for the recap period.
type AppActivity struct {
	App        string
	TotalHours float64
	Tasks      []string
	Developers []string
}

// GroupEntries aggregates entries per product, deduplicating task titles
// and developer names. Products come back in stable alphabetical order.
func GroupEntries(entries []*timeentry.AdminEntry) []AppActivity {
	byApp := make(map[string]*AppActivity)
	seenTasks := make(map[string]map[string]bool)
	seenDevs := make(map[string]map[string]bool)

	for _, e := range entries {
		act, ok := byApp[e.App]
		if !ok {
			act = &AppActivity{App: e.App}
			byApp[e.App] = act
			seenTasks[e.App] = make(map[string]bool)
			seenDevs[e.App] = make(map[string]bool)
		}
		act.TotalHours += e.Hours
		for _, task := range e.Tasks {
			if task.Title != "" && !seenTasks[e.App][task.Title] {
				seenTasks[e.App][task.Title] = true
				act.Tasks = append(act.Tasks, task.Title)
			}
		}
		if e.Owner.Name != "" && !seenDevs[e.App][e.Owner.Name] {
			seenDevs[e.App][e.Owner.Name] = true
			act.Developers = append(act.Developers, e.Owner.Name)
		}
	}

	apps := make([]string, 0, len(byApp))
	for app := range byApp {
		apps = append(apps, app)
	}
	sort.Strings(apps)

	activities := make([]AppActivity, 0, len(apps))
	for _, app := range apps {
		activities = append(activities, *byApp[app])
	}
	return activities
}

// BuildPrompt renders the instruction sent to the model for a given
// month's activity.
func BuildPrompt(month, year int, activities []AppActivity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rédige un récapitulatif mensuel d'activité destiné aux actionnaires pour %s %d.\n", MonthName(month), year)
	b.WriteString("Ton professionnel et concis, en français, trois paragraphes maximum.\n\n")
	b.WriteString("Activité de développement du mois :\n")

	if len(activities) == 0 {
		b.WriteString("Aucune heure de développement enregistrée ce mois-ci.\n")
		return b.String()
	}

	for _, act := range activities {
		fmt.Fprintf(&b, "\nProduit %s : %.1f heures", act.App, act.TotalHours)
		if len(act.Developers) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(act.Developers, ", "))
		}
		b.WriteString("\n")
		for _, task := range act.Tasks {
			fmt.Fprintf(&b, "- %s\n", task)
		}
	}
	return b.String()
}

// EntryLister fetches time entries in a date range.
type EntryLister interface {
	ListRange(ctx context.Context, from, to time.Time) ([]*timeentry.AdminEntry, error)
}

// RecipientLister fetches shareholder emails.
type RecipientLister interface {
	Emails(ctx context.Context) ([]string, error)
}

// Generator turns a prompt into recap prose.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Mailer delivers one recap email to a list of recipients.
type Mailer interface {
	Send(recipients []string, subject, body string) error
}

// Job orchestrates one recap run.
type Job struct {
	Entries    EntryLister
	Recipients RecipientLister
	Generator  Generator
	Mailer     Mailer
	Logger     *slog.Logger

	// DryRun skips sending and only logs the generated recap.
	DryRun bool
}

// Result reports what a run produced.
type Result struct {
	Month      int
	Year       int
	Recap      string
	Recipients int
	Sent       bool
}

// PreviousMonth returns the month and year preceding now.
func PreviousMonth(now time.Time) (month, year int) {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}

// Run generates and sends the recap for the given month.
func (j *Job) Run(ctx context.Context, month, year int) (*Result, error) {
	from, to := timeentry.MonthRange(month, year)

	entries, err := j.Entries.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading month entries: %w", err)
	}

	activities := GroupEntries(entries)
	prompt := BuildPrompt(month, year, activities)

	recapText, err := j.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating recap: %w", err)
	}

	result := &Result{Month: month, Year: year, Recap: recapText}

	recipients, err := j.Recipients.Emails(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recipients: %w", err)
	}
	result.Recipients = len(recipients)

	if j.DryRun {
		j.Logger.Info("recap dry run, not sending",
			"month", month, "year", year, "recipients", len(recipients))
		return result, nil
	}
	if len(recipients) == 0 {
		j.Logger.Warn("no shareholders registered, recap not sent",
			"month", month, "year", year)
		return result, nil
	}

	subject := fmt.Sprintf("Récapitulatif mensuel - %s %d", MonthName(month), year)
	if err := j.Mailer.Send(recipients, subject, recapText); err != nil {
		return nil, fmt.Errorf("sending recap: %w", err)
	}
	result.Sent = true

	j.Logger.Info("recap sent",
		"month", month, "year", year, "recipients", len(recipients))
	return result, nil
}
