package recap

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mazzdev/pilotage/internal/timeentry"
)

func entry(app, dev string, hours float64, tasks ...string) *timeentry.AdminEntry {
	e := &timeentry.AdminEntry{}
	e.App = app
	e.Hours = hours
	for _, title := range tasks {
		e.Tasks = append(e.Tasks, timeentry.Task{Title: title})
	}
	e.Owner.Name = dev
	return e
}

func TestGroupEntries(t *testing.T) {
	entries := []*timeentry.AdminEntry{
		entry("sci", "Alice", 4, "Refonte du tableau de bord"),
		entry("lmnp", "Bob", 3, "Correctif import"),
		entry("lmnp", "Alice", 2.5, "Correctif import", "Export PDF"),
	}

	activities := GroupEntries(entries)
	if len(activities) != 2 {
		t.Fatalf("expected 2 products, got %d", len(activities))
	}

	lmnp := activities[0]
	if lmnp.App != "lmnp" {
		t.Fatalf("products should be sorted, got %q first", lmnp.App)
	}
	if lmnp.TotalHours != 5.5 {
		t.Errorf("lmnp hours = %v, want 5.5", lmnp.TotalHours)
	}
	if len(lmnp.Tasks) != 2 {
		t.Errorf("duplicate task titles should be merged, got %v", lmnp.Tasks)
	}
	if len(lmnp.Developers) != 2 {
		t.Errorf("lmnp developers = %v, want 2", lmnp.Developers)
	}

	if activities[1].App != "sci" || activities[1].TotalHours != 4 {
		t.Errorf("unexpected sci aggregate: %+v", activities[1])
	}
}

func TestBuildPrompt(t *testing.T) {
	activities := []AppActivity{
		{App: "lmnp", TotalHours: 12, Tasks: []string{"Export PDF"}, Developers: []string{"Alice"}},
	}

	prompt := BuildPrompt(3, 2026, activities)
	for _, want := range []string{"mars 2026", "lmnp", "12.0 heures", "Export PDF", "Alice"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_EmptyMonth(t *testing.T) {
	prompt := BuildPrompt(8, 2026, nil)
	if !strings.Contains(prompt, "Aucune heure") {
		t.Errorf("empty month should be stated in the prompt:\n%s", prompt)
	}
}

func TestPreviousMonth(t *testing.T) {
	m, y := PreviousMonth(time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC))
	if m != 12 || y != 2025 {
		t.Errorf("PreviousMonth(jan 2026) = %d/%d, want 12/2025", m, y)
	}

	m, y = PreviousMonth(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))
	if m != 6 || y != 2026 {
		t.Errorf("PreviousMonth(jul 2026) = %d/%d, want 6/2026", m, y)
	}
}

type fakeEntries struct {
	entries []*timeentry.AdminEntry
	from    time.Time
	to      time.Time
}

func (f *fakeEntries) ListRange(_ context.Context, from, to time.Time) ([]*timeentry.AdminEntry, error) {
	f.from, f.to = from, to
	return f.entries, nil
}

type fakeRecipients struct{ emails []string }

func (f *fakeRecipients) Emails(context.Context) ([]string, error) { return f.emails, nil }

type fakeGenerator struct{ prompt string }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return "Résumé du mois.", nil
}

type fakeMailer struct {
	recipients []string
	subject    string
	body       string
	calls      int
}

func (f *fakeMailer) Send(recipients []string, subject, body string) error {
	f.calls++
	f.recipients, f.subject, f.body = recipients, subject, body
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJobRun_SendsToShareholders(t *testing.T) {
	entries := &fakeEntries{entries: []*timeentry.AdminEntry{entry("sci", "Alice", 6, "Audit")}}
	mailer := &fakeMailer{}
	gen := &fakeGenerator{}
	job := &Job{
		Entries:    entries,
		Recipients: &fakeRecipients{emails: []string{"a@ex.fr", "b@ex.fr"}},
		Generator:  gen,
		Mailer:     mailer,
		Logger:     testLogger(),
	}

	res, err := job.Run(context.Background(), 5, 2026)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Sent || res.Recipients != 2 {
		t.Errorf("result = %+v, want sent to 2 recipients", res)
	}
	if mailer.calls != 1 || len(mailer.recipients) != 2 {
		t.Errorf("mailer called %d times with %v", mailer.calls, mailer.recipients)
	}
	if !strings.Contains(mailer.subject, "mai 2026") {
		t.Errorf("subject should name the month, got %q", mailer.subject)
	}
	if mailer.body != "Résumé du mois." {
		t.Errorf("body = %q", mailer.body)
	}
	if !strings.Contains(gen.prompt, "Audit") {
		t.Errorf("prompt should include task titles, got:\n%s", gen.prompt)
	}

	wantFrom := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	if !entries.from.Equal(wantFrom) || !entries.to.Equal(wantFrom.AddDate(0, 1, 0)) {
		t.Errorf("queried range [%v, %v)", entries.from, entries.to)
	}
}

func TestJobRun_DryRunSkipsMail(t *testing.T) {
	mailer := &fakeMailer{}
	job := &Job{
		Entries:    &fakeEntries{},
		Recipients: &fakeRecipients{emails: []string{"a@ex.fr"}},
		Generator:  &fakeGenerator{},
		Mailer:     mailer,
		Logger:     testLogger(),
		DryRun:     true,
	}

	res, err := job.Run(context.Background(), 5, 2026)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Sent || mailer.calls != 0 {
		t.Errorf("dry run must not send, result=%+v calls=%d", res, mailer.calls)
	}
	if res.Recap == "" {
		t.Error("dry run should still generate the recap")
	}
}

func TestJobRun_NoRecipients(t *testing.T) {
	mailer := &fakeMailer{}
	job := &Job{
		Entries:    &fakeEntries{},
		Recipients: &fakeRecipients{},
		Generator:  &fakeGenerator{},
		Mailer:     mailer,
		Logger:     testLogger(),
	}

	res, err := job.Run(context.Background(), 5, 2026)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Sent || mailer.calls != 0 {
		t.Error("no shareholders means nothing to send")
	}
}
