// Command nhcctl prints council reports straight from the Postgres database:
//
//	nhcctl results <zoneId>
//	nhcctl eligibility <zoneId>
//	nhcctl support-stats <zoneId>
//
// DATABASE_URL is read from the environment or from a .env file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	candidacyService "nhc/internal/candidacy/service"
	electionService "nhc/internal/election/service"
	"nhc/internal/platform/config"
	"nhc/internal/platform/postgres"
	"nhc/internal/position"
	pgstore "nhc/internal/storage/postgres"
	dErrors "nhc/pkg/domain-errors"
)

const usage = `usage: nhcctl <command> <zoneId>

commands:
  results        frozen election results for the zone
  eligibility    candidacies against the support threshold
  support-stats  support activity in the zone`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%s", usage)
	}
	zoneID, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid zone id %q", args[1])
	}

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, Driver: "postgres", MaxOpenConns: 2})
	if err != nil {
		return err
	}
	defer db.Close()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := pgstore.New(db)
	positions := position.NewService(store, position.WithLogger(quiet))

	switch args[0] {
	case "results":
		elections := electionService.New(store, electionTx{store}, positions, electionService.WithLogger(quiet))
		return printResults(ctx, out, elections, zoneID)
	case "eligibility":
		candidacies := candidacyService.New(store, candidacyTx{store}, positions, candidacyService.WithLogger(quiet))
		return printEligibility(ctx, out, candidacies, zoneID)
	case "support-stats":
		candidacies := candidacyService.New(store, candidacyTx{store}, positions, candidacyService.WithLogger(quiet))
		return printSupportStats(ctx, out, candidacies, zoneID)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func printResults(ctx context.Context, out io.Writer, elections *electionService.Service, zoneID uuid.UUID) error {
	results, err := elections.Results(ctx, zoneID)
	if err != nil {
		return describe(err)
	}
	for _, election := range results {
		color.New(color.FgYellow).Fprintf(out, "\nElection %s (%s to %s)\n", election.ElectionID, election.StartDate, election.EndDate)
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Position", "Candidate", "Personal ID", "Votes"})
		for _, pos := range election.Positions {
			for _, c := range pos.Candidates {
				table.Append([]string{pos.Category, c.FirstName + " " + c.LastName, c.PersonalID, strconv.Itoa(c.TotalVotes)})
			}
		}
		table.Render()
	}
	return nil
}

func printEligibility(ctx context.Context, out io.Writer, candidacies *candidacyService.Service, zoneID uuid.UUID) error {
	report, err := candidacies.Eligibility(ctx, zoneID)
	if err != nil {
		return describe(err)
	}
	color.New(color.FgYellow).Fprintf(out, "\nNomination window %s to %s\n", report.NominationStartDate, report.NominationEndDate)
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Candidate", "Personal ID", "Position", "Supports", "Status"})
	for _, e := range report.Candidacies {
		table.Append([]string{
			e.FirstName + " " + e.LastName,
			e.PersonalID,
			e.Category,
			strconv.Itoa(e.SupportCount),
			e.EligibilityStatus,
		})
	}
	table.Render()
	return nil
}

func printSupportStats(ctx context.Context, out io.Writer, candidacies *candidacyService.Service, zoneID uuid.UUID) error {
	stats, err := candidacies.Stats(ctx, zoneID)
	if err != nil {
		return describe(err)
	}
	color.New(color.FgYellow).Fprintln(out, "\nSupport activity")
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Distinct supporters", strconv.Itoa(stats.DistinctSupporters)})
	table.Append([]string{"Supports cast", strconv.Itoa(stats.SupportsCast)})
	table.Append([]string{"Candidacies supported", strconv.Itoa(stats.CandidaciesSupported)})
	table.Append([]string{"Eligible candidacies", strconv.Itoa(stats.EligibleCandidacies)})
	table.Append([]string{"Total candidacies", strconv.Itoa(stats.TotalCandidacies)})
	table.Append([]string{"First support", formatTime(stats.FirstSupportAt)})
	table.Append([]string{"Last support", formatTime(stats.LastSupportAt)})
	table.Render()
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

// describe turns a coded domain error into its message.
func describe(err error) error {
	if code := dErrors.CodeOf(err); code != "" {
		return fmt.Errorf("%s: %w", code, err)
	}
	return err
}

// The reports never write, but the services expect a unit-of-work runner.
type candidacyTx struct{ store *pgstore.Store }

func (t candidacyTx) RunInTx(ctx context.Context, fn func(candidacyService.Store) error) error {
	return t.store.RunInTx(ctx, func(s *pgstore.Store) error { return fn(s) })
}

type electionTx struct{ store *pgstore.Store }

func (t electionTx) RunInTx(ctx context.Context, fn func(electionService.Store) error) error {
	return t.store.RunInTx(ctx, func(s *pgstore.Store) error { return fn(s) })
}
