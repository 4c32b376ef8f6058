package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/class-routine-api/internal/csvio"
	"github.com/noah-isme/class-routine-api/internal/models"
	"github.com/noah-isme/class-routine-api/internal/scheduler"
	"github.com/noah-isme/class-routine-api/pkg/config"
	"github.com/noah-isme/class-routine-api/pkg/logger"
)

type generateFlags struct {
	teachers    string
	courses     string
	assignments string
	preferences string
	year        string
	seed        int64
	out         string
	dailyLimit  int
	maxAttempts int
	logLevel    string
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a routine from CSV files",
	Long: `Reads teachers, courses, course assignments and optional teacher preferences
from CSV files, runs the generator and writes the placed entries as CSV.
The run summary and any skipped sections are printed to stderr.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runGenerate(ctx, genFlags, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVar(&genFlags.teachers, "teachers", "", "teachers CSV (id,full_name,email,academic_rank,active)")
	flags.StringVar(&genFlags.courses, "courses", "", "courses CSV (id,code,name,type,contact_hours,...)")
	flags.StringVar(&genFlags.assignments, "assignments", "", "course assignments CSV")
	flags.StringVar(&genFlags.preferences, "preferences", "", "teacher preferences CSV (optional)")
	flags.StringVar(&genFlags.year, "year", "", "academic year; defaults to the first assignment's year")
	flags.Int64Var(&genFlags.seed, "seed", 0, "random seed; 0 picks one from the clock")
	flags.StringVarP(&genFlags.out, "out", "o", "", "output CSV path; stdout when empty")
	flags.IntVar(&genFlags.dailyLimit, "daily-limit", models.DailyLimit, "max classes per section per day")
	flags.IntVar(&genFlags.maxAttempts, "max-attempts", models.MaxPlacementAttempts, "grid scans per placement")
	flags.StringVar(&genFlags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	_ = generateCmd.MarkFlagRequired("teachers")
	_ = generateCmd.MarkFlagRequired("courses")
	_ = generateCmd.MarkFlagRequired("assignments")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(ctx context.Context, f generateFlags, stdout, stderr io.Writer) error {
	logr, err := logger.New(&config.Config{
		Env: config.EnvDevelopment,
		Log: config.LogConfig{Level: f.logLevel, Format: "console"},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	teachers, err := csvio.ReadFile(f.teachers, csvio.ReadTeachers)
	if err != nil {
		return err
	}
	courses, err := csvio.ReadFile(f.courses, csvio.ReadCourses)
	if err != nil {
		return err
	}
	assignments, err := csvio.ReadFile(f.assignments, csvio.ReadAssignments)
	if err != nil {
		return err
	}
	var prefs []models.TeacherPreference
	if f.preferences != "" {
		if prefs, err = csvio.ReadFile(f.preferences, csvio.ReadPreferences); err != nil {
			return err
		}
	}

	resolved, err := scheduler.Resolve(assignments, teachers, courses)
	if err != nil {
		return err
	}

	result, err := scheduler.Generate(ctx, resolved, prefs, scheduler.Options{
		AcademicYear: f.year,
		Seed:         f.seed,
		MaxAttempts:  f.maxAttempts,
		DailyLimit:   f.dailyLimit,
		Logger:       logr.With(zap.String("component", "routinectl")),
	})
	if err != nil {
		return err
	}

	out := stdout
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.out, err)
		}
		defer file.Close()
		out = file
	}
	if err := csvio.WriteEntries(out, csvio.Describe(result.Entries, teachers, courses)); err != nil {
		return err
	}

	printSummary(stderr, result)
	return nil
}

func printSummary(w io.Writer, result *scheduler.Result) {
	fmt.Fprintf(w, "academic year %s, seed %d: %d classes placed\n", result.AcademicYear, result.Seed, result.ScheduledCourses)
	counts := result.ConflictCounts()
	for _, kind := range models.ConflictTypes {
		if counts[kind] > 0 {
			fmt.Fprintf(w, "  %-17s %d rejected\n", kind, counts[kind])
		}
	}
	if !result.Partial() {
		return
	}
	fmt.Fprintf(w, "partial routine, %d sections short:\n", len(result.Skipped))
	for _, skip := range result.Skipped {
		fmt.Fprintf(w, "  %s sem %d sec %s (teacher %s): %d of %d hours\n",
			skip.CourseCode, skip.Semester, skip.Section, skip.TeacherID, skip.Assigned, skip.Needed)
	}
}
