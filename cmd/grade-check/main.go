package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	netmail "net/mail"
	"os"
	"strings"
	"time"

	"github.com/gradewatch/gradewatch/internal/adapters/notify"
	"github.com/gradewatch/gradewatch/internal/adapters/store"
	"github.com/gradewatch/gradewatch/internal/config"
	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/gradewatch/gradewatch/internal/factory"
	"github.com/gradewatch/gradewatch/internal/logging"
	"github.com/gradewatch/gradewatch/internal/senders"
	"github.com/gradewatch/gradewatch/internal/utils"
	"go.uber.org/zap"
)

var (
	// Input flags
	inputFile = flag.String("file", "", "Input report file (use stdin if not specified)")
	eml       = flag.Bool("eml", false, "Treat input as a raw RFC 822 message instead of decoded text")

	// Alert state flags
	statePath   = flag.String("state", "", "Path to an alert-state JSON file for a diff preview")
	updateState = flag.Bool("update-state", false, "Write the updated alert state back to -state")

	// Sender flags
	allowedSenders = flag.String("senders", "", "Comma-separated list of allowed sender addresses or domains")

	// Stored snapshot flags
	stored = flag.Bool("stored", false, "Show the stored snapshot and alert state instead of parsing input")

	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *stored {
		if err := showStored(logger); err != nil {
			logger.Fatal("Failed to read stored snapshot", zap.Error(err))
		}
		return
	}

	body, from, err := readInput(logger)
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}

	if *allowedSenders != "" && from != "" {
		checker := senders.NewChecker(strings.Split(*allowedSenders, ","), logger)
		if !checker.IsReportSender(from) {
			logger.Fatal("Sender not recognized as the school system", zap.String("sender", from))
		}
	}

	text := utils.NewTextProcessor(logger)
	parsed, err := core.ParseReport(text.NormalizeBody(body), time.Now().UTC())
	if err != nil {
		logger.Fatal("Failed to parse report", zap.Error(err))
	}

	printCourse(parsed)

	if *statePath != "" {
		if err := previewDiff(parsed, logger); err != nil {
			logger.Fatal("Failed to diff against alert state", zap.Error(err))
		}
	}
}

func readInput(logger *zap.Logger) (body, from string, err error) {
	var reader io.Reader
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			return "", "", err
		}
		defer f.Close()
		reader = f
		logger.Info("Reading report from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading report from stdin")
	}

	if *eml {
		msg, err := netmail.ReadMessage(reader)
		if err != nil {
			return "", "", err
		}
		data, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", "", err
		}
		return string(data), msg.Header.Get("From"), nil
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", "", err
	}
	return string(data), "", nil
}

func printCourse(parsed *core.ParsedReport) {
	c := parsed.Course

	fmt.Printf("\n=== Report ===\n")
	fmt.Printf("Student: %s\n", parsed.Student)
	fmt.Printf("Grading period: %s\n", parsed.GradingPeriod)
	fmt.Printf("Course: %s (%s)\n", c.Name, c.Period)
	fmt.Printf("Instructor: %s\n", c.Instructor)
	fmt.Printf("Overall grade: %s\n", c.OverallGrade)

	fmt.Printf("\n=== Assignments (%d) ===\n", len(c.Assignments))
	for _, a := range c.Assignments {
		status := ""
		switch {
		case a.IsMissing:
			status = "  [MISSING]"
		case a.IsExempt:
			status = "  [exempt]"
		case a.IsNotIncluded:
			status = "  [not included]"
		case a.IsNotYetGraded:
			status = "  [not graded]"
		}
		fmt.Printf("%s  %-40s %s  %g/%g = %g%%%s\n",
			a.Date, a.Name, a.LetterGrade, a.PointsEarned, a.PointsPossible, a.Percentage, status)
	}

	if len(parsed.LineErrors) > 0 {
		fmt.Printf("\n=== Skipped lines (%d) ===\n", len(parsed.LineErrors))
		for _, err := range parsed.LineErrors {
			fmt.Printf("  %v\n", err)
		}
	}
}

func previewDiff(parsed *core.ParsedReport, logger *zap.Logger) error {
	state := core.AlertState{}
	data, err := os.ReadFile(*statePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("No alert state yet, starting empty", zap.String("file", *statePath))
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("decode alert state: %w", err)
		}
	}

	report := core.Aggregate([]*core.ParsedReport{parsed}, time.Now().UTC())
	events, newState := core.Diff(report, state)

	fmt.Printf("\n=== Alert preview ===\n")
	if len(events) == 0 {
		fmt.Printf("No new alerts.\n")
	}
	console := notify.NewConsoleNotifier(logger)
	for _, ev := range events {
		if err := console.Notify(context.Background(), ev); err != nil {
			return err
		}
	}
	fmt.Printf("\nOutstanding missing after this run: %d\n", len(newState.AlertedMissing))

	if *updateState {
		payload, err := json.MarshalIndent(newState, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(*statePath, append(payload, '\n'), 0644); err != nil {
			return err
		}
		logger.Info("Updated alert state", zap.String("file", *statePath))
	}
	return nil
}

func showStored(logger *zap.Logger) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	snapshots, err := factory.NewStoreFactory(cfg, logger).CreateSnapshotStore()
	if err != nil {
		return err
	}
	if stopper, ok := snapshots.(interface{ Stop() }); ok {
		defer stopper.Stop()
	}

	ctx := context.Background()
	report, err := snapshots.LoadReport(ctx)
	if errors.Is(err, store.ErrNoReport) {
		fmt.Printf("No grade report stored yet.\n")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Stored report ===\n")
	fmt.Printf("Student: %s (%s)\n", report.Student, report.GradingPeriod)
	fmt.Printf("Last updated: %s\n", report.LastUpdated.Format(time.RFC3339))
	fmt.Printf("Courses: %d\n", len(report.Courses))
	for _, c := range report.Courses {
		fmt.Printf("  %-24s %-6s %s\n", c.Name, c.OverallGrade, c.Instructor)
	}

	missing := report.MissingKeys()
	fmt.Printf("\nMissing assignments: %d\n", len(missing))
	for _, key := range missing {
		fmt.Printf("  %s\n", key)
	}

	state, err := snapshots.LoadState(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nAlerted missing: %d\n", len(state.AlertedMissing))
	if state.LastRun != nil {
		fmt.Printf("Last run: %s\n", state.LastRun.Format(time.RFC3339))
	}
	return nil
}
