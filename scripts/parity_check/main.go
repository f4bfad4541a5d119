package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/campusforge/timetable-engine/internal/engine"
	"github.com/campusforge/timetable-engine/internal/models"
)

// legacyResult decodes the run report emitted by the scheduler this engine
// replaces. Only the fields the parity gate checks are read.
type legacyResult struct {
	PlacedCount int              `json:"placed_count"`
	TotalCount  int              `json:"total_count"`
	Method      string           `json:"method"`
	Unplaced    []legacyUnplaced `json:"unplaced"`
	Warnings    []legacyWarning  `json:"warnings"`
}

type legacyUnplaced struct {
	CourseID string `json:"course_id"`
	GroupID  string `json:"group_id"`
}

type legacyWarning struct {
	Code string `json:"code"`
}

type comparison struct {
	Name     string
	Legacy   string
	Current  string
	Match    bool
	Critical bool
}

func main() {
	var (
		snapshotPath string
		legacyPath   string
		timeout      time.Duration
	)

	flag.StringVar(&snapshotPath, "snapshot", "", "JSON snapshot the legacy run was generated from")
	flag.StringVar(&legacyPath, "legacy", "", "Legacy run result JSON to compare against")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Run deadline")
	flag.Parse()

	if snapshotPath == "" || legacyPath == "" {
		log.Fatal("both -snapshot and -legacy are required")
	}

	snap, err := loadSnapshot(snapshotPath)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}
	legacy, err := loadLegacyResult(legacyPath)
	if err != nil {
		log.Fatalf("failed to load legacy result: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now()
	result, err := engine.NewCoordinator(engine.DefaultConfig(), nil, nil).Run(ctx, snap)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	comparisons := compare(legacy, result)
	breaking, optionalDiff := printReport(comparisons, time.Since(started))

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadSnapshot(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap := &models.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func loadLegacyResult(path string) (*legacyResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	legacy := &legacyResult{}
	if err := json.Unmarshal(data, legacy); err != nil {
		return nil, err
	}
	return legacy, nil
}

// compare lines the two runs up. Placement counts and the unplaced set must
// match exactly; the method and warning mix may drift between engines.
func compare(legacy *legacyResult, result *models.RunResult) []comparison {
	return []comparison{
		{
			Name:     "total sessions",
			Legacy:   fmt.Sprintf("%d", legacy.TotalCount),
			Current:  fmt.Sprintf("%d", result.TotalCount),
			Match:    legacy.TotalCount == result.TotalCount,
			Critical: true,
		},
		{
			Name:     "placed sessions",
			Legacy:   fmt.Sprintf("%d", legacy.PlacedCount),
			Current:  fmt.Sprintf("%d", result.PlacedCount),
			Match:    legacy.PlacedCount == result.PlacedCount,
			Critical: true,
		},
		{
			Name:     "unplaced set",
			Legacy:   legacyUnplacedKey(legacy.Unplaced),
			Current:  currentUnplacedKey(result.Unplaced),
			Match:    legacyUnplacedKey(legacy.Unplaced) == currentUnplacedKey(result.Unplaced),
			Critical: true,
		},
		{
			Name:    "method",
			Legacy:  legacy.Method,
			Current: string(result.Method),
			Match:   legacy.Method == string(result.Method),
		},
		{
			Name:    "warning codes",
			Legacy:  legacyWarningKey(legacy.Warnings),
			Current: currentWarningKey(result.Warnings),
			Match:   legacyWarningKey(legacy.Warnings) == currentWarningKey(result.Warnings),
		},
	}
}

func legacyUnplacedKey(unplaced []legacyUnplaced) string {
	pairs := make([]string, 0, len(unplaced))
	for _, u := range unplaced {
		pairs = append(pairs, u.CourseID+"|"+u.GroupID)
	}
	return sortedKey(pairs)
}

func currentUnplacedKey(unplaced []models.UnplacedSession) string {
	pairs := make([]string, 0, len(unplaced))
	for _, u := range unplaced {
		pairs = append(pairs, u.CourseID+"|"+u.GroupID)
	}
	return sortedKey(pairs)
}

func legacyWarningKey(warnings []legacyWarning) string {
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	return sortedKey(codes)
}

func currentWarningKey(warnings []models.Warning) string {
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, string(w.Code))
	}
	return sortedKey(codes)
}

func sortedKey(parts []string) string {
	if len(parts) == 0 {
		return "(none)"
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func printReport(results []comparison, elapsed time.Duration) (breaking, optionalDiff int) {
	fmt.Println("Run Parity Report")
	fmt.Println("=================")
	for _, res := range results {
		status := "OK"
		if !res.Match {
			status = "DIFF"
			if res.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		fmt.Printf("[%s] %s\n", status, res.Name)
		if !res.Match {
			fmt.Printf("  Legacy:  %s\n", res.Legacy)
			fmt.Printf("  Current: %s\n", res.Current)
		}
	}
	fmt.Printf("Engine run took %s\n", elapsed)
	return breaking, optionalDiff
}
