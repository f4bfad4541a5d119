package engine

import (
	"context"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/models"
)

// categoryExitMinAttempts is the minimum number of placements tried before
// the per-category early exit may trigger.
const categoryExitMinAttempts = 4

// GreedyPlacer seats as many sessions as possible in one deterministic
// linear pass, preferring feasibility over optimality. Sessions it cannot
// seat are left for the ILP phase.
type GreedyPlacer struct {
	ix      *snapshotIndex
	tracker *ConstraintTracker
	cfg     Config
	logger  *zap.Logger
}

func newGreedyPlacer(ix *snapshotIndex, tracker *ConstraintTracker, cfg Config, logger *zap.Logger) *GreedyPlacer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GreedyPlacer{ix: ix, tracker: tracker, cfg: cfg, logger: logger}
}

// greedyOutcome aggregates what one greedy pass produced.
type greedyOutcome struct {
	entries     []models.TimetableEntry
	placed      int
	attempted   int
	interrupted bool
}

// slotChoice is one feasible placement found while scanning slots.
type slotChoice struct {
	block      []*models.TimeSlot
	adjacency  bool
	sameDayLab bool
}

// Place runs the pass over sessions, mutating their status in place and
// committing accepted placements to the tracker. The cancellation signal is
// checked between sessions; an interrupted pass returns what it has.
func (g *GreedyPlacer) Place(ctx context.Context, runID string, sessions []*models.Session) *greedyOutcome {
	ordered := g.orderSessions(sessions)
	outcome := &greedyOutcome{}

	attempted := make(map[models.SubjectCategory]int)
	succeeded := make(map[models.SubjectCategory]int)
	exhausted := make(map[models.SubjectCategory]bool)

	for _, session := range ordered {
		if ctx.Err() != nil {
			outcome.interrupted = true
			g.logger.Warn("greedy pass interrupted",
				zap.Int("placed", outcome.placed),
				zap.Int("attempted", outcome.attempted))
			return outcome
		}
		if exhausted[session.Category] {
			continue
		}

		outcome.attempted++
		attempted[session.Category]++
		if g.placeOne(runID, session, outcome) {
			outcome.placed++
			succeeded[session.Category]++
		}

		if g.cfg.CategoryEarlyExit && !exhausted[session.Category] && attempted[session.Category] >= categoryExitMinAttempts {
			ratio := float64(succeeded[session.Category]) / float64(attempted[session.Category])
			if ratio < g.cfg.CategoryExitThreshold {
				exhausted[session.Category] = true
				g.logger.Info("category routed to solver early",
					zap.String("category", string(session.Category)),
					zap.Float64("ratio", ratio))
			}
		}
	}

	return outcome
}

// orderSessions applies the fixed priority: practicals first, then within
// each type the fewest static slot/room/faculty combinations first, ties
// broken by session id.
func (g *GreedyPlacer) orderSessions(sessions []*models.Session) []*models.Session {
	combos := make(map[string]int)
	comboCount := func(s *models.Session) int {
		key := s.CourseID + "|" + s.GroupID + "|" + strconv.Itoa(s.Duration)
		if count, ok := combos[key]; ok {
			return count
		}
		count := g.staticCombos(s)
		combos[key] = count
		return count
	}

	ordered := make([]*models.Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		aLab := a.Type == models.CourseTypePractical
		bLab := b.Type == models.CourseTypePractical
		if aLab != bLab {
			return aLab
		}
		ca, cb := comboCount(a), comboCount(b)
		if ca != cb {
			return ca < cb
		}
		return a.ID < b.ID
	})
	return ordered
}

// staticCombos counts (slot, room, faculty) triples compatible with the
// session before any occupancy is considered.
func (g *GreedyPlacer) staticCombos(session *models.Session) int {
	course := g.ix.courses[session.CourseID]
	group := g.ix.groups[session.GroupID]
	if course == nil || group == nil {
		return 0
	}
	rooms := len(g.ix.roomsFor(course, group.Size))
	if rooms == 0 {
		return 0
	}
	total := 0
	for _, facultyID := range g.ix.facultyFor(course) {
		for _, slot := range g.ix.orderedSlots {
			block := g.ix.blockSlots(slot, session.Duration)
			if block == nil {
				continue
			}
			if g.ix.facultyAvailable(facultyID, block) {
				total++
			}
		}
	}
	return total * rooms
}

// placeOne seats a single session or marks it unplaced with a reason.
func (g *GreedyPlacer) placeOne(runID string, session *models.Session, outcome *greedyOutcome) bool {
	course := g.ix.courses[session.CourseID]
	group := g.ix.groups[session.GroupID]
	if course == nil || group == nil {
		session.Status = models.SessionStatusUnplaced
		session.Reason = models.UnplacedNoFreeSlot
		return false
	}

	rooms := g.ix.roomsFor(course, group.Size)
	if len(rooms) == 0 {
		session.Status = models.SessionStatusUnplaced
		session.Reason = models.UnplacedNoCompatibleRoom
		return false
	}

	var candidates []string
	for _, facultyID := range g.ix.facultyFor(course) {
		if g.tracker.FacultyHasBudget(facultyID, session.Duration) {
			candidates = append(candidates, facultyID)
		}
	}
	if len(candidates) == 0 {
		session.Status = models.SessionStatusUnplaced
		session.Reason = models.UnplacedNoFacultyAvailable
		return false
	}

	for _, facultyID := range candidates {
		for _, room := range rooms {
			choice := g.bestSlot(session, room, facultyID)
			if choice == nil {
				continue
			}
			g.accept(runID, session, choice, room, facultyID, outcome)
			return true
		}
	}

	session.Status = models.SessionStatusUnplaced
	session.Reason = models.UnplacedNoFreeSlot
	return false
}

// bestSlot scans slots in placement order and returns the preferred feasible
// block for the (session, room, faculty) triple: clean placements win, then
// adjacency-free ones, then any day without the same lab, then the earliest
// feasible slot.
func (g *GreedyPlacer) bestSlot(session *models.Session, room *models.Room, facultyID string) *slotChoice {
	var sameDayOnly, adjacentOnly, worst *slotChoice

	for _, slot := range g.ix.orderedSlots {
		block := g.ix.blockSlots(slot, session.Duration)
		if block == nil {
			continue
		}
		if !g.tracker.CanPlace(session, block, room, facultyID) {
			continue
		}
		if g.tracker.WouldExceedLabCap(session, slot.Day) {
			continue
		}

		adjacency := g.tracker.ViolatesAdjacency(session, block)
		sameDay := g.tracker.HasSameLabToday(session, slot.Day)
		switch {
		case !adjacency && !sameDay:
			return &slotChoice{block: block}
		case !adjacency:
			if sameDayOnly == nil {
				sameDayOnly = &slotChoice{block: block, sameDayLab: true}
			}
		case !sameDay:
			if adjacentOnly == nil {
				adjacentOnly = &slotChoice{block: block, adjacency: true}
			}
		default:
			if worst == nil {
				worst = &slotChoice{block: block, adjacency: true, sameDayLab: true}
			}
		}
	}

	if sameDayOnly != nil {
		return sameDayOnly
	}
	if adjacentOnly != nil {
		return adjacentOnly
	}
	return worst
}

// accept commits the placement and records one entry per spanned period.
// Soft violations of the chosen slot are logged here; the validator reports
// them as structured warnings after the run.
func (g *GreedyPlacer) accept(runID string, session *models.Session, choice *slotChoice, room *models.Room, facultyID string, outcome *greedyOutcome) {
	g.tracker.Commit(session, choice.block, room, facultyID)
	session.Status = models.SessionStatusPlaced

	for _, slot := range choice.block {
		outcome.entries = append(outcome.entries, models.TimetableEntry{
			ID:        uuid.NewString(),
			RunID:     runID,
			SessionID: session.ID,
			CourseID:  session.CourseID,
			FacultyID: facultyID,
			RoomID:    room.ID,
			GroupID:   session.GroupID,
			SlotID:    slot.ID,
			Day:       slot.Day,
			Period:    slot.Period,
		})
	}

	g.logger.Debug("session placed",
		zap.Int("session_id", session.ID),
		zap.String("course_id", session.CourseID),
		zap.String("group_id", session.GroupID),
		zap.String("faculty_id", facultyID),
		zap.String("room_id", room.ID),
		zap.String("day", string(choice.block[0].Day)),
		zap.Int("period", choice.block[0].Period),
		zap.Bool("adjacency", choice.adjacency),
		zap.Bool("same_day_lab", choice.sameDayLab))
}
