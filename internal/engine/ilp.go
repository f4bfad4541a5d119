package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/campusforge/timetable-engine/internal/models"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

// Objective weights. Placement rewards scale with category priority so the
// solver keeps core sessions when it cannot keep everything; soft-constraint
// penalties nudge it toward cleaner slots without forbidding them.
const (
	placementWeight   = 10.0
	adjacencyPenalty  = 2.0
	sameDayLabPenalty = 3.0
	labCapPenalty     = 4.0
	underMinBonus     = 1.0

	integralityTol = 1e-6
	boundTol       = 1e-9
	simplexTol     = 1e-10
	maxSolverNodes = 500
)

// ILPSolver seats residual sessions the greedy pass left behind by solving
// a 0-1 program: LP relaxations via the simplex method with branch and
// bound on fractional placements. It never fails a run; on any trouble it
// falls back to its best incumbent, which is feasible by construction.
type ILPSolver struct {
	ix      *snapshotIndex
	tracker *ConstraintTracker
	cfg     Config
	logger  *zap.Logger
}

func newILPSolver(ix *snapshotIndex, tracker *ConstraintTracker, cfg Config, logger *zap.Logger) *ILPSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ILPSolver{ix: ix, tracker: tracker, cfg: cfg, logger: logger}
}

// ilpVariable is one statically feasible (session, block, room, faculty)
// placement choice.
type ilpVariable struct {
	index      int
	session    *models.Session
	block      []*models.TimeSlot
	room       *models.Room
	facultyID  string
	reward     float64
	adjacency  bool
	sameDayLab bool
	overCap    bool
}

// ilpOutcome aggregates what the solver phase produced.
type ilpOutcome struct {
	entries         []models.TimetableEntry
	placed          int
	budgetExhausted bool
}

// Solve builds the variable space for the residual sessions, runs branch and
// bound within the configured wall-clock budget and commits the best
// incumbent. Sessions that stay unseated are marked unplaced with a reason.
func (s *ILPSolver) Solve(ctx context.Context, runID string, residual []*models.Session) (*ilpOutcome, error) {
	outcome := &ilpOutcome{}
	if len(residual) == 0 {
		return outcome, nil
	}

	deadline := time.Now().Add(s.cfg.SolverBudget)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	vars, zeroReason := s.buildVariables(residual)
	s.logger.Info("solver formulation built",
		zap.Int("sessions", len(residual)),
		zap.Int("variables", len(vars)))

	var chosen []*ilpVariable
	if len(vars) > 0 {
		var exhausted bool
		chosen, exhausted = s.branchAndBound(ctx, vars, deadline)
		outcome.budgetExhausted = exhausted
	}

	if err := s.applyIncumbent(runID, chosen, outcome); err != nil {
		return nil, err
	}

	for _, session := range residual {
		if session.Status == models.SessionStatusPlaced {
			continue
		}
		session.Status = models.SessionStatusUnplaced
		if reason, ok := zeroReason[session.ID]; ok {
			session.Reason = reason
		} else if session.Reason == "" {
			session.Reason = models.UnplacedNoFreeSlot
		}
	}

	return outcome, nil
}

// buildVariables enumerates statically feasible placement choices per
// session, pruned against the occupancy already committed by the greedy
// phase. Sessions with zero choices get the reason recorded up front.
func (s *ILPSolver) buildVariables(residual []*models.Session) ([]*ilpVariable, map[int]models.UnplacedReason) {
	var vars []*ilpVariable
	zeroReason := make(map[int]models.UnplacedReason)

	for _, session := range residual {
		course := s.ix.courses[session.CourseID]
		group := s.ix.groups[session.GroupID]
		if course == nil || group == nil {
			zeroReason[session.ID] = models.UnplacedNoFreeSlot
			continue
		}

		rooms := s.ix.roomsFor(course, group.Size)
		if len(rooms) == 0 {
			zeroReason[session.ID] = models.UnplacedNoCompatibleRoom
			continue
		}

		var candidates []string
		for _, facultyID := range s.ix.facultyFor(course) {
			if s.tracker.FacultyHasBudget(facultyID, session.Duration) {
				candidates = append(candidates, facultyID)
			}
		}
		if len(candidates) == 0 {
			zeroReason[session.ID] = models.UnplacedNoFacultyAvailable
			continue
		}

		before := len(vars)
		for _, facultyID := range candidates {
			member := s.ix.faculty[facultyID]
			for _, room := range rooms {
				for _, slot := range s.ix.orderedSlots {
					block := s.ix.blockSlots(slot, session.Duration)
					if block == nil {
						continue
					}
					if !s.tracker.CanPlace(session, block, room, facultyID) {
						continue
					}

					v := &ilpVariable{
						index:      len(vars),
						session:    session,
						block:      block,
						room:       room,
						facultyID:  facultyID,
						adjacency:  s.tracker.ViolatesAdjacency(session, block),
						sameDayLab: s.tracker.HasSameLabToday(session, slot.Day),
						overCap:    s.tracker.WouldExceedLabCap(session, slot.Day),
					}
					v.reward = placementWeight * float64(models.CategoryPriority(session.Category))
					if v.adjacency {
						v.reward -= adjacencyPenalty
					}
					if v.sameDayLab {
						v.reward -= sameDayLabPenalty
					}
					if v.overCap {
						v.reward -= labCapPenalty
					}
					if member != nil && member.MinHoursPerWeek > 0 && s.tracker.FacultyHours(facultyID) < member.MinHoursPerWeek {
						v.reward += underMinBonus
					}
					vars = append(vars, v)
				}
			}
		}
		if len(vars) == before {
			zeroReason[session.ID] = models.UnplacedNoFreeSlot
		}
	}

	return vars, zeroReason
}

// conflicts reports whether two variables can never both be 1: same session,
// or an overlapping slot shared by the same faculty, room or group.
func conflicts(a, b *ilpVariable) bool {
	if a.session.ID == b.session.ID {
		return true
	}
	sameFaculty := a.facultyID == b.facultyID
	sameRoom := a.room.ID == b.room.ID
	sameGroup := a.session.GroupID == b.session.GroupID
	if !sameFaculty && !sameRoom && !sameGroup {
		return false
	}
	for _, sa := range a.block {
		for _, sb := range b.block {
			if sa.ID == sb.ID {
				return true
			}
		}
	}
	return false
}

// bbNode is one branch-and-bound subproblem: some variables fixed to 1,
// some banned to 0.
type bbNode struct {
	fixed  []int
	banned map[int]bool
}

// branchAndBound explores the 0-1 space depth first, fixing the most
// fractional relaxation variable to 1 before 0, pruning on the LP bound.
// It returns the best incumbent found and whether the budget cut it short.
func (s *ILPSolver) branchAndBound(ctx context.Context, vars []*ilpVariable, deadline time.Time) ([]*ilpVariable, bool) {
	best := s.greedyIncumbent(vars)
	bestValue := incumbentValue(best)

	stack := []*bbNode{{banned: map[int]bool{}}}
	nodes := 0
	exhausted := false

	for len(stack) > 0 {
		if ctx.Err() != nil || time.Now().After(deadline) || nodes >= maxSolverNodes {
			exhausted = true
			break
		}
		nodes++

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		active, fixedValue := s.activeVariables(vars, node)
		if fixedValue+optimisticBound(vars, active) <= bestValue+boundTol {
			continue
		}
		if len(active) == 0 {
			if fixedValue > bestValue+boundTol {
				best = collect(vars, node.fixed)
				bestValue = fixedValue
			}
			continue
		}

		xs, relaxed, err := s.solveRelaxation(vars, active)
		if err != nil {
			s.logger.Debug("relaxation failed; node dropped", zap.Error(err))
			continue
		}
		if fixedValue+relaxed <= bestValue+boundTol {
			continue
		}

		branch := -1
		bestFrac := math.Inf(1)
		for i, x := range xs {
			if x > integralityTol && x < 1-integralityTol {
				frac := math.Abs(x - 0.5)
				if frac < bestFrac {
					bestFrac = frac
					branch = i
				}
			}
		}

		if branch == -1 {
			var taken []int
			taken = append(taken, node.fixed...)
			for i, x := range xs {
				if x > 1-integralityTol {
					taken = append(taken, active[i])
				}
			}
			value := incumbentValue(collect(vars, taken))
			if value > bestValue+boundTol {
				best = collect(vars, taken)
				bestValue = value
			}
			continue
		}

		branchVar := active[branch]
		zero := &bbNode{fixed: node.fixed, banned: cloneBanned(node.banned)}
		zero.banned[branchVar] = true
		one := &bbNode{fixed: append(append([]int{}, node.fixed...), branchVar), banned: node.banned}
		stack = append(stack, zero, one)
	}

	if exhausted {
		s.logger.Warn("solver budget exhausted; returning incumbent",
			zap.Int("nodes", nodes),
			zap.Int("incumbent_size", len(best)))
	}
	return best, exhausted
}

// activeVariables filters vars down to those still choosable under the node
// and returns the objective value already locked in by its fixed set.
func (s *ILPSolver) activeVariables(vars []*ilpVariable, node *bbNode) ([]int, float64) {
	fixedValue := 0.0
	fixedVars := make([]*ilpVariable, 0, len(node.fixed))
	fixedHours := make(map[string]int)
	for _, idx := range node.fixed {
		v := vars[idx]
		fixedVars = append(fixedVars, v)
		fixedValue += v.reward
		fixedHours[v.facultyID] += v.session.Duration
	}

	var active []int
	for _, v := range vars {
		if node.banned[v.index] {
			continue
		}
		clashes := false
		for _, f := range fixedVars {
			if v.index == f.index || conflicts(v, f) {
				clashes = true
				break
			}
		}
		if clashes {
			continue
		}
		if member := s.ix.faculty[v.facultyID]; member != nil && member.MaxHoursPerWeek > 0 {
			remaining := member.MaxHoursPerWeek - s.tracker.FacultyHours(v.facultyID) - fixedHours[v.facultyID]
			if v.session.Duration > remaining {
				continue
			}
		}
		active = append(active, v.index)
	}
	return active, fixedValue
}

// optimisticBound sums the best reward per session over the active set, a
// cheap upper bound on the relaxation used before paying for a simplex
// solve. Valid because every reward is positive and each session may be
// placed at most once.
func optimisticBound(vars []*ilpVariable, active []int) float64 {
	bestPerSession := make(map[int]float64)
	for _, idx := range active {
		v := vars[idx]
		if v.reward > bestPerSession[v.session.ID] {
			bestPerSession[v.session.ID] = v.reward
		}
	}
	total := 0.0
	for _, reward := range bestPerSession {
		total += reward
	}
	return total
}

// solveRelaxation solves the LP relaxation over the active variables. The
// program is assembled directly in standard form: inequality rows get one
// slack column each, so the simplex solver sees A x = b with x >= 0.
func (s *ILPSolver) solveRelaxation(vars []*ilpVariable, active []int) ([]float64, float64, error) {
	n := len(active)
	col := make(map[int]int, n)
	for i, idx := range active {
		col[idx] = i
	}

	type row struct {
		coeffs map[int]float64
		bound  float64
	}
	var rows []row

	sessionRow := make(map[int]*row)
	resourceRow := make(map[string]*row)
	facultyLoad := make(map[string][]int)

	for i, idx := range active {
		v := vars[idx]

		sr := sessionRow[v.session.ID]
		if sr == nil {
			sr = &row{coeffs: map[int]float64{}, bound: 1}
			sessionRow[v.session.ID] = sr
		}
		sr.coeffs[i] = 1

		for _, slot := range v.block {
			for _, key := range []string{
				"f|" + slot.ID + "|" + v.facultyID,
				"r|" + slot.ID + "|" + v.room.ID,
				"g|" + slot.ID + "|" + v.session.GroupID,
			} {
				rr := resourceRow[key]
				if rr == nil {
					rr = &row{coeffs: map[int]float64{}, bound: 1}
					resourceRow[key] = rr
				}
				rr.coeffs[i] = 1
			}
		}

		facultyLoad[v.facultyID] = append(facultyLoad[v.facultyID], i)
	}

	sessionIDs := make([]int, 0, len(sessionRow))
	for id := range sessionRow {
		sessionIDs = append(sessionIDs, id)
	}
	sort.Ints(sessionIDs)
	for _, id := range sessionIDs {
		rows = append(rows, *sessionRow[id])
	}

	resourceKeys := make([]string, 0, len(resourceRow))
	for key, rr := range resourceRow {
		if len(rr.coeffs) > 1 {
			resourceKeys = append(resourceKeys, key)
		}
	}
	sort.Strings(resourceKeys)
	for _, key := range resourceKeys {
		rows = append(rows, *resourceRow[key])
	}

	facultyIDs := make([]string, 0, len(facultyLoad))
	for id := range facultyLoad {
		facultyIDs = append(facultyIDs, id)
	}
	sort.Strings(facultyIDs)
	for _, facultyID := range facultyIDs {
		member := s.ix.faculty[facultyID]
		if member == nil || member.MaxHoursPerWeek <= 0 {
			continue
		}
		remaining := member.MaxHoursPerWeek - s.tracker.FacultyHours(facultyID)
		totalDur := 0
		coeffs := map[int]float64{}
		for _, i := range facultyLoad[facultyID] {
			dur := vars[active[i]].session.Duration
			coeffs[i] = float64(dur)
			totalDur += dur
		}
		if totalDur <= remaining {
			continue
		}
		rows = append(rows, row{coeffs: coeffs, bound: float64(remaining)})
	}

	m := len(rows)
	c := make([]float64, n+m)
	for i, idx := range active {
		c[i] = -vars[idx].reward
	}

	a := mat.NewDense(m, n+m, nil)
	b := make([]float64, m)
	for ri, r := range rows {
		for ci, coeff := range r.coeffs {
			a.Set(ri, ci, coeff)
		}
		a.Set(ri, n+ri, 1)
		b[ri] = r.bound
	}

	optF, optX, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		return nil, 0, err
	}
	return optX[:n], -optF, nil
}

// greedyIncumbent rounds the variable set into a feasible assignment by
// taking the highest-reward compatible variables first. It seeds the bound
// so pruning works immediately, and doubles as the answer of record when
// every relaxation fails.
func (s *ILPSolver) greedyIncumbent(vars []*ilpVariable) []*ilpVariable {
	order := make([]*ilpVariable, len(vars))
	copy(order, vars)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].reward != order[j].reward {
			return order[i].reward > order[j].reward
		}
		return order[i].index < order[j].index
	})

	var taken []*ilpVariable
	hours := make(map[string]int)

	for _, v := range order {
		ok := true
		for _, t := range taken {
			if v.index == t.index || conflicts(v, t) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if member := s.ix.faculty[v.facultyID]; member != nil && member.MaxHoursPerWeek > 0 {
			remaining := member.MaxHoursPerWeek - s.tracker.FacultyHours(v.facultyID) - hours[v.facultyID]
			if v.session.Duration > remaining {
				continue
			}
		}
		taken = append(taken, v)
		hours[v.facultyID] += v.session.Duration
	}
	return taken
}

// applyIncumbent commits the chosen variables and records their entries.
// A commit that no longer passes CanPlace means the formulation let two
// conflicting placements through, which is a defect.
func (s *ILPSolver) applyIncumbent(runID string, chosen []*ilpVariable, outcome *ilpOutcome) error {
	sort.SliceStable(chosen, func(i, j int) bool { return chosen[i].session.ID < chosen[j].session.ID })

	for _, v := range chosen {
		if !s.tracker.CanPlace(v.session, v.block, v.room, v.facultyID) {
			return appErrors.Clone(appErrors.ErrInvariant, fmt.Sprintf("solver emitted a conflicting placement for session %d", v.session.ID))
		}
		s.tracker.Commit(v.session, v.block, v.room, v.facultyID)
		v.session.Status = models.SessionStatusPlaced
		outcome.placed++

		for _, slot := range v.block {
			outcome.entries = append(outcome.entries, models.TimetableEntry{
				ID:        uuid.NewString(),
				RunID:     runID,
				SessionID: v.session.ID,
				CourseID:  v.session.CourseID,
				FacultyID: v.facultyID,
				RoomID:    v.room.ID,
				GroupID:   v.session.GroupID,
				SlotID:    slot.ID,
				Day:       slot.Day,
				Period:    slot.Period,
			})
		}

		s.logger.Debug("session placed by solver",
			zap.Int("session_id", v.session.ID),
			zap.String("course_id", v.session.CourseID),
			zap.String("faculty_id", v.facultyID),
			zap.String("room_id", v.room.ID),
			zap.Bool("adjacency", v.adjacency),
			zap.Bool("same_day_lab", v.sameDayLab),
			zap.Bool("over_lab_cap", v.overCap))
	}
	return nil
}

func incumbentValue(chosen []*ilpVariable) float64 {
	total := 0.0
	for _, v := range chosen {
		total += v.reward
	}
	return total
}

func collect(vars []*ilpVariable, indices []int) []*ilpVariable {
	result := make([]*ilpVariable, 0, len(indices))
	for _, idx := range indices {
		result = append(result, vars[idx])
	}
	return result
}

func cloneBanned(banned map[int]bool) map[int]bool {
	clone := make(map[int]bool, len(banned)+1)
	for k, v := range banned {
		clone[k] = v
	}
	return clone
}
