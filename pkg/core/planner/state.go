package planner

import (
	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

// NeverAssignedGap is the gap used for families without any previous duty
const NeverAssignedGap = 9999

// assignmentState tracks running counts and last duty dates during a walk.
// It is threaded through the day loop explicitly so single steps can be tested.
type assignmentState struct {
	counts   map[model.FamilyID]int
	lastDate map[model.FamilyID]model.Date
}

func newAssignmentState() *assignmentState {
	return &assignmentState{
		counts:   make(map[model.FamilyID]int),
		lastDate: make(map[model.FamilyID]model.Date),
	}
}

// gap returns the days between the family's last duty and date
func (s *assignmentState) gap(id model.FamilyID, date model.Date) int {
	last, ok := s.lastDate[id]
	if !ok {
		return NeverAssignedGap
	}
	return model.DaysBetween(last, date)
}

// seenBefore reports whether the family has any tracked duty
func (s *assignmentState) seenBefore(id model.FamilyID) bool {
	_, ok := s.lastDate[id]
	return ok
}

// record books a duty for the family on date
func (s *assignmentState) record(id model.FamilyID, date model.Date) {
	s.counts[id]++
	s.lastDate[id] = date
}

// touch moves the last duty date without counting (used for manual days)
func (s *assignmentState) touch(id model.FamilyID, date model.Date) {
	s.lastDate[id] = date
}

// touchIfLater moves the last duty date only forward
func (s *assignmentState) touchIfLater(id model.FamilyID, date model.Date) {
	if last, ok := s.lastDate[id]; !ok || date.After(last) {
		s.lastDate[id] = date
	}
}
