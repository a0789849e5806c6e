// Package checkin implements child check-in: room management, the room
// assignment heuristic, and check-in/check-out records.
package checkin

import (
	"sort"
	"time"

	"github.com/parishdesk/backend/internal/models"
)

// AgeInMonths returns the number of complete calendar months between dob and
// now. A child born on the 15th has not completed the current month until the
// 15th of the next one. The result is negative for a future dob; callers do
// not special-case that, it simply matches no room.
func AgeInMonths(dob, now time.Time) int {
	months := (now.Year()-dob.Year())*12 + int(now.Month()) - int(dob.Month())
	if now.Day() < dob.Day() {
		months--
	}
	return months
}

// FindRoomForChild selects the single best room for the child, or nil when
// none is suitable. Rooms whose age range does not contain the child's age in
// months (inclusive on both bounds) are excluded outright; there is no
// near-miss fallback. Among eligible rooms, any room with open capacity beats
// a room at or over capacity, and ties go to the lower current count. Rooms
// that compare equal keep their input order, so the first listed wins.
//
// The returned room points into the rooms slice. No capacity is reserved:
// two un-synchronized calls can recommend the same last open spot.
func FindRoomForChild(child *models.Child, rooms []*models.Room, now time.Time) *models.Room {
	if child == nil || child.DateOfBirth == nil || len(rooms) == 0 {
		return nil
	}
	age := AgeInMonths(*child.DateOfBirth, now)

	var eligible []*models.Room
	for _, r := range rooms {
		if r == nil {
			continue
		}
		if age >= r.MinAgeMonths && age <= r.MaxAgeMonths {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.AtCapacity() != b.AtCapacity() {
			return !a.AtCapacity()
		}
		return a.CurrentCount < b.CurrentCount
	})
	return eligible[0]
}
