package checkin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parishdesk/backend/internal/models"
)

var testNow = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

func childAgedMonths(months int) *models.Child {
	dob := testNow.AddDate(0, -months, 0)
	return &models.Child{ID: uuid.New(), DateOfBirth: &dob}
}

func room(name string, minAge, maxAge, capacity, count int) *models.Room {
	return &models.Room{
		ID:           uuid.New(),
		Name:         name,
		MinAgeMonths: minAge,
		MaxAgeMonths: maxAge,
		Capacity:     capacity,
		CurrentCount: count,
	}
}

func TestAgeInMonths(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"exactly one year", time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), 12},
		{"day not yet reached", time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC), 11},
		{"day just passed", time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC), 12},
		{"newborn same day", time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC), 0},
		{"three weeks old", time.Date(2026, time.May, 25, 0, 0, 0, 0, time.UTC), 0},
		{"year boundary", time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC), 5},
		{"future dob goes negative", time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeInMonths(tt.dob, now))
		})
	}
}

func TestFindRoomForChild_EligibilityBoundaries(t *testing.T) {
	toddlers := room("Toddlers", 12, 23, 10, 0)
	rooms := []*models.Room{toddlers}

	assert.Equal(t, toddlers, FindRoomForChild(childAgedMonths(12), rooms, testNow), "age == min is eligible")
	assert.Equal(t, toddlers, FindRoomForChild(childAgedMonths(23), rooms, testNow), "age == max is eligible")
	assert.Nil(t, FindRoomForChild(childAgedMonths(11), rooms, testNow), "one month under min")
	assert.Nil(t, FindRoomForChild(childAgedMonths(24), rooms, testNow), "one month over max")
}

func TestFindRoomForChild_NoEligibleRoom(t *testing.T) {
	rooms := []*models.Room{room("Nursery", 0, 23, 10, 0)}
	assert.Nil(t, FindRoomForChild(childAgedMonths(36), rooms, testNow), "no near-miss fallback")
}

func TestFindRoomForChild_EmptyInputs(t *testing.T) {
	assert.Nil(t, FindRoomForChild(childAgedMonths(18), nil, testNow))
	assert.Nil(t, FindRoomForChild(childAgedMonths(18), []*models.Room{}, testNow))
	assert.Nil(t, FindRoomForChild(&models.Child{ID: uuid.New()}, []*models.Room{room("A", 0, 120, 10, 0)}, testNow),
		"child without date of birth")
	assert.Nil(t, FindRoomForChild(nil, []*models.Room{room("A", 0, 120, 10, 0)}, testNow))
}

func TestFindRoomForChild_PrefersOpenCapacity(t *testing.T) {
	full := room("A", 12, 36, 10, 10)
	open := room("B", 12, 36, 10, 5)

	got := FindRoomForChild(childAgedMonths(24), []*models.Room{full, open}, testNow)
	assert.Equal(t, open, got, "full room listed first must lose to an open one")
}

func TestFindRoomForChild_OverCapacityTreatedAsFull(t *testing.T) {
	over := room("A", 0, 36, 10, 12)
	open := room("B", 0, 36, 10, 9)

	got := FindRoomForChild(childAgedMonths(6), []*models.Room{over, open}, testNow)
	assert.Equal(t, open, got, "count beyond capacity still counts as at capacity")
}

func TestFindRoomForChild_LeastCrowdedTieBreak(t *testing.T) {
	busier := room("A", 12, 36, 10, 3)
	quieter := room("B", 12, 36, 10, 1)

	got := FindRoomForChild(childAgedMonths(24), []*models.Room{busier, quieter}, testNow)
	assert.Equal(t, quieter, got)
}

func TestFindRoomForChild_BothFullStillPicksLeastCrowded(t *testing.T) {
	packed := room("A", 0, 36, 5, 9)
	merelyFull := room("B", 0, 36, 5, 5)

	got := FindRoomForChild(childAgedMonths(12), []*models.Room{packed, merelyFull}, testNow)
	assert.Equal(t, merelyFull, got, "among full rooms the lower count wins")
}

func TestFindRoomForChild_StableOrderAmongEquals(t *testing.T) {
	first := room("First", 12, 36, 10, 2)
	second := room("Second", 12, 36, 10, 2)

	got := FindRoomForChild(childAgedMonths(24), []*models.Room{first, second}, testNow)
	assert.Equal(t, first, got, "identical rooms resolve to input order")

	got = FindRoomForChild(childAgedMonths(24), []*models.Room{second, first}, testNow)
	assert.Equal(t, second, got)
}

func TestFindRoomForChild_ZeroCountBeatsNothing(t *testing.T) {
	// A room freshly created reports zero occupancy and zero capacity; it is
	// at capacity by definition and loses to any open room.
	empty := room("Unconfigured", 0, 36, 0, 0)
	open := room("Open", 0, 36, 8, 4)

	got := FindRoomForChild(childAgedMonths(12), []*models.Room{empty, open}, testNow)
	assert.Equal(t, open, got)
}

func TestFindRoomForChild_FutureDateOfBirth(t *testing.T) {
	dob := testNow.AddDate(0, 2, 0)
	child := &models.Child{ID: uuid.New(), DateOfBirth: &dob}
	rooms := []*models.Room{room("Nursery", 0, 23, 10, 0)}

	assert.Nil(t, FindRoomForChild(child, rooms, testNow), "negative age matches no room")
}

func TestFindRoomForChild_DoesNotReorderInput(t *testing.T) {
	a := room("A", 0, 36, 10, 9)
	b := room("B", 0, 36, 10, 1)
	rooms := []*models.Room{a, b}

	_ = FindRoomForChild(childAgedMonths(12), rooms, testNow)
	assert.Equal(t, []*models.Room{a, b}, rooms, "caller's slice order is preserved")
}
