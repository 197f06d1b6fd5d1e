package buildings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"campusexplorer/errs"
)

// FloorPlan is the floor a room sits on and the plan drawn for it.
type FloorPlan struct {
	Building string `json:"buildingId"`
	Room     string `json:"room"`
	Floor    int    `json:"floor"`
	Plan     string `json:"floorPlan"`
}

// FloorForRoom guesses the floor from a room number: hundreds digit and up,
// so 2150 is on floor 21 and 315 on floor 3. One and two digit rooms are on
// the ground floor (0).
func FloorForRoom(room string) (int, error) {
	room = strings.TrimSpace(room)
	digits := strings.TrimLeftFunc(room, func(r rune) bool { return r < '0' || r > '9' })
	end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		digits = digits[:end]
	}
	if digits == "" {
		return 0, errs.Validation("room", "must contain a room number")
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, errs.Validation("room", "must contain a room number")
	}
	return n / 100, nil
}

// LocateRoom resolves a room to the building's floor plan.
func (c *Catalog) LocateRoom(ctx context.Context, key, room string) (FloorPlan, error) {
	b, err := c.Get(ctx, key)
	if err != nil {
		return FloorPlan{}, err
	}
	floor, err := FloorForRoom(room)
	if err != nil {
		return FloorPlan{}, err
	}
	if floor >= b.Floors || floor >= len(b.FloorPlans) {
		return FloorPlan{}, errs.NotFound("floor plan", fmt.Sprintf("%s/%d", b.Key, floor))
	}
	return FloorPlan{Building: b.Key, Room: strings.TrimSpace(room), Floor: floor, Plan: b.FloorPlans[floor]}, nil
}
