package model

import (
	"fmt"
	"strings"
	"time"
)

// Lane is a board column. The three known lanes are ordered
// Backlog → InProgress → Complete.
type Lane string

const (
	LaneBacklog    Lane = "backlog"
	LaneInProgress Lane = "in_progress"
	LaneComplete   Lane = "complete"
)

// Lanes lists the known lanes in board order.
var Lanes = []Lane{LaneBacklog, LaneInProgress, LaneComplete}

// Direction is a step along the lane order.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Index returns the lane's position in board order, or -1 for a lane
// that did not map from a known remote status.
func (l Lane) Index() int {
	for i, known := range Lanes {
		if l == known {
			return i
		}
	}
	return -1
}

// Valid reports whether l is one of the three known lanes.
func (l Lane) Valid() bool {
	return l.Index() >= 0
}

// Step returns the adjacent lane in direction d. The result is clamped:
// stepping backward from Backlog or forward from Complete returns l.
// Unknown lanes never move.
func (l Lane) Step(d Direction) Lane {
	i := l.Index()
	if i < 0 {
		return l
	}
	next := i + int(d)
	if next < 0 || next >= len(Lanes) {
		return l
	}
	return Lanes[next]
}

// Label is the user-facing column heading.
func (l Lane) Label() string {
	switch l {
	case LaneBacklog:
		return "To Do"
	case LaneInProgress:
		return "In Progress"
	case LaneComplete:
		return "Done"
	default:
		return string(l)
	}
}

// ParseLane accepts a lane name in either vocabulary, or a column label,
// case-insensitively: "backlog", "todo", "in_progress", "in-progress",
// "doing", "complete", "done".
func ParseLane(s string) (Lane, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "backlog", "todo", "to do", "to-do":
		return LaneBacklog, nil
	case "in_progress", "in-progress", "in progress", "doing", "wip":
		return LaneInProgress, nil
	case "complete", "completed", "done":
		return LaneComplete, nil
	default:
		return "", fmt.Errorf("unknown lane %q (want backlog, in_progress or complete)", s)
	}
}

// Task is a single to-do item owned by the authenticated user. ID and
// the timestamps are assigned by the remote collection.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Lane      `json:"status"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
