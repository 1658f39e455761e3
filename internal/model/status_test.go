package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRemoteRoundTrip(t *testing.T) {
	for _, l := range Lanes {
		remote := ToRemote(l)
		assert.True(t, remote.Known(), "lane %s should map to a known remote status", l)
		assert.Equal(t, remote, ToRemote(ToLane(ToRemote(l))))
		assert.Equal(t, l, ToLane(remote))
	}
}

func TestUnknownStatusPassesThrough(t *testing.T) {
	lane := ToLane(RemoteStatus("archived"))
	assert.Equal(t, Lane("archived"), lane)
	assert.False(t, lane.Valid())
	assert.Equal(t, RemoteStatus("archived"), ToRemote(lane))
}

func TestLaneStepClamps(t *testing.T) {
	tests := []struct {
		lane Lane
		dir  Direction
		want Lane
	}{
		{LaneBacklog, Forward, LaneInProgress},
		{LaneInProgress, Forward, LaneComplete},
		{LaneComplete, Forward, LaneComplete},
		{LaneComplete, Backward, LaneInProgress},
		{LaneInProgress, Backward, LaneBacklog},
		{LaneBacklog, Backward, LaneBacklog},
		{Lane("archived"), Forward, Lane("archived")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.lane.Step(tt.dir), "%s step %d", tt.lane, tt.dir)
	}
}

func TestRoleCanUseTasks(t *testing.T) {
	assert.True(t, RoleStudent.CanUseTasks())
	assert.True(t, RoleTeacher.CanUseTasks())
	assert.False(t, RoleAdmin.CanUseTasks())
	assert.False(t, Role("").CanUseTasks())
}

func TestParseLane(t *testing.T) {
	tests := map[string]Lane{
		"backlog":     LaneBacklog,
		"TODO":        LaneBacklog,
		"in_progress": LaneInProgress,
		"in-progress": LaneInProgress,
		" doing ":     LaneInProgress,
		"done":        LaneComplete,
		"Complete":    LaneComplete,
	}
	for in, want := range tests {
		got, err := ParseLane(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLane("archived")
	assert.Error(t, err)
}
