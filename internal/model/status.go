package model

// RemoteStatus is a status string in the remote collection's vocabulary.
type RemoteStatus string

const (
	RemoteTodo       RemoteStatus = "todo"
	RemoteInProgress RemoteStatus = "in-progress"
	RemoteDone       RemoteStatus = "done"
)

var laneToRemote = map[Lane]RemoteStatus{
	LaneBacklog:    RemoteTodo,
	LaneInProgress: RemoteInProgress,
	LaneComplete:   RemoteDone,
}

var remoteToLane = map[RemoteStatus]Lane{
	RemoteTodo:       LaneBacklog,
	RemoteInProgress: LaneInProgress,
	RemoteDone:       LaneComplete,
}

// ToRemote converts a lane to the remote vocabulary. Unmapped values pass
// through unchanged.
func ToRemote(l Lane) RemoteStatus {
	if s, ok := laneToRemote[l]; ok {
		return s
	}
	return RemoteStatus(l)
}

// ToLane converts a remote status to a lane. Unmapped values pass through
// unchanged; callers can detect them with Lane.Valid.
func ToLane(s RemoteStatus) Lane {
	if l, ok := remoteToLane[s]; ok {
		return l
	}
	return Lane(s)
}

// Known reports whether s belongs to the remote vocabulary.
func (s RemoteStatus) Known() bool {
	_, ok := remoteToLane[s]
	return ok
}
