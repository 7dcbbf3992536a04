// Package domain holds the core lead types shared across modules.
package domain

// Status is the lifecycle state of a lead.
//
// Ingestion creates leads as StatusPending. Staff review moves them to
// StatusNew (accepted, triggers assignment) or StatusRejected (terminal).
// Later pipeline stages belong to the sales workflow and are managed there.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusNew      Status = "NEW"
	StatusRejected Status = "REJECTED"
)

// CanTransition reports whether a lead may move from s to target under
// review rules. Only PENDING leads can be accepted or rejected here.
func (s Status) CanTransition(target Status) bool {
	if s != StatusPending {
		return false
	}
	return target == StatusNew || target == StatusRejected
}

// ContactStatus tracks whether the customer has been reached yet.
type ContactStatus string

const (
	ContactNotContacted ContactStatus = "NOT_CONTACTED"
	ContactAttempted    ContactStatus = "ATTEMPTED"
	ContactReached      ContactStatus = "REACHED"
)

// Source identifies the partner or channel a lead came from.
type Source string

const (
	SourceCompareMyMove Source = "COMPAREMYMOVE"
	SourceReallyMoving  Source = "REALLYMOVING"
	SourceGetAMover     Source = "GETAMOVER"
	SourceWebsite       Source = "WEBSITE"
	SourceUnknown       Source = "UNKNOWN"
)
