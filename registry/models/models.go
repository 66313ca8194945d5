package models

import "time"

// Package is a published unit of content in the registry. Rows are
// immutable after publish; the only mutation is full removal on
// retirement.
type Package struct {
	ID      int64
	Name    string
	Created time.Time
}

type OwnerKind int

const (
	OwnerKindUser OwnerKind = iota
	OwnerKindGroup
)

// Owner is either an individual account or a named group. Group
// ownership grants publish rights to members but never delete rights.
type Owner struct {
	ID      int64
	Kind    OwnerKind
	Account string // account handle for users, group slug for groups
}

func (o Owner) IsUser() bool  { return o.Kind == OwnerKindUser }
func (o Owner) IsGroup() bool { return o.Kind == OwnerKindGroup }

// Rights is the effective permission level of a caller with respect to
// a package. It is a closed enumeration; switches over it should be
// exhaustive.
type Rights int

const (
	RightsNone Rights = iota
	RightsPublish
	RightsFull
)

func (r Rights) String() string {
	switch r {
	case RightsFull:
		return "full"
	case RightsPublish:
		return "publish"
	default:
		return "none"
	}
}

// Requester is the authenticated caller as handed to us by the session
// layer. Interactive is true only for cookie-session callers; API
// tokens set it to false.
type Requester struct {
	Account     string
	Interactive bool
}

// JobKind names the follow-up work scheduled when a package is retired.
type JobKind string

const (
	JobSyncGitIndex    JobKind = "sync_git_index"
	JobSyncSparseIndex JobKind = "sync_sparse_index"
	JobPurgeStorage    JobKind = "purge_storage"
)

type JobStatus int

const (
	JobPending JobStatus = iota
	JobRunning
	JobDone
)

// Job is one row of the retirement outbox. It is written in the same
// transaction as the package delete and drained by the dispatcher.
type Job struct {
	ID       int64
	Kind     JobKind
	Payload  string // package name
	Status   JobStatus
	Attempts int
	Created  time.Time
}

// Version is one published release of a package. Versions are removed
// by cascade when their package is retired.
type Version struct {
	ID        int64
	PackageID int64
	Num       string
	Created   time.Time
}

// Dependency is a directed edge from a version of one package onto
// another package. Any inbound edge makes the target package a reverse
// dependency.
type Dependency struct {
	ID        int64
	VersionID int64
	PackageID int64 // the package depended upon
	Req       string
}
