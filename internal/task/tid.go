// Package task implements the task descriptor table: allocation,
// the tagged blocking-state union, and the initial-frame contract for
// a freshly created task.
package task

import "fmt"

// Tid identifies a task descriptor slot. It is a small non-negative
// integer; capacity is fixed at table construction.
type Tid int32

// OptTid is the tagged-union style optional Tid (§9: "a tag word plus a
// discriminated record, never separate flag bools").
type OptTid struct {
	tid Tid
	set bool
}

// NoTid is the empty OptTid.
var NoTid = OptTid{}

// Some wraps a concrete Tid.
func Some(tid Tid) OptTid { return OptTid{tid: tid, set: true} }

func (o OptTid) Get() (Tid, bool) { return o.tid, o.set }
func (o OptTid) IsSome() bool     { return o.set }

// MustGet panics if the OptTid is empty; used where the caller has
// already checked IsSome or the invariant guarantees a value.
func (o OptTid) MustGet() Tid {
	if !o.set {
		panic("task: OptTid.MustGet on empty value")
	}
	return o.tid
}

func (o OptTid) String() string {
	if !o.set {
		return "<none>"
	}
	return fmt.Sprintf("%d", o.tid)
}
