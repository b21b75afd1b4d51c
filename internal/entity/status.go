package entity

// Status is the lifecycle marker of a remote fetch for one entity id.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusPending    Status = "pending"
	StatusRefreshing Status = "refreshing"
	StatusFulfilled  Status = "fulfilled"
	StatusRejected   Status = "rejected"
)

// FetchStatus is the status record kept per entity id. Err is set only when rejected.
type FetchStatus struct {
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

// Idle is the implicit status of any id without a record.
var Idle = FetchStatus{Status: StatusIdle}

// InFlight reports whether a request for the id has been dispatched and not settled.
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusRefreshing
}

// Settled reports whether the last request completed either way.
func (s Status) Settled() bool {
	return s == StatusFulfilled || s == StatusRejected
}

// ShouldFetch is the precondition gate for fetch-by-id requests. Without reload,
// only idle and rejected ids may be fetched, which keeps at most one request in
// flight per id.
func ShouldFetch(current Status, reload bool) bool {
	if reload {
		return true
	}
	return current == StatusIdle || current == StatusRejected || current == ""
}

// Begin returns the status entered when a request is dispatched. Forced reloads
// enter refreshing so readers can tell a first load from a refresh.
func Begin(reload bool) FetchStatus {
	if reload {
		return FetchStatus{Status: StatusRefreshing}
	}
	return FetchStatus{Status: StatusPending}
}

// Fulfilled is the status after a successful settlement.
func Fulfilled() FetchStatus {
	return FetchStatus{Status: StatusFulfilled}
}

// Rejected is the status after a failed settlement.
func Rejected(err error) FetchStatus {
	return FetchStatus{Status: StatusRejected, Err: err}
}
