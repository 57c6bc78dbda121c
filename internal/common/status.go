package common

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	Active     AuctionStatus = "active"
	InProgress AuctionStatus = "in-progress"
	Completed  AuctionStatus = "completed"
	Expired    AuctionStatus = "expired"
	Deleted    AuctionStatus = "deleted"
)

// NonTerminalStatuses are the only statuses a lifecycle tick looks at.
var NonTerminalStatuses = []AuctionStatus{Active, InProgress}

// BrowsableStatuses are visible in the public listing.
var BrowsableStatuses = []AuctionStatus{Active, InProgress, Completed}

var transitions = map[AuctionStatus][]AuctionStatus{
	Active:     {InProgress, Expired, Deleted},
	InProgress: {Completed, Deleted},
}

func (s AuctionStatus) String() string {
	return string(s)
}

func (s AuctionStatus) IsValid() bool {
	switch s {
	case Active, InProgress, Completed, Expired, Deleted:
		return true
	}

	return false
}

func (s AuctionStatus) IsTerminal() bool {
	return s == Completed || s == Expired || s == Deleted
}

// CanTransitionTo reports whether next is a legal forward move from s.
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func StatusStrings(statuses []AuctionStatus) []string {
	s := make([]string, 0, len(statuses))
	for _, status := range statuses {
		s = append(s, string(status))
	}

	return s
}
