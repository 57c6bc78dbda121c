package common

const (
	BidAcceptedEvent   = "bid_accepted"
	StatusChangedEvent = "status_changed"
)

const (
	// RedisEventChannelPrefix + auction id is the pub/sub channel of one auction.
	RedisEventChannelPrefix = "auction_events:"
	// NatsEventSubjectPrefix + auction id is the NATS subject of one auction.
	NatsEventSubjectPrefix = "auction.events."
)
