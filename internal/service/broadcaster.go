package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// Message types pushed to dashboard clients
const (
	MsgReportCreated = "report_created"
	MsgReportFailed  = "report_failed"
)

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, interface{}) {}
