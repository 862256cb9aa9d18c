package trace

import (
	"strconv"
	"strings"
)

type MsgType int

const (
	Forward MsgType = iota
	Echo
	Publish
	Broadcast
	numMsgTypes
)

func (t MsgType) String() string {
	switch t {
	case Forward:
		return "forward"
	case Echo:
		return "echo"
	case Publish:
		return "publish"
	case Broadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Message is one hop of the tracing protocol. Forward messages carry a TTL,
// publish and broadcast messages carry the path traced so far. Broadcasts have
// no target.
type Message struct {
	Type   MsgType
	Source int
	Target int
	R      uint64
	GX     uint64
	TTL    int
	Path   []int
}

// PathKey renders the path as space-separated node ids, the form cycles are
// deduplicated by.
func (m *Message) PathKey() string {
	var b strings.Builder
	for i, id := range m.Path {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}
