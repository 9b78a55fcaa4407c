package task

// Tag discriminates the blocking-state union. Never test blocking state
// with a collection of booleans; always dispatch on Tag.
type Tag uint8

const (
	Ready Tag = iota
	SendWait
	RecvWait
	ReplyWait
	EventWait
)

func (t Tag) String() string {
	switch t {
	case Ready:
		return "READY"
	case SendWait:
		return "SEND_WAIT"
	case RecvWait:
		return "RECV_WAIT"
	case ReplyWait:
		return "REPLY_WAIT"
	case EventWait:
		return "EVENT_WAIT"
	default:
		return "UNKNOWN"
	}
}

// State is the tagged union described in spec §3. Every variant's
// payload lives here; only the fields relevant to Tag are meaningful at
// any one time. Message and reply "buffers" are plain byte slices
// shared in one Go address space rather than simulated raw pointers —
// all task goroutines live in the same process, so a byte slice plus
// copy() preserves the borrowing contract (the lender is blocked until
// the borrow ends) without pretending to emulate user-space pointers.
type State struct {
	Tag Tag

	// SEND_WAIT: this task is blocked inside Send, queued on a receiver.
	Msg      []byte // the message payload, owned by the sender
	ReplyBuf []byte // where Reply should eventually write, capacity-bounded
	Next     OptTid // next sender in the receiver's FIFO send queue

	// RECV_WAIT: this task is blocked inside Receive with no sender queued.
	OutTid  *Tid   // where to write the eventual sender's Tid
	RecvBuf []byte // where to copy the sender's message, capacity-bounded

	// EVENT_WAIT: this task is blocked inside AwaitEvent.
	EventID int
}

// ReadyState is the zero-payload READY variant.
func ReadyState() State { return State{Tag: Ready} }
