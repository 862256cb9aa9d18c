package trace

// FIFO is the message queue of a census. A message inserted using Send will
// only be delivered after Sync is called, so each Sync advances the protocol by
// one hop. It is not safe for concurrent use.
//
//	[ RX Buffer  |  TX Buffer  |  free ]
//	  ^ rxStart    ^ rxStart + rxSize
type FIFO struct {
	buf     []Message // the message ring buffer
	rxStart int       // the first offset that we should read
	rxSize  int       // the number of messages left to read in this hop
	txSize  int       // the number of messages sent in this hop
}

func NewFIFO(bufsz int) *FIFO {
	if bufsz < 1 {
		bufsz = 1
	}
	return &FIFO{buf: make([]Message, bufsz)}
}

func (p *FIFO) index(off int) int {
	idx := p.rxStart + off
	if idx >= len(p.buf) {
		idx -= len(p.buf)
	}
	return idx
}

// Recv pops the next message of the current hop.
func (p *FIFO) Recv() (Message, bool) {
	if p.rxSize == 0 {
		return Message{}, false
	}
	msg := p.buf[p.rxStart]
	// drop the path so the buffer does not pin it
	p.buf[p.rxStart] = Message{}
	p.rxStart = p.index(1)
	p.rxSize--
	return msg, true
}

// Send queues m for the next hop.
func (p *FIFO) Send(m Message) {
	used := p.rxSize + p.txSize
	if used == len(p.buf) {
		// out of slots: unroll the ring into a buffer twice the size
		nb := make([]Message, 2*len(p.buf))
		for i := 0; i < used; i++ {
			nb[i] = p.buf[p.index(i)]
		}
		p.buf = nb
		p.rxStart = 0
	}
	p.buf[p.index(used)] = m
	p.txSize++
}

// Sync makes everything sent so far receivable. Messages of the current hop
// that were not received stay ahead of them.
func (p *FIFO) Sync() {
	p.rxSize += p.txSize
	p.txSize = 0
}

// Len is the number of messages Recv can return before the next Sync.
func (p *FIFO) Len() int {
	return p.rxSize
}

// Pending is the number of messages waiting for the next Sync.
func (p *FIFO) Pending() int {
	return p.txSize
}
