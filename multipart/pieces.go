package multipart

// pieces is an aside buffer: an ordered list of byte spans kept back to back
// in a single arena. Spans are addressed by their end offsets.
type pieces struct {
	arena []byte
	ends  []int
}

func newPieces(capacity int) pieces {
	return pieces{
		arena: make([]byte, 0, capacity),
	}
}

func (p *pieces) append(data []byte) {
	if len(data) == 0 {
		return
	}

	p.arena = append(p.arena, data...)
	p.ends = append(p.ends, len(p.arena))
}

// len returns the total amount of bytes stored
func (p *pieces) len() int {
	return len(p.arena)
}

func (p *pieces) count() int {
	return len(p.ends)
}

func (p *pieces) piece(i int) []byte {
	var begin int
	if i > 0 {
		begin = p.ends[i-1]
	}

	return p.arena[begin:p.ends[i]]
}

// bytes returns all the spans joined. The result is only valid until the next
// modification of the buffer.
func (p *pieces) bytes() []byte {
	return p.arena
}

// truncate drops everything after the first n bytes
func (p *pieces) truncate(n int) {
	if n >= len(p.arena) {
		return
	}

	p.arena = p.arena[:n]

	for len(p.ends) > 0 && p.ends[len(p.ends)-1] >= n {
		p.ends = p.ends[:len(p.ends)-1]
	}

	if n > 0 {
		p.ends = append(p.ends, n)
	}
}

func (p *pieces) clear() {
	p.arena = p.arena[:0]
	p.ends = p.ends[:0]
}

func (p *pieces) release() {
	p.arena = nil
	p.ends = nil
}
