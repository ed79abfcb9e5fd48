package game

// body is a ring buffer of positions, head first. Pushing to the front and
// popping from the back are O(1); the buffer doubles when full.
type body struct {
	buf  []Position
	head int
	len  int
}

const initialBodyCapacity = 16

func newBody(capacity int) *body {
	if capacity < 1 {
		capacity = 1
	}
	return &body{buf: make([]Position, capacity)}
}

func (b *body) Len() int { return b.len }

func (b *body) PushFront(p Position) {
	if b.len == len(b.buf) {
		b.grow()
	}
	b.head = (b.head - 1 + len(b.buf)) % len(b.buf)
	b.buf[b.head] = p
	b.len++
}

func (b *body) PopBack() Position {
	if b.len == 0 {
		panic("game: pop from empty body")
	}
	p := b.Back()
	b.len--
	return p
}

func (b *body) Front() Position {
	return b.buf[b.head]
}

func (b *body) Back() Position {
	return b.buf[(b.head+b.len-1)%len(b.buf)]
}

// At returns the i-th segment counted from the head.
func (b *body) At(i int) Position {
	return b.buf[(b.head+i)%len(b.buf)]
}

// Slice copies the segments out, head first.
func (b *body) Slice() []Position {
	out := make([]Position, b.len)
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

func (b *body) grow() {
	buf := make([]Position, len(b.buf)*2)
	for i := 0; i < b.len; i++ {
		buf[i] = b.At(i)
	}
	b.buf = buf
	b.head = 0
}
