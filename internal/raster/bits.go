package raster

// bitWriter appends bits to a byte slice, most significant bit first.
type bitWriter struct {
	buf  []byte
	cur  byte
	nbit uint
}

func (w *bitWriter) bit(v bool) {
	w.cur <<= 1
	if v {
		w.cur |= 1
	}
	w.nbit++
	if w.nbit == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.nbit = 0, 0
	}
}

func (w *bitWriter) zeros(n int) {
	for ; n > 0 && w.nbit != 0; n-- {
		w.bit(false)
	}
	for ; n >= 8; n -= 8 {
		w.buf = append(w.buf, 0)
	}
	for ; n > 0; n-- {
		w.bit(false)
	}
}

// flush pads a partial trailing byte with zero bits and returns the buffer.
func (w *bitWriter) flush() []byte {
	if w.nbit != 0 {
		w.buf = append(w.buf, w.cur<<(8-w.nbit))
		w.cur, w.nbit = 0, 0
	}
	return w.buf
}
