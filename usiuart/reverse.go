// usiuart/reverse.go

package usiuart

// The shift peripheral moves the most significant bit first; the line
// carries the least significant bit first. Every byte crosses this table
// once on its way in and once on its way out.
var reverseTable = func() (t [256]byte) {
	for i := range t {
		v := byte(i)
		v = v>>4 | v<<4
		v = (v&0xCC)>>2 | (v&0x33)<<2
		v = (v&0xAA)>>1 | (v&0x55)<<1
		t[i] = v
	}
	return t
}()

// Reverse returns b with its bit order reversed. Reverse(Reverse(b)) == b.
func Reverse(b byte) byte { return reverseTable[b] }
