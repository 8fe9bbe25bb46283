package verify

// reversedHex encodes b as lower-case hex with the byte order flipped.
// The platform stores certificate serial numbers least-significant byte
// first; the conventional rendering is most-significant first.
func reversedHex(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, len(b)*2)
	for i := len(b) - 1; i >= 0; i-- {
		out = append(out, digits[b[i]>>4], digits[b[i]&0xf])
	}
	return string(out)
}
