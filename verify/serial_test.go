package verify

import "testing"

func TestReversedHex(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"single", []byte{0xab}, "ab"},
		{"ordering", []byte{0x01, 0x02, 0x03}, "030201"},
		{"nibbles", []byte{0x0f, 0xf0}, "f00f"},
		{"zeroes", []byte{0x00, 0x00}, "0000"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := reversedHex(c.in); got != c.want {
				t.Errorf("reversedHex(%x) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
