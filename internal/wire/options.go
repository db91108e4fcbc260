package wire

import (
	"fmt"
	"sort"

	"github.com/staticdhcpd/staticdhcpd/pkg/dhcpv4"
)

// Options is a map of DHCP option code to raw option data. Repeated codes
// in a single decode are concatenated per RFC 3396; encode re-splits values
// over 255 bytes into multiple on-wire occurrences of the same code.
type Options map[dhcpv4.OptionCode][]byte

// DecodeOptions parses a TLV options buffer (RFC 2132 §3), concatenating
// repeated occurrences of the same code in order (RFC 3396).
func DecodeOptions(data []byte) (Options, error) {
	opts := make(Options)
	i := 0
	for i < len(data) {
		code := dhcpv4.OptionCode(data[i])
		i++

		if code == dhcpv4.OptionPad {
			continue
		}
		if code == dhcpv4.OptionEnd {
			return opts, nil
		}

		if i >= len(data) {
			return nil, fmt.Errorf("truncated option %d: no length byte", code)
		}
		length := int(data[i])
		i++

		if i+length > len(data) {
			return nil, fmt.Errorf("truncated option %d: need %d bytes, have %d", code, length, len(data)-i)
		}

		if existing, ok := opts[code]; ok {
			merged := make([]byte, len(existing)+length)
			copy(merged, existing)
			copy(merged[len(existing):], data[i:i+length])
			opts[code] = merged
		} else {
			value := make([]byte, length)
			copy(value, data[i:i+length])
			opts[code] = value
		}
		i += length
	}
	return nil, fmt.Errorf("options buffer lacks END option")
}

// Encode serializes options in ascending code order, splitting any value
// longer than 255 bytes into consecutive same-code chunks (RFC 3396), and
// terminates with END.
func (opts Options) Encode() []byte {
	codes := make([]dhcpv4.OptionCode, 0, len(opts))
	for code := range opts {
		if code == dhcpv4.OptionPad || code == dhcpv4.OptionEnd {
			continue
		}
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	size := 1 // END
	for _, code := range codes {
		size += chunkedSize(opts[code])
	}

	buf := make([]byte, 0, size)
	for _, code := range codes {
		buf = appendChunked(buf, code, opts[code])
	}
	buf = append(buf, byte(dhcpv4.OptionEnd))
	return buf
}

func chunkedSize(value []byte) int {
	if len(value) == 0 {
		return 2
	}
	n := 0
	for off := 0; off < len(value); off += 255 {
		end := off + 255
		if end > len(value) {
			end = len(value)
		}
		n += 2 + (end - off)
	}
	return n
}

func appendChunked(buf []byte, code dhcpv4.OptionCode, value []byte) []byte {
	if len(value) == 0 {
		return append(buf, byte(code), 0)
	}
	for off := 0; off < len(value); off += 255 {
		end := off + 255
		if end > len(value) {
			end = len(value)
		}
		buf = append(buf, byte(code), byte(end-off))
		buf = append(buf, value[off:end]...)
	}
	return buf
}

func (opts Options) Get(code dhcpv4.OptionCode) ([]byte, bool) {
	v, ok := opts[code]
	return v, ok
}

func (opts Options) Set(code dhcpv4.OptionCode, value []byte) { opts[code] = value }

func (opts Options) SetIP(code dhcpv4.OptionCode, ip interface{}) {
	switch v := ip.(type) {
	case [4]byte:
		opts[code] = append([]byte(nil), v[:]...)
	case []byte:
		opts[code] = append([]byte(nil), v...)
	}
}

func (opts Options) SetUint32(code dhcpv4.OptionCode, v uint32) {
	opts[code] = dhcpv4.Uint32ToBytes(v)
}

func (opts Options) SetUint16(code dhcpv4.OptionCode, v uint16) {
	opts[code] = dhcpv4.Uint16ToBytes(v)
}

func (opts Options) SetString(code dhcpv4.OptionCode, s string) { opts[code] = []byte(s) }

func (opts Options) SetBool(code dhcpv4.OptionCode, v bool) {
	if v {
		opts[code] = []byte{0x01}
	} else {
		opts[code] = []byte{0x00}
	}
}

func (opts Options) Has(code dhcpv4.OptionCode) bool {
	_, ok := opts[code]
	return ok
}

func (opts Options) Delete(code dhcpv4.OptionCode) { delete(opts, code) }

func (opts Options) Clone() Options {
	clone := make(Options, len(opts))
	for k, v := range opts {
		clone[k] = append([]byte(nil), v...)
	}
	return clone
}
