// ABOUTME: SOOD wire framing — the length-prefixed property encoding
// ABOUTME: Roon Cores use to announce themselves over UDP
package discovery

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	magic       = "SOOD"
	protoVer    = 0x02
	typeQuery   = byte('Q')
	typeReply   = byte('X')
	nullLength  = 0xFFFF
)

// Property is one name/value pair carried in a SOOD frame. A nil Value
// represents the wire's null-length marker (0xFFFF); an empty,
// non-nil Value represents the zero-length marker (0x0000).
type Property struct {
	Name  string
	Value []byte
}

func encodeFrame(kind byte, props []Property) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(protoVer)
	buf.WriteByte(kind)
	for _, p := range props {
		buf.WriteByte(byte(len(p.Name)))
		buf.WriteString(p.Name)
		var lenField [2]byte
		if p.Value == nil {
			binary.BigEndian.PutUint16(lenField[:], nullLength)
			buf.Write(lenField[:])
			continue
		}
		binary.BigEndian.PutUint16(lenField[:], uint16(len(p.Value)))
		buf.Write(lenField[:])
		buf.Write(p.Value)
	}
	return buf.Bytes()
}

// decodeFrame parses a raw SOOD datagram into its kind byte ('Q' or
// 'X') and property list.
func decodeFrame(data []byte) (byte, []Property, error) {
	if len(data) < 6 {
		return 0, nil, errors.New("sood: frame too short")
	}
	if string(data[:4]) != magic {
		return 0, nil, errors.New("sood: missing SOOD magic")
	}
	if data[4] != protoVer {
		return 0, nil, fmt.Errorf("sood: unsupported version %d", data[4])
	}
	kind := data[5]

	var props []Property
	pos := 6
	for pos < len(data) {
		nameLen := int(data[pos])
		pos++
		if pos+nameLen > len(data) {
			return 0, nil, errors.New("sood: truncated property name")
		}
		name := string(data[pos : pos+nameLen])
		pos += nameLen

		if pos+2 > len(data) {
			return 0, nil, errors.New("sood: truncated property length")
		}
		valLen := binary.BigEndian.Uint16(data[pos : pos+2])
		pos += 2

		var value []byte
		switch valLen {
		case nullLength:
			value = nil
		case 0:
			value = []byte{}
		default:
			if pos+int(valLen) > len(data) {
				return 0, nil, errors.New("sood: truncated property value")
			}
			value = append([]byte(nil), data[pos:pos+int(valLen)]...)
			pos += int(valLen)
		}
		props = append(props, Property{Name: name, Value: value})
	}
	return kind, props, nil
}

func propString(props []Property, name string) (string, bool) {
	for _, p := range props {
		if p.Name == name {
			if p.Value == nil {
				return "", false
			}
			return string(p.Value), true
		}
	}
	return "", false
}
