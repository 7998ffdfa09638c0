package discovery

import (
	"bytes"
	"net"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	props := []Property{
		{Name: "_tid", Value: []byte("abc123")},
		{Name: "_corid", Value: []byte("core-1")},
		{Name: "_displayname", Value: []byte("Nucleus")},
		{Name: "http_port", Value: []byte("9100")},
	}
	frame := encodeFrame(typeReply, props)

	kind, decoded, err := decodeFrame(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if kind != typeReply {
		t.Fatalf("expected reply kind, got %q", kind)
	}
	if len(decoded) != len(props) {
		t.Fatalf("expected %d properties, got %d", len(props), len(decoded))
	}
	for i, p := range props {
		if decoded[i].Name != p.Name || !bytes.Equal(decoded[i].Value, p.Value) {
			t.Errorf("property %d: expected %+v, got %+v", i, p, decoded[i])
		}
	}
}

func TestDecodeNullAndEmptyValues(t *testing.T) {
	frame := encodeFrame(typeQuery, []Property{
		{Name: "_tid", Value: nil},
		{Name: "_corid", Value: []byte{}},
	})
	_, decoded, err := decodeFrame(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded[0].Value != nil {
		t.Errorf("expected nil value for null marker, got %v", decoded[0].Value)
	}
	if decoded[1].Value == nil || len(decoded[1].Value) != 0 {
		t.Errorf("expected non-nil empty value, got %v", decoded[1].Value)
	}
}

func TestDecodeRejectsWrongMagicAndVersion(t *testing.T) {
	if _, _, err := decodeFrame([]byte("NOPE!!")); err == nil {
		t.Fatalf("expected an error for wrong magic")
	}
	bad := encodeFrame(typeQuery, nil)
	bad[4] = 0x01
	if _, _, err := decodeFrame(bad); err == nil {
		t.Fatalf("expected an error for unsupported version")
	}
}

func TestToCoreInfoDefaultsHTTPPort(t *testing.T) {
	props := []Property{{Name: "_corid", Value: []byte("core-1")}}
	addr := &net.UDPAddr{IP: net.ParseIP("10.0.0.5"), Port: 9003}
	info := toCoreInfo(addr, "tid-1", props)
	if info.Port != DefaultHTTPPort {
		t.Errorf("expected default port %d, got %d", DefaultHTTPPort, info.Port)
	}
	if info.Host != "10.0.0.5" || info.CoreID != "core-1" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestToCoreInfoParsesHTTPPort(t *testing.T) {
	props := []Property{{Name: "http_port", Value: []byte("9200")}}
	addr := &net.UDPAddr{IP: net.ParseIP("10.0.0.5"), Port: 9003}
	info := toCoreInfo(addr, "tid-1", props)
	if info.Port != 9200 {
		t.Errorf("expected port 9200, got %d", info.Port)
	}
}
