package codec

import (
	"strings"
	"testing"
)

func TestEncodeRequestRoundTrip(t *testing.T) {
	body := map[string]interface{}{"zone_or_output_id": "z1", "control": "play"}
	data, err := EncodeRequest(42, "com.roonlabs.transport:2/control", body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	frame, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !frame.IsRequest {
		t.Fatalf("expected request frame")
	}
	req := frame.Request
	if req.ID != 42 {
		t.Errorf("id = %d, want 42", req.ID)
	}
	if req.Service != "com.roonlabs.transport:2" || req.Method != "control" {
		t.Errorf("service/method = %q/%q", req.Service, req.Method)
	}
	if req.Body["zone_or_output_id"] != "z1" {
		t.Errorf("body not round-tripped: %+v", req.Body)
	}
}

func TestEncodeResponseRoundTrip(t *testing.T) {
	body := map[string]interface{}{"core_id": "c1"}
	data, err := EncodeResponse(7, VerbComplete, "Success", body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	frame, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.IsRequest {
		t.Fatalf("expected response frame")
	}
	resp := frame.Response
	if resp.Verb != VerbComplete || resp.ID != 7 || resp.Name != "Success" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Body["core_id"] != "c1" {
		t.Errorf("body not round-tripped: %+v", resp.Body)
	}
}

func TestEncodeNoBody(t *testing.T) {
	data, err := EncodeRequest(1, "com.roonlabs.registry:1/info", nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(data), "Content-Type") {
		t.Errorf("expected no Content-Type header without a body: %q", data)
	}

	frame, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Request.Body != nil {
		t.Errorf("expected nil body, got %+v", frame.Request.Body)
	}
}

func TestDecodeToleratesExtraWhitespaceAndBlankLines(t *testing.T) {
	raw := "MOO/1 COMPLETE Success\n" +
		"Request-Id:   5   \n" +
		"garbage line without colon\n" +
		"Content-Type: application/json\n" +
		"Content-Length: 12\n" +
		"\n\n\n" +
		`{"ok": true}`
	frame, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Response.ID != 5 {
		t.Errorf("id = %d, want 5", frame.Response.ID)
	}
	if frame.Response.Body["ok"] != true {
		t.Errorf("body = %+v", frame.Response.Body)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"empty input":        "",
		"missing MOO token":  "REQUEST foo/bar\nRequest-Id: 1\n\n",
		"malformed first":    "MOO/1\nRequest-Id: 1\n\n",
		"unknown verb":       "MOO/1 BOGUS foo\nRequest-Id: 1\n\n",
		"unsupported version": "MOO/2 REQUEST foo/bar\nRequest-Id: 1\n\n",
		"missing request id": "MOO/1 REQUEST foo/bar\n\n",
		"non-integer id":      "MOO/1 REQUEST foo/bar\nRequest-Id: abc\n\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode([]byte(raw)); err == nil {
				t.Errorf("%s: expected error", name)
			}
		})
	}
}

func TestDecodeNegativeAndZeroRequestID(t *testing.T) {
	for _, id := range []int64{0, -1, -100} {
		data, err := EncodeResponse(id, VerbComplete, "Success", nil)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		frame, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if frame.Response.ID != id {
			t.Errorf("id = %d, want %d", frame.Response.ID, id)
		}
	}
}

func TestIsSuccess(t *testing.T) {
	successes := []string{"Success", "Registered", "Subscribed", "Changed"}
	for _, s := range successes {
		if !IsSuccess(s) {
			t.Errorf("IsSuccess(%q) = false, want true", s)
		}
	}
	if IsSuccess("InvalidRequest") {
		t.Errorf("IsSuccess(InvalidRequest) = true, want false")
	}
}

func TestErrorMessageFallsBackToName(t *testing.T) {
	r := &Response{Name: "InvalidRequest"}
	if r.ErrorMessage() != "InvalidRequest" {
		t.Errorf("ErrorMessage() = %q", r.ErrorMessage())
	}
	r.Body = map[string]interface{}{"error": "zone not found"}
	if r.ErrorMessage() != "zone not found" {
		t.Errorf("ErrorMessage() = %q", r.ErrorMessage())
	}
}
