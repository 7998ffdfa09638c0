// ABOUTME: MOO/1 wire codec for Roon's RPC protocol
// ABOUTME: Encodes and decodes the text-header + optional JSON body frames
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Verb identifies the kind of MOO/1 frame.
type Verb int

const (
	VerbRequest Verb = iota
	VerbComplete
	VerbContinue
)

func (v Verb) String() string {
	switch v {
	case VerbRequest:
		return "REQUEST"
	case VerbComplete:
		return "COMPLETE"
	case VerbContinue:
		return "CONTINUE"
	default:
		return "UNKNOWN"
	}
}

// ContentTypeJSON is the only content type this client decodes into a map.
const ContentTypeJSON = "application/json"

// Frame is the decoded form of an inbound MOO/1 message. Exactly one of
// Request or Response is set, matching the DecodedFrame union from the
// spec (Go has no sum types, so a tagged struct stands in for it).
type Frame struct {
	IsRequest bool

	// Populated when IsRequest is true.
	Request *Request

	// Populated when IsRequest is false.
	Response *Response
}

// Request is a REQUEST frame: the Core (or, on the inbound side, this
// client acting as a server) is calling a service method.
type Request struct {
	ID      int64
	Service string
	Method  string
	Body    map[string]interface{}
}

// Response is a COMPLETE or CONTINUE frame answering a previously issued
// request.
type Response struct {
	Verb        Verb
	ID          int64
	Name        string
	ContentType string
	Body        map[string]interface{}
	RawBody     []byte
}

// IsSuccess reports whether name is one of the well-known success tokens.
func IsSuccess(name string) bool {
	switch name {
	case "Success", "Registered", "Subscribed", "Changed":
		return true
	default:
		return false
	}
}

// ErrorMessage extracts the best-effort human-readable error message from
// a non-success response: body.error if present, else the response name
// itself.
func (r *Response) ErrorMessage() string {
	if r.Body != nil {
		if msg, ok := r.Body["error"].(string); ok && msg != "" {
			return msg
		}
	}
	return r.Name
}

// FormatError reports that a frame could not be parsed as MOO/1.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "invalid moo/1 frame: " + e.Reason }

// NewFormatError constructs a FormatError with the given reason.
func NewFormatError(reason string) *FormatError { return &FormatError{Reason: reason} }

// EncodeRequest serialises a REQUEST frame with an optional JSON body.
func EncodeRequest(id int64, path string, body interface{}) ([]byte, error) {
	return encode(fmt.Sprintf("MOO/1 REQUEST %s", path), id, body)
}

// EncodeResponse serialises a COMPLETE/CONTINUE frame with an optional
// JSON body. verb must be VerbComplete or VerbContinue.
func EncodeResponse(id int64, verb Verb, name string, body interface{}) ([]byte, error) {
	return encode(fmt.Sprintf("MOO/1 %s %s", verb, name), id, body)
}

func encode(firstLine string, id int64, body interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(firstLine)
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "Request-Id: %d\n", id)

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "Content-Type: %s\n", ContentTypeJSON)
		fmt.Fprintf(&buf, "Content-Length: %d\n", len(data))
		buf.WriteByte('\n')
		buf.Write(data)
	} else {
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// Decode parses a raw MOO/1 frame into a Request or Response.
func Decode(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, NewFormatError("empty input")
	}

	headerEnd, bodyStart := splitHeaderBody(data)
	headerText := string(data[:headerEnd])
	lines := strings.Split(headerText, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, NewFormatError("missing first line")
	}

	firstLine := strings.TrimRight(lines[0], "\r")
	verb, name, err := parseFirstLine(firstLine)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		headers[key] = val
	}

	idStr, ok := headers["Request-Id"]
	if !ok {
		return nil, NewFormatError("missing Request-Id")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, NewFormatError("invalid Request-Id")
	}

	contentLength := 0
	if cl, ok := headers["Content-Length"]; ok {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 {
			return nil, NewFormatError("invalid Content-Length")
		}
		contentLength = n
	}

	var rawBody []byte
	if contentLength > 0 {
		end := bodyStart + contentLength
		if end > len(data) {
			return nil, NewFormatError("body shorter than Content-Length")
		}
		rawBody = data[bodyStart:end]
	}

	contentType := headers["Content-Type"]

	var parsedBody map[string]interface{}
	if len(rawBody) > 0 && contentType == ContentTypeJSON {
		if err := json.Unmarshal(rawBody, &parsedBody); err != nil {
			return nil, fmt.Errorf("json error: %w", err)
		}
	}

	if verb == VerbRequest {
		service, method, ok := splitServicePath(name)
		if !ok {
			return nil, NewFormatError("malformed service path")
		}
		return &Frame{
			IsRequest: true,
			Request: &Request{
				ID:      id,
				Service: service,
				Method:  method,
				Body:    parsedBody,
			},
		}, nil
	}

	return &Frame{
		IsRequest: false,
		Response: &Response{
			Verb:        verb,
			ID:          id,
			Name:        name,
			ContentType: contentType,
			Body:        parsedBody,
			RawBody:     rawBody,
		},
	}, nil
}

// splitHeaderBody finds the header/body boundary, tolerating multiple
// blank lines before the body per spec.
func splitHeaderBody(data []byte) (headerEnd, bodyStart int) {
	sep := []byte("\n\n")
	idx := bytes.Index(data, sep)
	if idx < 0 {
		return len(data), len(data)
	}
	headerEnd = idx
	bodyStart = idx + 2
	for bodyStart < len(data) && data[bodyStart] == '\n' {
		bodyStart++
	}
	return headerEnd, bodyStart
}

func parseFirstLine(line string) (Verb, string, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, "", NewFormatError("malformed first line")
	}

	if !strings.HasPrefix(fields[0], "MOO/") {
		return 0, "", NewFormatError("missing MOO/1 token")
	}
	if fields[0] != "MOO/1" {
		return 0, "", NewFormatError("unsupported version")
	}

	verbStr := fields[1]
	name := strings.Join(fields[2:], " ")

	var verb Verb
	switch verbStr {
	case "REQUEST":
		verb = VerbRequest
	case "COMPLETE":
		verb = VerbComplete
	case "CONTINUE":
		verb = VerbContinue
	default:
		return 0, "", NewFormatError("unknown verb")
	}

	return verb, name, nil
}

// splitServicePath splits "service/method" into its two parts. The
// service portion may itself contain a colon-suffixed version
// (e.g. "com.roonlabs.transport:2"), which is not treated specially here —
// callers that need the version split it out of Service themselves.
func splitServicePath(path string) (service, method string, ok bool) {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "", "", false
	}
	return path[:idx], path[idx+1:], true
}
