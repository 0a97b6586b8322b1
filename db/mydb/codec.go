package mydb

import (
	"fmt"
	"sort"
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
)

// RequestType is the operation kind carried by a request.
type RequestType int32

// Operation kinds, numbered as on the wire.
const (
	ReadNumeric RequestType = iota
	ReadText
	UpdateNumeric
	UpdateText
	InsertNumeric
	InsertText
	Delete
	StartTransaction
	Commit
	Abort
)

var requestTypeNames = [...]string{
	ReadNumeric:      "READ_LONG",
	ReadText:         "READ_TEXT",
	UpdateNumeric:    "UPDATE_LONG",
	UpdateText:       "UPDATE_TEXT",
	InsertNumeric:    "INSERT_LONG",
	InsertText:       "INSERT_TEXT",
	Delete:           "DELETE",
	StartTransaction: "START_TRANSACTION",
	Commit:           "COMMIT",
	Abort:            "ABORT",
}

func (t RequestType) String() string {
	if t >= 0 && int(t) < len(requestTypeNames) {
		return requestTypeNames[t]
	}
	return fmt.Sprintf("RequestType(%d)", int32(t))
}

func (t RequestType) valid() bool {
	return t >= ReadNumeric && t <= Abort
}

func (t RequestType) numericWrite() bool {
	return t == UpdateNumeric || t == InsertNumeric
}

func (t RequestType) textWrite() bool {
	return t == UpdateText || t == InsertText
}

// ResponseType is the shape of a reply.
type ResponseType int32

// Reply shapes, numbered as on the wire.
const (
	StatusResult ResponseType = iota
	LongResult
	TextResult
)

func (t ResponseType) String() string {
	switch t {
	case StatusResult:
		return "STATUS"
	case LongResult:
		return "LONG_RESULT"
	case TextResult:
		return "TEXT_RESULT"
	}
	return fmt.Sprintf("ResponseType(%d)", int32(t))
}

// Request is one operation sent to the store. Build it with the New*
// constructors so that only the payload matching Type is populated.
type Request struct {
	Type      RequestType
	Table     string
	Key       string
	Fields    []string
	LongField string
	LongRow   int64
	TextRow   map[string][]byte
}

// NewReadNumeric asks for the numeric value of field.
func NewReadNumeric(table, key, field string) *Request {
	return &Request{Type: ReadNumeric, Table: table, Key: key, Fields: []string{field}}
}

// NewReadText asks for the text values of fields.
func NewReadText(table, key string, fields []string) *Request {
	return &Request{Type: ReadText, Table: table, Key: key, Fields: fields}
}

// NewNumericWrite builds an UpdateNumeric or InsertNumeric request.
func NewNumericWrite(t RequestType, table, key, field string, v int64) *Request {
	return &Request{Type: t, Table: table, Key: key, LongField: field, LongRow: v}
}

// NewTextWrite builds an UpdateText or InsertText request.
func NewTextWrite(t RequestType, table, key string, row map[string][]byte) *Request {
	return &Request{Type: t, Table: table, Key: key, TextRow: row}
}

// NewDelete builds a Delete request.
func NewDelete(table, key string) *Request {
	return &Request{Type: Delete, Table: table, Key: key}
}

// NewControl builds a StartTransaction, Commit or Abort request anchored at key.
func NewControl(t RequestType, key string) *Request {
	return &Request{Type: t, Key: key}
}

// Response is one reply from the store. Only the payload matching Type is
// meaningful.
type Response struct {
	Type ResponseType
	OK   bool
	Long int64
	Text map[string][]byte
}

// NewStatusResponse builds a STATUS reply.
func NewStatusResponse(ok bool) *Response {
	return &Response{Type: StatusResult, OK: ok}
}

// NewLongResponse builds a LONG_RESULT reply.
func NewLongResponse(v int64) *Response {
	return &Response{Type: LongResult, Long: v}
}

// NewTextResponse builds a TEXT_RESULT reply.
func NewTextResponse(m map[string][]byte) *Response {
	return &Response{Type: TextResult, Text: m}
}

// field numbers
const (
	reqType      protowire.Number = 1
	reqTable     protowire.Number = 2
	reqKey       protowire.Number = 3
	reqFields    protowire.Number = 4
	reqLongField protowire.Number = 5
	reqLongRow   protowire.Number = 6
	reqTextRow   protowire.Number = 7

	respType       protowire.Number = 1
	respStatusOK   protowire.Number = 2
	respLongResult protowire.Number = 3
	respTextResult protowire.Number = 4

	mapKey   protowire.Number = 1
	mapValue protowire.Number = 2
)

// EncodeRequest serializes req.
func EncodeRequest(req *Request) ([]byte, error) {
	return AppendRequest(nil, req)
}

// AppendRequest appends the serialized req to dst.
func AppendRequest(dst []byte, req *Request) ([]byte, error) {
	if !req.Type.valid() {
		return nil, malformed("unknown request type %d", req.Type)
	}
	if len(req.TextRow) > 0 && !req.Type.textWrite() {
		return nil, malformed("%s request carries a text row", req.Type)
	}
	if (req.LongField != "" || req.LongRow != 0) && !req.Type.numericWrite() {
		return nil, malformed("%s request carries a numeric row", req.Type)
	}

	b := dst
	if req.Type != ReadNumeric {
		b = protowire.AppendTag(b, reqType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(req.Type))
	}
	b = appendString(b, reqTable, req.Table)
	b = appendString(b, reqKey, req.Key)
	for _, f := range req.Fields {
		b = protowire.AppendTag(b, reqFields, protowire.BytesType)
		b = protowire.AppendString(b, f)
	}
	b = appendString(b, reqLongField, req.LongField)
	if req.LongRow != 0 {
		b = protowire.AppendTag(b, reqLongRow, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(req.LongRow))
	}
	b = appendMap(b, reqTextRow, req.TextRow)
	return b, nil
}

// DecodeRequest parses a serialized request.
func DecodeRequest(b []byte) (*Request, error) {
	req := &Request{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed("request tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == reqType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("request type: %v", protowire.ParseError(n))
			}
			req.Type = RequestType(int32(v))
			b = b[n:]
		case num == reqTable && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, malformed("request table: %v", protowire.ParseError(n))
			}
			req.Table = s
			b = b[n:]
		case num == reqKey && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, malformed("request key: %v", protowire.ParseError(n))
			}
			req.Key = s
			b = b[n:]
		case num == reqFields && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, malformed("request fields: %v", protowire.ParseError(n))
			}
			req.Fields = append(req.Fields, s)
			b = b[n:]
		case num == reqLongField && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, malformed("request long_field: %v", protowire.ParseError(n))
			}
			req.LongField = s
			b = b[n:]
		case num == reqLongRow && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("request long_row: %v", protowire.ParseError(n))
			}
			req.LongRow = int64(v)
			b = b[n:]
		case num == reqTextRow && typ == protowire.BytesType:
			if req.TextRow == nil {
				req.TextRow = make(map[string][]byte)
			}
			n, err := consumeMapEntry(b, req.TextRow)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed("request field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if !req.Type.valid() {
		return nil, malformed("unknown request type %d", req.Type)
	}
	return req, nil
}

// EncodeResponse serializes resp. LONG_RESULT values travel as decimal text.
func EncodeResponse(resp *Response) ([]byte, error) {
	return AppendResponse(nil, resp)
}

// AppendResponse appends the serialized resp to dst.
func AppendResponse(dst []byte, resp *Response) ([]byte, error) {
	b := dst
	switch resp.Type {
	case StatusResult:
		if resp.OK {
			b = protowire.AppendTag(b, respStatusOK, protowire.VarintType)
			b = protowire.AppendVarint(b, protowire.EncodeBool(true))
		}
	case LongResult:
		b = protowire.AppendTag(b, respType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(resp.Type))
		b = protowire.AppendTag(b, respLongResult, protowire.BytesType)
		b = protowire.AppendString(b, strconv.FormatInt(resp.Long, 10))
	case TextResult:
		b = protowire.AppendTag(b, respType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(resp.Type))
		b = appendMap(b, respTextResult, resp.Text)
	default:
		return nil, malformed("unknown response type %d", resp.Type)
	}
	return b, nil
}

// DecodeResponse parses a serialized response.
func DecodeResponse(b []byte) (*Response, error) {
	resp := &Response{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed("response tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == respType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("response type: %v", protowire.ParseError(n))
			}
			resp.Type = ResponseType(int32(v))
			b = b[n:]
		case num == respStatusOK && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("response status: %v", protowire.ParseError(n))
			}
			resp.OK = protowire.DecodeBool(v)
			b = b[n:]
		case num == respLongResult && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, malformed("response long_result: %v", protowire.ParseError(n))
			}
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, malformed("response long_result %q is not an integer", s)
			}
			resp.Long = v
			b = b[n:]
		case num == respLongResult && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("response long_result: %v", protowire.ParseError(n))
			}
			resp.Long = int64(v)
			b = b[n:]
		case num == respTextResult && typ == protowire.BytesType:
			if resp.Text == nil {
				resp.Text = make(map[string][]byte)
			}
			n, err := consumeMapEntry(b, resp.Text)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed("response field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	switch resp.Type {
	case StatusResult, LongResult:
	case TextResult:
		if resp.Text == nil {
			resp.Text = map[string][]byte{}
		}
	default:
		return nil, malformed("unknown response type %d", resp.Type)
	}
	return resp, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendMap writes m as repeated key/value entry messages, in key order so
// the encoding is deterministic.
func appendMap(b []byte, num protowire.Number, m map[string][]byte) []byte {
	if len(m) == 0 {
		return b
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := m[k]
		size := 0
		if k != "" {
			size += protowire.SizeTag(mapKey) + protowire.SizeBytes(len(k))
		}
		if len(v) > 0 {
			size += protowire.SizeTag(mapValue) + protowire.SizeBytes(len(v))
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(size))
		if k != "" {
			b = protowire.AppendTag(b, mapKey, protowire.BytesType)
			b = protowire.AppendString(b, k)
		}
		if len(v) > 0 {
			b = protowire.AppendTag(b, mapValue, protowire.BytesType)
			b = protowire.AppendBytes(b, v)
		}
	}
	return b
}

func consumeMapEntry(b []byte, m map[string][]byte) (int, error) {
	entry, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, malformed("map entry: %v", protowire.ParseError(n))
	}
	var (
		key   string
		value = []byte{}
	)
	for len(entry) > 0 {
		num, typ, tn := protowire.ConsumeTag(entry)
		if tn < 0 {
			return 0, malformed("map entry tag: %v", protowire.ParseError(tn))
		}
		entry = entry[tn:]
		switch {
		case num == mapKey && typ == protowire.BytesType:
			s, vn := protowire.ConsumeString(entry)
			if vn < 0 {
				return 0, malformed("map key: %v", protowire.ParseError(vn))
			}
			key = s
			entry = entry[vn:]
		case num == mapValue && typ == protowire.BytesType:
			v, vn := protowire.ConsumeBytes(entry)
			if vn < 0 {
				return 0, malformed("map value: %v", protowire.ParseError(vn))
			}
			value = append([]byte{}, v...)
			entry = entry[vn:]
		default:
			vn := protowire.ConsumeFieldValue(num, typ, entry)
			if vn < 0 {
				return 0, malformed("map entry field %d: %v", num, protowire.ParseError(vn))
			}
			entry = entry[vn:]
		}
	}
	m[key] = value
	return n, nil
}
