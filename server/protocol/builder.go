package protocol

// lookup table for status lines
// i use flat list instead of map bc codes is fixed
var statusTable = [505][]byte{
	200: []byte("200 OK"),
	303: []byte("303 See Other"),
	404: []byte("404 Not Found"),
}

var internalError = []byte("500 Internal Server Error")

// for fast access
var (
	proto       = []byte("HTTP/1.1 ")
	colon       = []byte(": ")
	hdrType     = []byte("Content-Type")
	hdrLength   = []byte("Content-Length")
	hdrLocation = []byte("Location")
)

// response struct, built by a handler and serialized once
type Response struct {
	Code        int
	ContentType string // 200 and 404
	Location    string // 303
	Body        []byte // 200 and 404
}

func OK(contentType string, body []byte) *Response {
	return &Response{Code: 200, ContentType: contentType, Body: body}
}

func NotFound(contentType string, body []byte) *Response {
	return &Response{Code: 404, ContentType: contentType, Body: body}
}

func SeeOther(location string) *Response {
	return &Response{Code: 303, Location: location}
}

// status line text after the protocol, e.g. "404 Not Found"
func Status(code int) []byte {
	if code < 100 || code >= len(statusTable) || statusTable[code] == nil {
		return internalError
	}
	return statusTable[code]
}

// append decimal n to dst without strconv
func AppendUint(dst []byte, n uint) []byte {
	if n == 0 {
		return append(dst, '0')
	}

	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte(n%10) + '0'
		n /= 10
	}
	return append(dst, tmp[i:]...)
}

func appendHeader(dst, key []byte, val string) []byte {
	dst = append(dst, key...)
	dst = append(dst, colon...)
	dst = append(dst, val...)
	return append(dst, crlf...)
}

// serialize response to dst; 303 carries only Location and no body,
// everything else Content-Type, Content-Length and the body
func (r *Response) AppendTo(dst []byte) []byte {
	dst = append(dst, proto...)
	dst = append(dst, Status(r.Code)...)
	dst = append(dst, crlf...)

	if r.Code == 303 {
		dst = appendHeader(dst, hdrLocation, r.Location)
		return append(dst, crlf...)
	}

	dst = appendHeader(dst, hdrType, r.ContentType)
	dst = append(dst, hdrLength...)
	dst = append(dst, colon...)
	dst = AppendUint(dst, uint(len(r.Body)))
	dst = append(dst, crlf...)

	dst = append(dst, crlf...)
	return append(dst, r.Body...)
}
