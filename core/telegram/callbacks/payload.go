package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Fields returns the payload split on whitespace, without the routing key
// when the callback used the raw encoding.
func Fields(c tele.Context) []string {
	key, payload := Parse(c.Callback())
	fields := strings.Fields(payload)
	if len(fields) > 0 && fields[0] == key {
		fields = fields[1:]
	}
	return fields
}

// PayloadInt64 parses a single numeric payload.
func PayloadInt64(c tele.Context) (int64, error) {
	f := Fields(c)
	if len(f) != 1 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(f[0], 10, 64)
}

// PayloadTwoInt64 parses payloads like "12 1" or "12|1".
func PayloadTwoInt64(c tele.Context) (int64, int64, error) {
	f := Fields(c)
	if len(f) == 1 {
		f = strings.Split(f[0], "|")
	}
	if len(f) != 2 {
		return 0, 0, strconv.ErrSyntax
	}
	a, err := strconv.ParseInt(f[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseInt(f[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
