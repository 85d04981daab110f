// Package parsers holds small wire-format helpers shared by the provider
// clients.
package parsers

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// ParseFloat parses a trimmed decimal string, returning false for anything
// unparseable.
func ParseFloat(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ReadBody drains up to limit bytes of a response body for error reporting.
func ReadBody(r io.Reader, limit int64) string {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return ""
	}
	return string(data)
}

// FlexibleFloat decodes a JSON number or a numeric JSON string. Prometheus
// range responses carry sample values as strings next to numeric
// timestamps.
type FlexibleFloat float64

func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexibleFloat(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	num, _ = strconv.ParseFloat(strings.TrimSpace(s), 64)
	*f = FlexibleFloat(num)
	return nil
}
