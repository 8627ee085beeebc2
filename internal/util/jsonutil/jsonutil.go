package jsonutil

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StripFences removes Markdown code-fence wrapping (``` or ```json) that
// models sometimes add around a JSON payload even when asked for raw JSON.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Unmarshal strips code fences and decodes. The error is the plain
// encoding/json error so callers can feed it back to the model.
func Unmarshal(raw string, v any) error {
	return json.Unmarshal([]byte(StripFences(raw)), v)
}

// FlexString decodes a JSON string, number or boolean into a string.
// LLM output frequently flips between "u7" and 7 for the same field.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var out string
		if err := json.Unmarshal(b, &out); err != nil {
			return err
		}
		*f = FlexString(out)
		return nil
	}
	*f = FlexString(s)
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexFloat decodes a JSON number or a numeric string into a float64.
// Unparseable values decode to 0 rather than failing the whole record.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = 0
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt decodes a JSON integer or an integer-looking string. OK reports
// whether a usable integer was present; malformed values never fail the
// surrounding record.
type FlexInt struct {
	Val int
	OK  bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	f.Val, f.OK = 0, false
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	f.Val, f.OK = v, true
	return nil
}
