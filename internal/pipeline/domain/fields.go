package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StringList is an ordered multi-valued field (genres, cast, countries).
// It is stored comma-joined at the database boundary, so splitting and
// trimming happen in exactly one place.
type StringList []string

// SplitList parses a comma-joined value into a trimmed list, dropping empties.
func SplitList(s string) StringList {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	if len(list) == 0 {
		return nil
	}
	return list
}

// Join serializes the list back to its stored form.
func (l StringList) Join() string {
	return strings.Join(l, ", ")
}

// Normalized returns the list with every entry trimmed and empties dropped.
func (l StringList) Normalized() StringList {
	out := make(StringList, 0, len(l))
	for _, s := range l {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "", nil
	}
	return l.Join(), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
	case string:
		*l = SplitList(v)
	case []byte:
		*l = SplitList(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	return nil
}

// FlexInt unmarshals a scraped numeric field that may arrive as a JSON
// number, a numeric string, or junk. Anything unparsable becomes nil,
// matching the lenient coercion the producer relies on.
type FlexInt struct {
	Val *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		f.Val = nil
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		f.Val = nil
		return nil
	}
	f.Val = &n
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if f.Val == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Val)
}
