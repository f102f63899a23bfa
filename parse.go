package databoy

import "strings"

// ParseColumnValues parses a semicolon separated list of key=value pairs:
//
//	FirstName='Billy';LastName='O''Hara; Jr';Age=12;
//
// Keys are trimmed and upper-cased, values are trimmed and kept verbatim.
// A semicolon inside single quotes does not end a value; quote tracking is
// a simple toggle. Empty segments, including a trailing one, are ignored.
// Every returned pair is raw.
func ParseColumnValues(s string) ([]ColumnValue, error) {
	var pairs []ColumnValue
	rest := s
	for {
		rest = strings.TrimLeft(rest, " \t\r\n;")
		if rest == "" {
			return pairs, nil
		}
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return nil, &MalformedDataError{Segment: rest}
		}
		key := normalize(strings.TrimSpace(rest[:eq]))
		if key == "" {
			return nil, &NullArgumentError{Name: "column"}
		}
		rest = rest[eq+1:]
		end := valueEnd(rest)
		pairs = append(pairs, ColumnValue{Name: key, Value: strings.TrimSpace(rest[:end]), Raw: true})
		rest = rest[end:]
	}
}

// valueEnd returns the index of the first semicolon outside quotes, or
// len(s) when there is none.
func valueEnd(s string) int {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case ';':
			if !quoted {
				return i
			}
		}
	}
	return len(s)
}
