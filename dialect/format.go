package dialect

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawPrefix marks a string value as a pre-formatted SQL fragment.
// FormatValue strips the marker and emits the rest verbatim.
const RawPrefix = "$$"

// Raw prefixes fragment with RawPrefix, e.g. Raw("GETDATE()").
func Raw(fragment string) string { return RawPrefix + fragment }

// Literal renders v as a SQL literal without vendor-specific rules.
// It is the form used for identifying values in WHERE clauses.
// Pointers are followed; a nil pointer is NULL. Byte slices are quoted
// as strings.
func Literal(v any) string {
	switch v := indirect(v).(type) {
	case nil:
		return "NULL"
	case string:
		if strings.HasPrefix(v, RawPrefix) {
			return v[len(RawPrefix):]
		}
		return quote(v)
	case []byte:
		return quote(string(v))
	case uuid.UUID:
		return quote(v.String())
	default:
		return fmt.Sprint(v)
	}
}

// FormatValue renders v as a SQL literal for the given vendor.
//
// Strings and UUIDs are single-quoted. Embedded quotes are not escaped.
// Oracle time values are wrapped in to_date with second precision; other
// vendors get the default textual form of time.Time, unquoted.
func FormatValue(v any, vendor Vendor) string {
	v = indirect(v)
	if t, ok := v.(time.Time); ok && vendor == Oracle {
		return oracleDate(t)
	}
	return Literal(v)
}

// FormatRaw renders v for a column that was added unformatted.
// Only the Oracle date rule applies; everything else is its natural text.
func FormatRaw(v any, vendor Vendor) string {
	switch v := indirect(v).(type) {
	case time.Time:
		if vendor == Oracle {
			return oracleDate(v)
		}
		return v.String()
	case []byte:
		return string(v)
	case nil:
		return "NULL"
	default:
		return fmt.Sprint(v)
	}
}

// indirect follows pointers to the value they hold. Nil pointers, at any
// depth, become an untyped nil.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func oracleDate(t time.Time) string {
	return fmt.Sprintf("to_date('%d/%02d/%02d %02d:%02d:%02d', 'YYYY/MM/DD HH:MI:SS')",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

func quote(s string) string { return "'" + s + "'" }
