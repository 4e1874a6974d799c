package cache

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// MaxSegmentLength is the longest argument segment kept verbatim. Longer
// segments are replaced by their xxhash digest so keys stay bounded.
const MaxSegmentLength = 64

// defaultKeySerializer turns scalar arguments and slices of scalars into
// stable, human readable key segments.
type defaultKeySerializer struct {
	maxSegment int
}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{maxSegment: MaxSegmentLength}
}

// SerializeKey builds a cache key from method name and args. The method is
// always the first segment so prefix invalidation by method name works.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, arg := range args {
		parts = append(parts, s.bound(s.serializeValue(arg)))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) bound(segment string) string {
	if len(segment) <= s.maxSegment {
		return segment
	}
	return "xx:" + strconv.FormatUint(xxhash.Sum64String(segment), 16)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "slice:nil"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ","))
	}

	return fmt.Sprintf("%v", v)
}
