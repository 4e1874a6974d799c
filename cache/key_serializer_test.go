package cache

import (
	"strings"
	"testing"
	"time"
)

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	var nilPtr *string
	name := "Slovakia"

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{
			name:   "no args",
			method: "List",
			want:   "List",
		},
		{
			name:   "single string",
			method: "Get",
			args:   []any{"Japan"},
			want:   joinWithSeparator("Get", "Japan"),
		},
		{
			name:   "mixed scalars",
			method: "Search",
			args:   []any{"lov", true, 3, int64(7)},
			want:   joinWithSeparator("Search", "lov", "true", "3", "7"),
		},
		{
			name:   "nil and nil pointer",
			method: "Get",
			args:   []any{nil, nilPtr},
			want:   joinWithSeparator("Get", "nil", "nil"),
		},
		{
			name:   "pointer is dereferenced",
			method: "Get",
			args:   []any{&name},
			want:   joinWithSeparator("Get", "Slovakia"),
		},
		{
			name:   "slice",
			method: "Many",
			args:   []any{[]string{"a", "b"}},
			want:   joinWithSeparator("Many", "[a,b]"),
		},
		{
			name:   "nil slice",
			method: "Many",
			args:   []any{[]string(nil)},
			want:   joinWithSeparator("Many", "slice:nil"),
		},
		{
			name:   "stringer",
			method: "Wait",
			args:   []any{time.Second},
			want:   joinWithSeparator("Wait", "1s"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.method, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey(%q, %v) = %q, want %q", tt.method, tt.args, got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_Stable(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	first := serializer.SerializeKey("Search", "lov", []int{1, 2})
	for i := 0; i < 10; i++ {
		if got := serializer.SerializeKey("Search", "lov", []int{1, 2}); got != first {
			t.Fatalf("expected stable key %q, got %q", first, got)
		}
	}
}

func TestDefaultKeySerializer_HashesLongSegments(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	long := strings.Repeat("x", MaxSegmentLength+1)
	key := serializer.SerializeKey("Search", long)

	if !strings.HasPrefix(key, joinWithSeparator("Search", "xx:")) {
		t.Fatalf("expected hashed segment, got %q", key)
	}
	if len(key) > len("Search")+len(KeySeparator)+3+16 {
		t.Errorf("expected bounded key, got %d chars", len(key))
	}

	other := serializer.SerializeKey("Search", long+"y")
	if key == other {
		t.Error("expected different long segments to hash differently")
	}

	exact := strings.Repeat("x", MaxSegmentLength)
	if got := serializer.SerializeKey("Search", exact); got != joinWithSeparator("Search", exact) {
		t.Errorf("expected segment at the limit to be kept verbatim, got %q", got)
	}
}

func TestDefaultKeySerializer_MethodPrefix(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	key := serializer.SerializeKey("Get", "Japan")
	if !strings.HasPrefix(key, "Get"+KeySeparator) {
		t.Errorf("expected key to start with method and separator, got %q", key)
	}
}
