package donation

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMetadataEncode(t *testing.T) {
	c := qt.New(t)

	c.Assert(Metadata{Name: "Ada", ShowOnList: true}.Encode(), qt.DeepEquals,
		map[string]string{"name": "Ada", "showOnList": "true"})
	c.Assert(Metadata{}.Encode(), qt.DeepEquals,
		map[string]string{"name": "", "showOnList": "false"})
}

func TestDecodeMetadata(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  Metadata
		found bool
	}{
		{"string true", `{"name":"Ada","showOnList":"true"}`, Metadata{Name: "Ada", ShowOnList: true}, true},
		{"string false", `{"name":"Ada","showOnList":"false"}`, Metadata{Name: "Ada"}, true},
		{"boolean true", `{"name":"Ada","showOnList":true}`, Metadata{Name: "Ada", ShowOnList: true}, true},
		{"boolean false", `{"name":"Ada","showOnList":false}`, Metadata{Name: "Ada"}, true},
		{"unexpected value", `{"name":"Ada","showOnList":"yes"}`, Metadata{Name: "Ada"}, true},
		{"no name", `{"showOnList":"true"}`, Metadata{}, true},
		{"blank name", `{"name":"  ","showOnList":true}`, Metadata{}, true},
		{"missing key", `{"name":"Ada"}`, Metadata{}, false},
		{"empty", `{}`, Metadata{}, false},
		{"null", `null`, Metadata{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			var raw map[string]any
			c.Assert(json.Unmarshal([]byte(tt.raw), &raw), qt.IsNil)
			got, found := DecodeMetadata(raw)
			c.Assert(found, qt.Equals, tt.found)
			c.Assert(got, qt.Equals, tt.want)
		})
	}
}
