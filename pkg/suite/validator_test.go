package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		file File
		want []string
	}{
		{
			name: "valid",
			file: File{Version: "1", Checks: []Definition{
				{ID: "a", Condition: "title", Value: "Home"},
				{ID: "b", Target: "li", Condition: "size", Count: 2, Dependencies: []ID{"a"}},
			}},
		},
		{
			name: "missing version and id",
			file: File{Checks: []Definition{{Condition: "title"}}},
			want: []string{"version: version is required", "checks[0].id: check ID is required"},
		},
		{
			name: "duplicate id",
			file: File{Version: "1", Checks: []Definition{
				{ID: "a", Condition: "title"}, {ID: "a", Condition: "url"},
			}},
			want: []string{"checks[1].id: duplicate ID: a"},
		},
		{
			name: "bad conditions",
			file: File{Version: "1", Checks: []Definition{
				{ID: "a", Target: "li", Condition: "title"},
				{ID: "b", Target: "li", Condition: "texts"},
				{ID: "c", Condition: "cookie"},
				{ID: "d", Condition: "cookie_value", Values: []string{"only-name"}},
				{ID: "e", Condition: "title", Timeout: "-1s"},
			}},
			want: []string{
				`checks[0].condition: unknown collection condition "title"`,
				"checks[1].condition: No expected texts given",
				"checks[2].condition: ",
				"checks[3].condition: cookie_value needs values [name, value]",
				`checks[4].condition: negative timeout "-1s"`,
			},
		},
		{
			name: "unknown dependency",
			file: File{Version: "1", Checks: []Definition{
				{ID: "a", Condition: "title", Dependencies: []ID{"zzz"}},
			}},
			want: []string{"checks[0].dependencies: unknown check: zzz"},
		},
		{
			name: "cycle",
			file: File{Version: "1", Checks: []Definition{
				{ID: "a", Condition: "title", Dependencies: []ID{"a"}},
			}},
			want: []string{"dependencies: circular dependency detected: a -> a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.file)
			a := assert.New(t)
			a.Len(errs, len(tt.want))
			for i, want := range tt.want {
				if i < len(errs) {
					a.Contains(errs[i].Error(), want)
				}
			}
		})
	}
}
