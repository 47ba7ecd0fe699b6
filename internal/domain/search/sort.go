package search

import (
	"strings"
)

// SortField is one ordering key
type SortField struct {
	Field string
	Desc  bool
}

// ParseSort parses "name desc, id" style sort strings.
// Fields must be identifier paths and directions asc or desc.
func ParseSort(spec string) ([]SortField, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var ret []SortField
	for _, part := range strings.Split(spec, ",") {
		tokens := strings.Fields(part)
		switch len(tokens) {
		case 0:
			continue
		case 1, 2:
		default:
			return nil, malformed(spec, "sort item %q has too many tokens", part)
		}
		if err := ValidateField(tokens[0]); err != nil {
			return nil, malformed(spec, "sort field %q is not an identifier", tokens[0])
		}
		f := SortField{Field: tokens[0]}
		if len(tokens) == 2 {
			switch strings.ToLower(tokens[1]) {
			case "asc":
			case "desc":
				f.Desc = true
			default:
				return nil, malformed(spec, "unknown sort direction %q", tokens[1])
			}
		}
		ret = append(ret, f)
	}
	return ret, nil
}

// Direction returns ASC or DESC
func (f SortField) Direction() string {
	if f.Desc {
		return "DESC"
	}
	return "ASC"
}
