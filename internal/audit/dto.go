package audit

const (
	DefaultLimit = 200
	MaxLimit     = 1000
)

// Filter narrows an audit log listing.
type Filter struct {
	TargetType TargetType
	Limit      int
}

func (f Filter) normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

type ListResponse struct {
	Entries []*Entry `json:"entries"`
	Limit   int      `json:"limit"`
}
