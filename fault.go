package amf

import "fmt"

// Fault is a remote failure, read from a status object returned by a call.
type Fault struct {
	Code        string
	Description string
	Details     string
	RootCause   any

	// Content is the status object the fault was read from.
	Content any
}

// NewFault reads a Fault from status, which is usually the content of an OnStatus body.
// Members that are missing or not strings are left empty.
func NewFault(status any) *Fault {
	f := &Fault{Content: status}

	var get func(string) (any, bool)
	switch s := status.(type) {
	case *Object:
		get = s.Get
	case *ECMAArray:
		get = s.Get
	case map[string]any:
		get = func(key string) (any, bool) {
			v, ok := s[key]
			return v, ok
		}
	default:
		return f
	}

	str := func(key string) string {
		v, _ := get(key)
		s, _ := v.(string)
		return s
	}
	f.Code = str("code")
	f.Description = str("description")
	f.Details = str("details")
	f.RootCause, _ = get("rootcause")
	return f
}

func (f *Fault) Error() string {
	switch {
	case f.Code == "" && f.Description == "":
		return "amf: remote fault"
	case f.Description == "":
		return fmt.Sprintf("amf: remote fault %v", f.Code)
	default:
		return fmt.Sprintf("amf: remote fault %v: %v", f.Code, f.Description)
	}
}
