package batch

import "fmt"

// Policy decides what happens to a parent reference no earlier job recorded.
type Policy int

const (
	// PolicyPermissive passes unknown references through as scheduler IDs,
	// e.g. a job submitted by hand before this run.
	PolicyPermissive Policy = iota
	// PolicyStrict rejects unknown references with an UnknownParentError.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyPermissive:
		return "permissive"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Resolver maps job names to the IDs the scheduler returned for them.
// It is owned by a single Submitter and is not safe for concurrent use.
type Resolver struct {
	policy Policy
	ids    map[string]string
	order  []string
}

// NewResolver creates an empty resolver
func NewResolver(policy Policy) *Resolver {
	return &Resolver{
		policy: policy,
		ids:    make(map[string]string),
	}
}

// Policy returns the unknown-reference policy
func (r *Resolver) Policy() Policy { return r.policy }

// Record stores the ID of a submitted job. A later job with the same name
// replaces the earlier ID.
func (r *Resolver) Record(name, id string) {
	if _, ok := r.ids[name]; !ok {
		r.order = append(r.order, name)
	}
	r.ids[name] = id
}

// Lookup returns the recorded ID for name.
func (r *Resolver) Lookup(name string) (string, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Names returns the recorded job names in submission order
func (r *Resolver) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns a copy of job whose parent reference is the recorded ID.
// job itself is left untouched.
func (r *Resolver) Resolve(job *Job) (*Job, error) {
	out := job.clone()
	if !job.Parent.IsSet() {
		return out, nil
	}

	if id, ok := r.Lookup(job.Parent.Ref); ok {
		out.Parent.Ref = id
		return out, nil
	}
	if r.policy == PolicyStrict {
		return nil, &UnknownParentError{JobName: job.Name, Parent: job.Parent.Ref}
	}
	return out, nil
}
