package domain

// Frontier is the set of configurations reachable after exactly Depth expansion rounds,
// kept in a deterministic order.
type Frontier struct {
	Depth          int             `json:"depth"`
	Configurations []Configuration `json:"configurations"`
}

// Group is the ordered list of children derived from one parent.
type Group struct {
	ParentID int
	Children []Configuration
}

// Len returns the number of configurations in the frontier.
func (f *Frontier) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Configurations)
}

// GroupByParent groups the configurations by parent id.
// Groups appear in the order their parent is first seen; children keep frontier order.
func (f *Frontier) GroupByParent() []Group {
	if f == nil {
		return nil
	}
	var groups []Group
	pos := make(map[int]int)
	for _, c := range f.Configurations {
		i, ok := pos[c.ParentID]
		if !ok {
			i = len(groups)
			pos[c.ParentID] = i
			groups = append(groups, Group{ParentID: c.ParentID})
		}
		groups[i].Children = append(groups[i].Children, c)
	}
	return groups
}
