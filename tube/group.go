package tube

import (
	"fmt"
	"sort"
)

// GroupKey identifies a class group.  The all classes aggregate is its own
// case and never shares a value with a detector class id
type GroupKey struct {
	// All is set for the synthesized group holding every tube
	All bool
	// ClassID is the detector class of the group when All is false
	ClassID int
}

// AllClasses is the key of the group combining every class
var AllClasses = GroupKey{All: true}

// ClassKey returns the group key for a detector class
func ClassKey(classID int) GroupKey {
	return GroupKey{ClassID: classID}
}

// String returns a readable form of the key
func (k GroupKey) String() string {
	if k.All {
		return "all"
	}
	return fmt.Sprintf("class %d", k.ClassID)
}

// Group is a set of tubes rendered into one synopsis
type Group struct {
	Key   GroupKey
	Tubes []*Tube
}

// GroupByClass partitions the tubes by class id.  Groups are ordered by
// ascending class id and keep the input order of tubes, followed by the
// AllClasses group holding every tube
func GroupByClass(tubes []*Tube) []Group {

	byClass := make(map[int][]*Tube)
	var classes []int

	for _, t := range tubes {
		cid := t.ClassID()

		if _, exists := byClass[cid]; !exists {
			classes = append(classes, cid)
		}

		byClass[cid] = append(byClass[cid], t)
	}

	sort.Ints(classes)

	groups := make([]Group, 0, len(classes)+1)

	for _, cid := range classes {
		groups = append(groups, Group{
			Key:   ClassKey(cid),
			Tubes: byClass[cid],
		})
	}

	all := make([]*Tube, len(tubes))
	copy(all, tubes)

	groups = append(groups, Group{
		Key:   AllClasses,
		Tubes: all,
	})

	return groups
}
