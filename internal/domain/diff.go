package domain

import "sort"

// Diff computes the grants and revokes that move current membership to
// desired membership. Both result slices are sorted and never nil. Revokes
// are computed only when enforceRemovals is set: members outside the desired
// set are otherwise left alone.
func Diff(desired, current map[string]struct{}, enforceRemovals bool) (toAdd, toRemove []string) {
	toAdd = make([]string, 0, len(desired))
	for member := range desired {
		if _, ok := current[member]; !ok {
			toAdd = append(toAdd, member)
		}
	}
	sort.Strings(toAdd)

	toRemove = make([]string, 0)
	if enforceRemovals {
		for member := range current {
			if _, ok := desired[member]; !ok {
				toRemove = append(toRemove, member)
			}
		}
		sort.Strings(toRemove)
	}
	return toAdd, toRemove
}

// SortedMembers returns the members of a set in lexicographic order.
func SortedMembers(set map[string]struct{}) []string {
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Strings(members)
	return members
}
