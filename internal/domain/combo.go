package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// SuppressRest derives, for an ordered plan, which entries are superset leads.
// An entry is a lead iff some other entry's ComboWith points at it: the
// trainee moves straight into the paired exercise, so the lead's own rest
// timer is never offered. The trailing entry carries the real rest interval.
//
// The result is computed purely from "is this id referenced by someone" so
// that data imported out of band (an entry that is both lead and trailer)
// still yields a deterministic answer.
func SuppressRest(entries []PlanEntry) map[primitive.ObjectID]bool {
	leadIDs := make(map[primitive.ObjectID]bool)
	for _, e := range entries {
		if e.ComboWith != nil {
			leadIDs[*e.ComboWith] = true
		}
	}

	suppress := make(map[primitive.ObjectID]bool, len(entries))
	for _, e := range entries {
		suppress[e.ID] = leadIDs[e.ID]
	}
	return suppress
}
