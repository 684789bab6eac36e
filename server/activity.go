package main

import (
	"fmt"
	"time"
)

// Human-readable activity messages. These strings are the audit trail, so
// their shape is part of the contract; tests pin them.

func activityCardCreated(actor User, list List) string {
	return fmt.Sprintf("%s added this card to %s", actor.Username, list.Name)
}

func activityCardArchived(actor User) string {
	return fmt.Sprintf("%s archived this card", actor.Username)
}

func activityCardUnarchived(actor User) string {
	return fmt.Sprintf("%s unarchived this card", actor.Username)
}

func activityDueDateSet(actor User, due time.Time) string {
	return fmt.Sprintf("%s set this card due date to %s", actor.Username, due.UTC().Format("2006-01-02 15:04"))
}

func activityMemberAdded(actor, target User) string {
	return fmt.Sprintf("%s added %s to this card", actor.Username, target.Username)
}

func activityMemberRemoved(actor, target User) string {
	return fmt.Sprintf("%s removed %s from this card", actor.Username, target.Username)
}

func activityFileAttached(actor User, filename string) string {
	return fmt.Sprintf("%s attached %s to this card", actor.Username, filename)
}
