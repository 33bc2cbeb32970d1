package repository

import "gorm.io/gorm/clause"

// forUpdate is the row lock used by the check-then-act paths (till opening,
// ortho bridge edits). Lock waits use the store's default timeout; a timeout
// surfaces as a retryable error to the caller.
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
