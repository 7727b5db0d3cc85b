package cache

import (
	"strconv"

	"talent2income_backend/internal/events"
)

const (
	TagSearch        = "search"
	TagJobs          = "jobs"
	TagSkills        = "skills"
	TagRatings       = "ratings"
	TagConversations = "conversations"
)

// EntityTag - собственный тег сущности вида "{type}:{id}"
func EntityTag(t events.EntityType, id uint64) string {
	return t.String() + ":" + strconv.FormatUint(id, 10)
}

func UserTag(id uint64) string { return EntityTag(events.EntityUser, id) }
func JobTag(id uint64) string  { return EntityTag(events.EntityJob, id) }

func CategoryTag(id uint64) string {
	return "category:" + strconv.FormatUint(id, 10)
}
