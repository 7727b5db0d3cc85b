package cache

import (
	"talent2income_backend/internal/events"
)

// Router сопоставляет зафиксированную мутацию упорядоченному набору тегов.
// Порядок: search, собственный тег, каскады. Повторы убираются.
type Router struct{}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Route(m events.Mutation) []string {
	tags := newTagList(TagSearch, EntityTag(m.Entity, m.ID))

	switch m.Entity {
	case events.EntityUser:
		// грубая инвалидация: агрегаты (рейтинги в выдаче) охватывают чужие задания и навыки
		tags.add(TagJobs, TagSkills)

	case events.EntityJob:
		if j := m.Job; j != nil {
			tags.add(UserTag(j.OwnerID))
			if j.AssignedTo != nil {
				tags.add(UserTag(*j.AssignedTo))
			}
			tags.add(CategoryTag(j.CategoryID))
		}

	case events.EntitySkill:
		if s := m.Skill; s != nil {
			tags.add(UserTag(s.UserID), CategoryTag(s.CategoryID))
		}

	case events.EntityReview:
		if rv := m.Review; rv != nil {
			tags.add(UserTag(rv.ReviewerID), UserTag(rv.RevieweeID), JobTag(rv.JobID))
		}
		tags.add(TagRatings)

	case events.EntityPayment:
		if p := m.Payment; p != nil {
			tags.add(UserTag(p.PayerID), UserTag(p.PayeeID), JobTag(p.JobID))
		}

	case events.EntityMessage:
		if msg := m.Message; msg != nil {
			tags.add(UserTag(msg.SenderID), UserTag(msg.RecipientID))
		}
		tags.add(TagConversations)
	}

	return tags.items
}

type tagList struct {
	items []string
	seen  map[string]struct{}
}

func newTagList(initial ...string) *tagList {
	l := &tagList{seen: make(map[string]struct{})}
	l.add(initial...)
	return l
}

func (l *tagList) add(tags ...string) {
	for _, t := range tags {
		if _, ok := l.seen[t]; ok {
			continue
		}
		l.seen[t] = struct{}{}
		l.items = append(l.items, t)
	}
}
