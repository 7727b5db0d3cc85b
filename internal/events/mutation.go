package events

import (
	"fmt"

	"talent2income_backend/internal/models"
)

// EntityType - закрытый набор сущностей, чьи изменения маршрутизируются в инвалидацию кэша
type EntityType int

const (
	EntityUser EntityType = iota + 1
	EntityJob
	EntitySkill
	EntityReview
	EntityPayment
	EntityMessage
)

func (t EntityType) String() string {
	switch t {
	case EntityUser:
		return "user"
	case EntityJob:
		return "job"
	case EntitySkill:
		return "skill"
	case EntityReview:
		return "review"
	case EntityPayment:
		return "payment"
	case EntityMessage:
		return "message"
	default:
		return fmt.Sprintf("entity(%d)", int(t))
	}
}

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Mutation - зафиксированное изменение сущности.
// Заполнено ровно одно из полей-снимков, соответствующее Entity.
type Mutation struct {
	Entity        EntityType
	Op            Op
	ID            uint64
	ChangedFields []string

	User    *models.User
	Job     *models.Job
	Skill   *models.Skill
	Review  *models.Review
	Payment *models.Payment
	Message *models.Message
}

func (m Mutation) String() string {
	return fmt.Sprintf("%s:%d %s", m.Entity, m.ID, m.Op)
}

// Снимки копируются, чтобы последующие изменения структуры в сервисе
// не влияли на уже записанную мутацию.

func UserMutation(op Op, u *models.User, fields ...string) Mutation {
	cp := *u
	return Mutation{Entity: EntityUser, Op: op, ID: u.ID, ChangedFields: fields, User: &cp}
}

func JobMutation(op Op, j *models.Job, fields ...string) Mutation {
	cp := *j
	return Mutation{Entity: EntityJob, Op: op, ID: j.ID, ChangedFields: fields, Job: &cp}
}

func SkillMutation(op Op, s *models.Skill, fields ...string) Mutation {
	cp := *s
	return Mutation{Entity: EntitySkill, Op: op, ID: s.ID, ChangedFields: fields, Skill: &cp}
}

func ReviewMutation(op Op, r *models.Review, fields ...string) Mutation {
	cp := *r
	return Mutation{Entity: EntityReview, Op: op, ID: r.ID, ChangedFields: fields, Review: &cp}
}

func PaymentMutation(op Op, p *models.Payment, fields ...string) Mutation {
	cp := *p
	return Mutation{Entity: EntityPayment, Op: op, ID: p.ID, ChangedFields: fields, Payment: &cp}
}

func MessageMutation(op Op, m *models.Message, fields ...string) Mutation {
	cp := *m
	return Mutation{Entity: EntityMessage, Op: op, ID: m.ID, ChangedFields: fields, Message: &cp}
}
