package memory

import (
	"context"
	"sort"
	"time"

	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"

	"gorm.io/gorm"
)

type userRepo struct{ v *view }

func (r userRepo) Create(_ context.Context, user *models.User) error {
	return r.v.run(func(st *state) error {
		for _, u := range st.users {
			if u.Email == user.Email {
				return repositories.ErrDuplicate
			}
		}
		user.ID = st.nextID()
		stamp(&user.CreatedAt, &user.UpdatedAt, r.v.now())
		st.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) GetByID(_ context.Context, id uint64) (*models.User, error) {
	var out *models.User
	err := r.v.run(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.v.run(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r userRepo) Update(_ context.Context, user *models.User) error {
	return r.v.run(func(st *state) error {
		existing, ok := st.users[user.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		for id, u := range st.users {
			if id != user.ID && u.Email == user.Email {
				return repositories.ErrDuplicate
			}
		}
		user.CreatedAt = existing.CreatedAt
		if user.UpdatedAt.IsZero() {
			user.UpdatedAt = r.v.now()
		}
		st.users[user.ID] = *user
		return nil
	})
}

type jobRepo struct{ v *view }

func (r jobRepo) Create(_ context.Context, job *models.Job) error {
	return r.v.run(func(st *state) error {
		job.ID = st.nextID()
		if job.Version == 0 {
			job.Version = 1
		}
		stamp(&job.CreatedAt, &job.UpdatedAt, r.v.now())
		st.jobs[job.ID] = copyJob(*job)
		return nil
	})
}

func (r jobRepo) GetByID(_ context.Context, id uint64) (*models.Job, error) {
	var out *models.Job
	err := r.v.run(func(st *state) error {
		j, ok := st.jobs[id]
		if !ok || j.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		j = copyJob(j)
		out = &j
		return nil
	})
	return out, err
}

func (r jobRepo) UpdateIfVersion(_ context.Context, job *models.Job, expected uint64) error {
	return r.v.run(func(st *state) error {
		existing, ok := st.jobs[job.ID]
		if !ok || existing.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		if existing.Version != expected {
			return repositories.ErrVersionConflict
		}
		job.Version = expected + 1
		job.CreatedAt = existing.CreatedAt
		if job.UpdatedAt.IsZero() {
			job.UpdatedAt = r.v.now()
		}
		st.jobs[job.ID] = copyJob(*job)
		return nil
	})
}

func (r jobRepo) SoftDelete(_ context.Context, id uint64) error {
	return r.v.run(func(st *state) error {
		j, ok := st.jobs[id]
		if !ok || j.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		j.DeletedAt = gorm.DeletedAt{Time: r.v.now(), Valid: true}
		st.jobs[id] = j
		return nil
	})
}

func (r jobRepo) List(_ context.Context, filter repositories.JobFilter) ([]models.Job, int64, error) {
	var out []models.Job
	var total int64
	err := r.v.run(func(st *state) error {
		var matched []models.Job
		for _, j := range st.jobs {
			if j.DeletedAt.Valid {
				continue
			}
			if filter.Status != "" && j.Status != filter.Status {
				continue
			}
			if filter.CategoryID != 0 && j.CategoryID != filter.CategoryID {
				continue
			}
			if filter.OwnerID != 0 && j.OwnerID != filter.OwnerID {
				continue
			}
			matched = append(matched, copyJob(j))
		}
		sort.Slice(matched, func(a, b int) bool {
			if matched[a].CreatedAt.Equal(matched[b].CreatedAt) {
				return matched[a].ID > matched[b].ID
			}
			return matched[a].CreatedAt.After(matched[b].CreatedAt)
		})
		total = int64(len(matched))
		out = paginate(matched, filter.Offset, filter.Limit)
		return nil
	})
	return out, total, err
}

func (r jobRepo) ListOverdueOpen(_ context.Context, now time.Time, limit int) ([]models.Job, error) {
	var out []models.Job
	err := r.v.run(func(st *state) error {
		for _, j := range st.jobs {
			if j.DeletedAt.Valid || j.Status != models.JobStatusOpen || j.Deadline == nil {
				continue
			}
			if j.Deadline.Before(now) {
				out = append(out, copyJob(j))
			}
		}
		sort.Slice(out, func(a, b int) bool { return out[a].Deadline.Before(*out[b].Deadline) })
		out = paginate(out, 0, limit)
		return nil
	})
	return out, err
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type skillRepo struct{ v *view }

func (r skillRepo) Create(_ context.Context, skill *models.Skill) error {
	return r.v.run(func(st *state) error {
		skill.ID = st.nextID()
		stamp(&skill.CreatedAt, &skill.UpdatedAt, r.v.now())
		st.skills[skill.ID] = copySkill(*skill)
		return nil
	})
}

func (r skillRepo) GetByID(_ context.Context, id uint64) (*models.Skill, error) {
	var out *models.Skill
	err := r.v.run(func(st *state) error {
		s, ok := st.skills[id]
		if !ok || s.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		s = copySkill(s)
		out = &s
		return nil
	})
	return out, err
}

func (r skillRepo) Update(_ context.Context, skill *models.Skill) error {
	return r.v.run(func(st *state) error {
		existing, ok := st.skills[skill.ID]
		if !ok || existing.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		skill.CreatedAt = existing.CreatedAt
		if skill.UpdatedAt.IsZero() {
			skill.UpdatedAt = r.v.now()
		}
		st.skills[skill.ID] = copySkill(*skill)
		return nil
	})
}

func (r skillRepo) SoftDelete(_ context.Context, id uint64) error {
	return r.v.run(func(st *state) error {
		s, ok := st.skills[id]
		if !ok || s.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		s.DeletedAt = gorm.DeletedAt{Time: r.v.now(), Valid: true}
		st.skills[id] = s
		return nil
	})
}

func (r skillRepo) ListByUser(_ context.Context, userID uint64) ([]models.Skill, error) {
	var out []models.Skill
	err := r.v.run(func(st *state) error {
		for _, s := range st.skills {
			if s.UserID == userID && !s.DeletedAt.Valid {
				out = append(out, copySkill(s))
			}
		}
		sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
		return nil
	})
	return out, err
}

type paymentRepo struct{ v *view }

func (r paymentRepo) Create(_ context.Context, payment *models.Payment) error {
	return r.v.run(func(st *state) error {
		for _, p := range st.payments {
			if p.JobID == payment.JobID {
				return repositories.ErrDuplicate
			}
		}
		payment.ID = st.nextID()
		if payment.Version == 0 {
			payment.Version = 1
		}
		stamp(&payment.CreatedAt, &payment.UpdatedAt, r.v.now())
		st.payments[payment.ID] = *payment
		return nil
	})
}

func (r paymentRepo) GetByID(_ context.Context, id uint64) (*models.Payment, error) {
	var out *models.Payment
	err := r.v.run(func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r paymentRepo) GetByJobID(_ context.Context, jobID uint64) (*models.Payment, error) {
	var out *models.Payment
	err := r.v.run(func(st *state) error {
		for _, p := range st.payments {
			if p.JobID == jobID {
				p := p
				out = &p
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return out, err
}

func (r paymentRepo) UpdateIfVersion(_ context.Context, payment *models.Payment, expected uint64) error {
	return r.v.run(func(st *state) error {
		existing, ok := st.payments[payment.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		if existing.Version != expected {
			return repositories.ErrVersionConflict
		}
		payment.Version = expected + 1
		payment.CreatedAt = existing.CreatedAt
		if payment.UpdatedAt.IsZero() {
			payment.UpdatedAt = r.v.now()
		}
		st.payments[payment.ID] = *payment
		return nil
	})
}

type reviewRepo struct{ v *view }

func (r reviewRepo) Create(_ context.Context, review *models.Review) error {
	return r.v.run(func(st *state) error {
		for _, existing := range st.reviews {
			if existing.JobID == review.JobID && existing.ReviewerID == review.ReviewerID {
				return repositories.ErrDuplicate
			}
		}
		review.ID = st.nextID()
		stamp(&review.CreatedAt, &review.UpdatedAt, r.v.now())
		st.reviews[review.ID] = *review
		return nil
	})
}

func (r reviewRepo) GetByID(_ context.Context, id uint64) (*models.Review, error) {
	var out *models.Review
	err := r.v.run(func(st *state) error {
		rv, ok := st.reviews[id]
		if !ok {
			return repositories.ErrNotFound
		}
		out = &rv
		return nil
	})
	return out, err
}

func (r reviewRepo) Exists(_ context.Context, jobID, reviewerID uint64) (bool, error) {
	var found bool
	err := r.v.run(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.JobID == jobID && rv.ReviewerID == reviewerID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r reviewRepo) Delete(_ context.Context, id uint64) error {
	return r.v.run(func(st *state) error {
		if _, ok := st.reviews[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(st.reviews, id)
		return nil
	})
}

func (r reviewRepo) ListByReviewee(_ context.Context, revieweeID uint64, includeHidden bool) ([]models.Review, error) {
	var out []models.Review
	err := r.v.run(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.RevieweeID != revieweeID {
				continue
			}
			if !includeHidden && !rv.IsPublic {
				continue
			}
			out = append(out, rv)
		}
		sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
		return nil
	})
	return out, err
}

func (r reviewRepo) RatingStats(_ context.Context, revieweeID uint64) (*models.RatingStats, error) {
	stats := &models.RatingStats{UserID: revieweeID, RatingCounts: make(map[int]int64)}
	err := r.v.run(func(st *state) error {
		var sum int64
		for _, rv := range st.reviews {
			if rv.RevieweeID != revieweeID {
				continue
			}
			stats.RatingCounts[rv.Rating]++
			stats.TotalReviews++
			sum += int64(rv.Rating)
		}
		if stats.TotalReviews > 0 {
			stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
		}
		return nil
	})
	return stats, err
}

type messageRepo struct{ v *view }

func (r messageRepo) Create(_ context.Context, msg *models.Message) error {
	return r.v.run(func(st *state) error {
		msg.ID = st.nextID()
		stamp(&msg.CreatedAt, nil, r.v.now())
		st.messages[msg.ID] = copyMessage(*msg)
		return nil
	})
}

func (r messageRepo) GetByID(_ context.Context, id uint64) (*models.Message, error) {
	var out *models.Message
	err := r.v.run(func(st *state) error {
		m, ok := st.messages[id]
		if !ok || m.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		m = copyMessage(m)
		out = &m
		return nil
	})
	return out, err
}

func (r messageRepo) MarkRead(_ context.Context, id uint64, at time.Time) error {
	return r.v.run(func(st *state) error {
		m, ok := st.messages[id]
		if !ok || m.DeletedAt.Valid || m.IsRead {
			return nil
		}
		m.IsRead = true
		m.ReadAt = &at
		st.messages[id] = m
		return nil
	})
}

func (r messageRepo) SoftDelete(_ context.Context, id uint64) error {
	return r.v.run(func(st *state) error {
		m, ok := st.messages[id]
		if !ok || m.DeletedAt.Valid {
			return repositories.ErrNotFound
		}
		m.DeletedAt = gorm.DeletedAt{Time: r.v.now(), Valid: true}
		st.messages[id] = m
		return nil
	})
}

func (r messageRepo) ListConversation(_ context.Context, conversationKey string, limit int) ([]models.Message, error) {
	var out []models.Message
	err := r.v.run(func(st *state) error {
		for _, m := range st.messages {
			if m.ConversationKey == conversationKey && !m.DeletedAt.Valid {
				out = append(out, copyMessage(m))
			}
		}
		sort.Slice(out, func(a, b int) bool {
			if out[a].CreatedAt.Equal(out[b].CreatedAt) {
				return out[a].ID > out[b].ID
			}
			return out[a].CreatedAt.After(out[b].CreatedAt)
		})
		out = paginate(out, 0, limit)
		return nil
	})
	return out, err
}

type blockRepo struct{ v *view }

func (r blockRepo) Block(_ context.Context, blockerID, blockedID uint64) error {
	return r.v.run(func(st *state) error {
		key := [2]uint64{blockerID, blockedID}
		if _, ok := st.blocks[key]; ok {
			return nil
		}
		st.blocks[key] = models.UserBlock{
			ID:        st.nextID(),
			BlockerID: blockerID,
			BlockedID: blockedID,
			CreatedAt: r.v.now(),
		}
		return nil
	})
}

func (r blockRepo) Unblock(_ context.Context, blockerID, blockedID uint64) error {
	return r.v.run(func(st *state) error {
		delete(st.blocks, [2]uint64{blockerID, blockedID})
		return nil
	})
}

func (r blockRepo) IsBlocked(_ context.Context, blockerID, blockedID uint64) (bool, error) {
	var blocked bool
	err := r.v.run(func(st *state) error {
		_, blocked = st.blocks[[2]uint64{blockerID, blockedID}]
		return nil
	})
	return blocked, err
}

func (r blockRepo) IsMutuallyBlocked(_ context.Context, a, b uint64) (bool, error) {
	var mutual bool
	err := r.v.run(func(st *state) error {
		_, ab := st.blocks[[2]uint64{a, b}]
		_, ba := st.blocks[[2]uint64{b, a}]
		mutual = ab && ba
		return nil
	})
	return mutual, err
}
