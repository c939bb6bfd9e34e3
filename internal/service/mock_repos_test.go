package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
	pkgerrors "educareer/backend/pkg/errors"
)

// ── 测试用仓储聚合 ──

type mockRepos struct {
	users         *mockUserRepo
	courses       *mockCourseRepo
	enrollments   *mockEnrollmentRepo
	slots         *mockSlotRepo
	assignments   *mockAssignmentRepo
	submissions   *mockSubmissionRepo
	jobs          *mockJobRepo
	applications  *mockApplicationRepo
	resumes       *mockResumeRepo
	notifications *mockNotificationRepo
	preferences   *mockPreferenceRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:         &mockUserRepo{users: make(map[string]*model.User)},
		courses:       &mockCourseRepo{courses: make(map[string]*model.Course)},
		enrollments:   &mockEnrollmentRepo{},
		slots:         &mockSlotRepo{},
		assignments:   &mockAssignmentRepo{assignments: make(map[string]*model.Assignment)},
		submissions:   &mockSubmissionRepo{},
		jobs:          &mockJobRepo{jobs: make(map[string]*model.JobOpportunity)},
		applications:  &mockApplicationRepo{},
		resumes:       &mockResumeRepo{resumes: make(map[string]*model.Resume)},
		notifications: &mockNotificationRepo{},
		preferences:   &mockPreferenceRepo{prefs: make(map[string]*model.NotificationPreference)},
	}
	return &repository.Repository{
		User:         m.users,
		Course:       m.courses,
		Enrollment:   m.enrollments,
		Slot:         m.slots,
		Assignment:   m.assignments,
		Submission:   m.submissions,
		Job:          m.jobs,
		Application:  m.applications,
		Resume:       m.resumes,
		Notification: m.notifications,
		Preference:   m.preferences,
	}, m
}

var idSeq struct {
	sync.Mutex
	n int
}

func nextID(prefix string) string {
	idSeq.Lock()
	defer idSeq.Unlock()
	idSeq.n++
	return fmt.Sprintf("%s-%d", prefix, idSeq.n)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // key: user_id
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// UpdateProfile 与 GORM 实现一致：保留存量的课表与密码
func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *user
	updated.Timetable = existing.Timetable
	updated.Courses = existing.Courses
	updated.PasswordHash = existing.PasswordHash
	m.users[user.UserID] = &updated
	return nil
}

func (m *mockUserRepo) UpdateTimetable(_ context.Context, id string, timetable []model.DaySchedule, courses []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Timetable = datatypes.NewJSONSlice(timetable)
	u.Courses = datatypes.NewJSONSlice(courses)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	for _, c := range m.courses {
		if c.Code == course.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if course.CourseID == "" {
		course.CourseID = nextID("course")
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var all []model.Course
	for _, c := range m.courses {
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(c.Name, filter.Keyword) && !strings.Contains(c.Code, filter.Keyword) {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, offset, limit), int64(len(all)), nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments []*model.Enrollment
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	for _, x := range m.enrollments {
		if x.UserID == e.UserID && x.CourseID == e.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	if e.EnrollmentID == "" {
		e.EnrollmentID = nextID("enrollment")
	}
	m.enrollments = append(m.enrollments, e)
	return nil
}

func (m *mockEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ActiveCourseIDs(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for _, e := range m.enrollments {
		if e.UserID == userID && e.Status == model.EnrollmentActive {
			ids = append(ids, e.CourseID)
		}
	}
	return ids, nil
}

func (m *mockEnrollmentRepo) CountActive(ctx context.Context, userID string) (int64, error) {
	ids, _ := m.ActiveCourseIDs(ctx, userID)
	return int64(len(ids)), nil
}

// ── Mock TimetableSlotRepository ──

type mockSlotRepo struct {
	slots []*model.TimetableSlot
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.TimetableSlot) error {
	if slot.SlotID == "" {
		slot.SlotID = nextID("slot")
	}
	m.slots = append(m.slots, slot)
	return nil
}

func (m *mockSlotRepo) ListByCourses(_ context.Context, courseIDs []string) ([]model.TimetableSlot, error) {
	out := []model.TimetableSlot{}
	for _, s := range m.slots {
		for _, id := range courseIDs {
			if s.CourseID == id {
				out = append(out, *s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// ── Mock AssignmentRepository / SubmissionRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = nextID("assignment")
	}
	m.assignments[a.AssignmentID] = a
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByCourses(_ context.Context, courseIDs []string) ([]model.Assignment, error) {
	out := []model.Assignment{}
	for _, a := range m.assignments {
		for _, id := range courseIDs {
			if a.CourseID == id {
				out = append(out, *a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

type mockSubmissionRepo struct {
	submissions []*model.Submission
}

func (m *mockSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	for _, x := range m.submissions {
		if x.AssignmentID == s.AssignmentID && x.UserID == s.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.SubmissionID == "" {
		s.SubmissionID = nextID("submission")
	}
	m.submissions = append(m.submissions, s)
	return nil
}

// ── Mock JobRepository / ApplicationRepository ──

type mockJobRepo struct {
	jobs map[string]*model.JobOpportunity
}

func (m *mockJobRepo) Create(_ context.Context, job *model.JobOpportunity) error {
	if job.JobID == "" {
		job.JobID = nextID("job")
	}
	m.jobs[job.JobID] = job
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.JobOpportunity, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) ListActive(_ context.Context, filter repository.JobFilter, offset, limit int) ([]model.JobOpportunity, int64, error) {
	var all []model.JobOpportunity
	for _, j := range m.jobs {
		if !j.IsActive {
			continue
		}
		if filter.JobType != "" && j.JobType != filter.JobType {
			continue
		}
		all = append(all, *j)
	}
	sort.Slice(all, func(i, k int) bool { return all[i].Title < all[k].Title })
	return page(all, offset, limit), int64(len(all)), nil
}

type mockApplicationRepo struct {
	applications []*model.JobApplication
}

func (m *mockApplicationRepo) Create(_ context.Context, a *model.JobApplication) error {
	for _, x := range m.applications {
		if x.UserID == a.UserID && x.JobID == a.JobID {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.ApplicationID == "" {
		a.ApplicationID = nextID("application")
	}
	m.applications = append(m.applications, a)
	return nil
}

func (m *mockApplicationRepo) ListByUser(_ context.Context, userID string) ([]model.JobApplication, error) {
	var out []model.JobApplication
	for _, a := range m.applications {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockApplicationRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	list, _ := m.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

// ── Mock ResumeRepository ──

type mockResumeRepo struct {
	resumes   map[string]*model.Resume
	createErr error
}

func (m *mockResumeRepo) Create(_ context.Context, r *model.Resume) error {
	if m.createErr != nil {
		return m.createErr
	}
	if r.ResumeID == "" {
		r.ResumeID = nextID("resume")
	}
	if r.IsDefault {
		for _, other := range m.resumes {
			if other.UserID == r.UserID {
				other.IsDefault = false
			}
		}
	}
	cp := *r
	m.resumes[r.ResumeID] = &cp
	return nil
}

func (m *mockResumeRepo) GetByID(_ context.Context, id string) (*model.Resume, error) {
	if r, ok := m.resumes[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResumeRepo) ListByUser(_ context.Context, userID string) ([]model.Resume, error) {
	var out []model.Resume
	for _, r := range m.resumes {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockResumeRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	list, _ := m.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

func (m *mockResumeRepo) Update(_ context.Context, r *model.Resume) error {
	stored, ok := m.resumes[r.ResumeID]
	if !ok || stored.Version != r.Version {
		return pkgerrors.ErrOptimisticLock
	}
	r.Version++
	cp := *r
	m.resumes[r.ResumeID] = &cp
	return nil
}

func (m *mockResumeRepo) SetDefault(_ context.Context, userID, resumeID string) error {
	for _, r := range m.resumes {
		if r.UserID == userID {
			r.IsDefault = r.ResumeID == resumeID
		}
	}
	return nil
}

// ── Mock NotificationRepository / PreferenceRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
	createErr     error
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if n.NotificationID == "" {
		n.NotificationID = nextID("notification")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) ListLatest(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.notifications {
		if x.NotificationID == id && x.UserID == userID {
			x.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.notifications {
		if x.UserID == userID && !x.IsRead {
			x.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) byUser(userID string) []*model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type mockPreferenceRepo struct {
	prefs map[string]*model.NotificationPreference
}

func (m *mockPreferenceRepo) Get(_ context.Context, userID string) (*model.NotificationPreference, error) {
	if p, ok := m.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) Upsert(_ context.Context, pref *model.NotificationPreference) error {
	cp := *pref
	m.prefs[pref.UserID] = &cp
	return nil
}

// ── 辅助函数 ──

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
