package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	} else if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	var result []model.User
	for _, id := range sortedKeys(m.users) {
		u := m.users[id]
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(u.Username, filter.Keyword) &&
			!strings.Contains(u.Name, filter.Keyword) &&
			!strings.Contains(u.Email, filter.Keyword) {
			continue
		}
		result = append(result, *u)
	}
	return paginate(result, filter.Offset, filter.Limit)
}

func (m *mockUserRepo) AssignClass(_ context.Context, userIDs []uint, classID *uint) error {
	for _, id := range userIDs {
		if u, ok := m.users[id]; ok {
			u.ClassID = classID
		}
	}
	return nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[uint]*model.Student
	users    *mockUserRepo // 连接 users 以模拟 join
	nextID   uint
}

func newMockStudentRepo(users *mockUserRepo) *mockStudentRepo {
	return &mockStudentRepo{students: make(map[uint]*model.Student), users: users, nextID: 1}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.ID == 0 {
		student.ID = m.nextID
		m.nextID++
	} else if student.ID >= m.nextID {
		m.nextID = student.ID + 1
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id uint) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		m.attachUser(s)
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID uint) (*model.Student, error) {
	for _, s := range m.students {
		if s.UserID == userID {
			m.attachUser(s)
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByStudentNo(_ context.Context, studentNo string) (*model.Student, error) {
	for _, s := range m.students {
		if s.StudentNo == studentNo {
			m.attachUser(s)
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter) ([]model.Student, int64, error) {
	var result []model.Student
	for _, id := range sortedKeys(m.students) {
		s := m.students[id]
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Major != "" && s.Major != filter.Major {
			continue
		}
		if filter.AdmissionYear != 0 && s.AdmissionYear != filter.AdmissionYear {
			continue
		}
		m.attachUser(s)
		if filter.ClassID != 0 {
			if s.User == nil || s.User.ClassID == nil || *s.User.ClassID != filter.ClassID {
				continue
			}
		}
		if filter.Keyword != "" {
			name := ""
			if s.User != nil {
				name = s.User.Name
			}
			if !strings.Contains(s.StudentNo, filter.Keyword) && !strings.Contains(name, filter.Keyword) {
				continue
			}
		}
		result = append(result, *s)
	}
	return paginate(result, filter.Offset, filter.Limit)
}

func (m *mockStudentRepo) ListByClassID(_ context.Context, classID uint) ([]model.Student, error) {
	var result []model.Student
	for _, id := range sortedKeys(m.students) {
		s := m.students[id]
		m.attachUser(s)
		if s.User != nil && s.User.ClassID != nil && *s.User.ClassID == classID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) MaxStudentNo(_ context.Context, prefix string) (string, error) {
	max := ""
	for _, s := range m.students {
		if strings.HasPrefix(s.StudentNo, prefix) && s.StudentNo > max {
			max = s.StudentNo
		}
	}
	return max, nil
}

func (m *mockStudentRepo) MarkUnreported(_ context.Context, admissionYear int) (int64, error) {
	var affected int64
	for _, s := range m.students {
		if s.AdmissionYear == admissionYear && s.Status == model.StudentStatusPending {
			s.Status = model.StudentStatusUnreported
			affected++
		}
	}
	return affected, nil
}

func (m *mockStudentRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(m.students)), nil
}

func (m *mockStudentRepo) StatusCounts(_ context.Context, admissionYear int) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, s := range m.students {
		if admissionYear != 0 && s.AdmissionYear != admissionYear {
			continue
		}
		counts[s.Status]++
	}
	return counts, nil
}

func (m *mockStudentRepo) GenderCounts(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, s := range m.students {
		m.attachUser(s)
		if s.User != nil && s.User.Gender != "" {
			counts[s.User.Gender]++
		}
	}
	return counts, nil
}

func (m *mockStudentRepo) ProvinceTop(_ context.Context, limit int) ([]repository.NameCount, error) {
	counts := make(map[string]int64)
	for _, s := range m.students {
		m.attachUser(s)
		if s.User != nil && s.User.Province != "" {
			counts[s.User.Province]++
		}
	}
	result := toSortedNameCounts(counts)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockStudentRepo) MajorCounts(_ context.Context) ([]repository.NameCount, error) {
	counts := make(map[string]int64)
	for _, s := range m.students {
		if s.Major != "" {
			counts[s.Major]++
		}
	}
	return toSortedNameCounts(counts), nil
}

func (m *mockStudentRepo) ReportTrend(_ context.Context, admissionYear int) ([]repository.DateCount, error) {
	counts := make(map[time.Time]int64)
	for _, s := range m.students {
		if s.AdmissionYear != admissionYear || s.ReportTime == nil {
			continue
		}
		day := s.ReportTime.Truncate(24 * time.Hour)
		counts[day]++
	}
	var result []repository.DateCount
	for day, n := range counts {
		result = append(result, repository.DateCount{Date: day, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockStudentRepo) attachUser(s *model.Student) {
	if m.users != nil {
		if u, ok := m.users.users[s.UserID]; ok {
			s.User = u
		}
	}
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers map[uint]*model.Teacher
	nextID   uint
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[uint]*model.Teacher), nextID: 1}
}

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	if teacher.ID == 0 {
		teacher.ID = m.nextID
		m.nextID++
	} else if teacher.ID >= m.nextID {
		m.nextID = teacher.ID + 1
	}
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id uint) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByUserID(_ context.Context, userID uint) (*model.Teacher, error) {
	for _, t := range m.teachers {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) List(_ context.Context, offset, limit int) ([]model.Teacher, int64, error) {
	var result []model.Teacher
	for _, id := range sortedKeys(m.teachers) {
		result = append(result, *m.teachers[id])
	}
	return paginate(result, offset, limit)
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[uint]*model.Class
	nextID  uint
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[uint]*model.Class), nextID: 1}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ID == 0 {
		class.ID = m.nextID
		m.nextID++
	} else if class.ID >= m.nextID {
		m.nextID = class.ID + 1
	}
	m.classes[class.ID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id uint) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) GetByName(_ context.Context, name string) (*model.Class, error) {
	for _, c := range m.classes {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id uint) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) List(_ context.Context, filter repository.ClassFilter) ([]model.Class, int64, error) {
	var result []model.Class
	for _, id := range sortedKeys(m.classes) {
		c := m.classes[id]
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Major != "" && c.Major != filter.Major {
			continue
		}
		if filter.Year != 0 && c.Year != filter.Year {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(c.Name, filter.Keyword) {
			continue
		}
		result = append(result, *c)
	}
	return paginate(result, filter.Offset, filter.Limit)
}

func (m *mockClassRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(m.classes)), nil
}

func (m *mockClassRepo) AcquireSeats(_ context.Context, classID uint, n int) (bool, error) {
	c, ok := m.classes[classID]
	if !ok {
		return false, nil
	}
	if c.AssignedStudents+n > c.Capacity {
		return false, nil
	}
	c.AssignedStudents += n
	return true, nil
}

func (m *mockClassRepo) ReleaseSeats(_ context.Context, classID uint, n int) error {
	if c, ok := m.classes[classID]; ok {
		c.AssignedStudents -= n
		if c.AssignedStudents < 0 {
			c.AssignedStudents = 0
		}
	}
	return nil
}

// ── Mock DormitoryRepository ──

type mockDormitoryRepo struct {
	buildings   map[uint]*model.DormitoryBuilding
	rooms       map[uint]*model.DormitoryRoom
	assignments map[uint]*model.DormitoryAssignment
	students    *mockStudentRepo
	nextID      uint
}

func newMockDormitoryRepo(students *mockStudentRepo) *mockDormitoryRepo {
	return &mockDormitoryRepo{
		buildings:   make(map[uint]*model.DormitoryBuilding),
		rooms:       make(map[uint]*model.DormitoryRoom),
		assignments: make(map[uint]*model.DormitoryAssignment),
		students:    students,
		nextID:      1,
	}
}

func (m *mockDormitoryRepo) nextIDValue() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockDormitoryRepo) CreateBuilding(_ context.Context, building *model.DormitoryBuilding) error {
	if building.ID == 0 {
		building.ID = m.nextIDValue()
	}
	m.buildings[building.ID] = building
	return nil
}

func (m *mockDormitoryRepo) GetBuilding(_ context.Context, id uint) (*model.DormitoryBuilding, error) {
	if b, ok := m.buildings[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDormitoryRepo) GetBuildingByName(_ context.Context, name string) (*model.DormitoryBuilding, error) {
	for _, b := range m.buildings {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDormitoryRepo) UpdateBuilding(_ context.Context, building *model.DormitoryBuilding) error {
	m.buildings[building.ID] = building
	return nil
}

func (m *mockDormitoryRepo) DeleteBuilding(_ context.Context, id uint) error {
	delete(m.buildings, id)
	return nil
}

func (m *mockDormitoryRepo) ListBuildings(_ context.Context) ([]model.DormitoryBuilding, error) {
	var result []model.DormitoryBuilding
	for _, id := range sortedKeys(m.buildings) {
		result = append(result, *m.buildings[id])
	}
	return result, nil
}

func (m *mockDormitoryRepo) CreateRoom(_ context.Context, room *model.DormitoryRoom) error {
	if room.ID == 0 {
		room.ID = m.nextIDValue()
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *mockDormitoryRepo) GetRoom(_ context.Context, id uint) (*model.DormitoryRoom, error) {
	if r, ok := m.rooms[id]; ok {
		if b, okb := m.buildings[r.BuildingID]; okb {
			r.Building = b
		}
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDormitoryRepo) GetRoomByNumber(_ context.Context, buildingID uint, roomNumber string) (*model.DormitoryRoom, error) {
	for _, r := range m.rooms {
		if r.BuildingID == buildingID && r.RoomNumber == roomNumber {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDormitoryRepo) UpdateRoom(_ context.Context, room *model.DormitoryRoom) error {
	m.rooms[room.ID] = room
	return nil
}

func (m *mockDormitoryRepo) DeleteRoom(_ context.Context, id uint) error {
	delete(m.rooms, id)
	return nil
}

func (m *mockDormitoryRepo) ListRoomsByBuilding(_ context.Context, buildingID uint) ([]model.DormitoryRoom, error) {
	var result []model.DormitoryRoom
	for _, id := range sortedKeys(m.rooms) {
		if m.rooms[id].BuildingID == buildingID {
			result = append(result, *m.rooms[id])
		}
	}
	return result, nil
}

func (m *mockDormitoryRepo) CreateAssignment(_ context.Context, assignment *model.DormitoryAssignment) error {
	if assignment.ID == 0 {
		assignment.ID = m.nextIDValue()
	}
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *mockDormitoryRepo) GetActiveByStudent(_ context.Context, studentID uint) (*model.DormitoryAssignment, error) {
	for _, a := range m.assignments {
		if a.StudentID == studentID && a.Status == model.AssignmentStatusActive {
			if r, ok := m.rooms[a.RoomID]; ok {
				a.Room = r
				if b, okb := m.buildings[r.BuildingID]; okb {
					r.Building = b
				}
			}
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDormitoryRepo) UpdateAssignment(_ context.Context, assignment *model.DormitoryAssignment) error {
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *mockDormitoryRepo) ListActiveByRoom(_ context.Context, roomID uint) ([]model.DormitoryAssignment, error) {
	var result []model.DormitoryAssignment
	for _, id := range sortedKeys(m.assignments) {
		a := m.assignments[id]
		if a.RoomID == roomID && a.Status == model.AssignmentStatusActive {
			if m.students != nil {
				if s, err := m.students.GetByID(context.Background(), a.StudentID); err == nil {
					a.Student = s
				}
			}
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockDormitoryRepo) CountActiveByRoom(_ context.Context, roomID uint) (int64, error) {
	var n int64
	for _, a := range m.assignments {
		if a.RoomID == roomID && a.Status == model.AssignmentStatusActive {
			n++
		}
	}
	return n, nil
}

func (m *mockDormitoryRepo) CountActiveByBuilding(_ context.Context, buildingID uint) (int64, error) {
	var n int64
	for _, a := range m.assignments {
		if a.Status != model.AssignmentStatusActive {
			continue
		}
		if r, ok := m.rooms[a.RoomID]; ok && r.BuildingID == buildingID {
			n++
		}
	}
	return n, nil
}

func (m *mockDormitoryRepo) ListUnassignedStudents(_ context.Context, gender string, offset, limit int) ([]model.Student, int64, error) {
	housed := make(map[uint]bool)
	for _, a := range m.assignments {
		if a.Status == model.AssignmentStatusActive {
			housed[a.StudentID] = true
		}
	}
	var result []model.Student
	for _, id := range sortedKeys(m.students.students) {
		s := m.students.students[id]
		if s.Status != model.StudentStatusReported || housed[s.ID] {
			continue
		}
		m.students.attachUser(s)
		if s.User == nil || s.User.Gender != gender {
			continue
		}
		result = append(result, *s)
	}
	return paginate(result, offset, limit)
}

// ── Mock ScoreRepository ──

type mockScoreRepo struct {
	scores   map[uint]*model.Score
	students *mockStudentRepo
	nextID   uint
}

func newMockScoreRepo(students *mockStudentRepo) *mockScoreRepo {
	return &mockScoreRepo{scores: make(map[uint]*model.Score), students: students, nextID: 1}
}

func (m *mockScoreRepo) Create(_ context.Context, score *model.Score) error {
	if score.ID == 0 {
		score.ID = m.nextID
		m.nextID++
	}
	m.scores[score.ID] = score
	return nil
}

func (m *mockScoreRepo) GetByStudentID(_ context.Context, studentID uint) (*model.Score, error) {
	for _, s := range m.scores {
		if s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScoreRepo) Update(_ context.Context, score *model.Score) error {
	m.scores[score.ID] = score
	return nil
}

func (m *mockScoreRepo) List(_ context.Context, filter repository.ScoreFilter) ([]model.Score, int64, error) {
	var result []model.Score
	for _, id := range sortedKeys(m.scores) {
		s := m.scores[id]
		if filter.Year != 0 && s.Year != filter.Year {
			continue
		}
		m.attachStudent(s)
		if filter.Major != "" {
			if s.Student == nil || s.Student.Major != filter.Major {
				continue
			}
		}
		result = append(result, *s)
	}
	return paginate(result, filter.Offset, filter.Limit)
}

func (m *mockScoreRepo) ListForRanking(_ context.Context, year int) ([]model.Score, error) {
	var result []model.Score
	for _, id := range sortedKeys(m.scores) {
		s := m.scores[id]
		if year != 0 && s.Year != year {
			continue
		}
		m.attachStudent(s)
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalScore != result[j].TotalScore {
			return result[i].TotalScore > result[j].TotalScore
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

func (m *mockScoreRepo) UpdateRanks(_ context.Context, scores []model.Score) error {
	for i := range scores {
		if s, ok := m.scores[scores[i].ID]; ok {
			s.ProvinceRank = scores[i].ProvinceRank
			s.MajorRank = scores[i].MajorRank
		}
	}
	return nil
}

func (m *mockScoreRepo) Aggregate(_ context.Context, year int) (*repository.ScoreAggregate, error) {
	agg := &repository.ScoreAggregate{}
	sum := 0.0
	for _, s := range m.scores {
		if year != 0 && s.Year != year {
			continue
		}
		if agg.Count == 0 || s.TotalScore > agg.Max {
			agg.Max = s.TotalScore
		}
		if agg.Count == 0 || s.TotalScore < agg.Min {
			agg.Min = s.TotalScore
		}
		agg.Count++
		sum += s.TotalScore
	}
	if agg.Count > 0 {
		agg.Average = sum / float64(agg.Count)
	}
	return agg, nil
}

func (m *mockScoreRepo) attachStudent(s *model.Score) {
	if m.students != nil {
		if st, ok := m.students.students[s.StudentID]; ok {
			m.students.attachUser(st)
			s.Student = st
		}
	}
}

// ── Mock TodoRepository ──

type mockTodoRepo struct {
	todos  map[uint]*model.Todo
	nextID uint
}

func newMockTodoRepo() *mockTodoRepo {
	return &mockTodoRepo{todos: make(map[uint]*model.Todo), nextID: 1}
}

func (m *mockTodoRepo) Create(_ context.Context, todo *model.Todo) error {
	if todo.ID == 0 {
		todo.ID = m.nextID
		m.nextID++
	}
	m.todos[todo.ID] = todo
	return nil
}

func (m *mockTodoRepo) GetByID(_ context.Context, id uint) (*model.Todo, error) {
	if t, ok := m.todos[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTodoRepo) Update(_ context.Context, todo *model.Todo) error {
	m.todos[todo.ID] = todo
	return nil
}

func (m *mockTodoRepo) Delete(_ context.Context, id uint) error {
	delete(m.todos, id)
	return nil
}

func (m *mockTodoRepo) List(_ context.Context, filter repository.TodoFilter) ([]model.Todo, int64, error) {
	var result []model.Todo
	for _, id := range sortedKeys(m.todos) {
		t := m.todos[id]
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.StudentID != 0 && (t.StudentID == nil || *t.StudentID != filter.StudentID) {
			continue
		}
		if filter.TeacherID != 0 && (t.TeacherID == nil || *t.TeacherID != filter.TeacherID) {
			continue
		}
		result = append(result, *t)
	}
	return paginate(result, filter.Offset, filter.Limit)
}

// ── Mock SettingsRepository ──

type mockSettingsRepo struct {
	settings *model.Settings
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{}
}

func (m *mockSettingsRepo) Get(_ context.Context) (*model.Settings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.settings, nil
}

func (m *mockSettingsRepo) GetOrCreate(_ context.Context) (*model.Settings, error) {
	if m.settings == nil {
		m.settings = model.DefaultSettings()
		m.settings.ID = 1
	}
	return m.settings, nil
}

func (m *mockSettingsRepo) Update(_ context.Context, settings *model.Settings) error {
	m.settings = settings
	return nil
}

// ── Mock SystemLogRepository ──

type mockSystemLogRepo struct {
	logs []*model.SystemLog
}

func newMockSystemLogRepo() *mockSystemLogRepo {
	return &mockSystemLogRepo{}
}

func (m *mockSystemLogRepo) Create(_ context.Context, log *model.SystemLog) error {
	log.ID = uint(len(m.logs) + 1)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockSystemLogRepo) ListByType(_ context.Context, logType string, offset, limit int) ([]model.SystemLog, int64, error) {
	var result []model.SystemLog
	// 新记录在前
	for i := len(m.logs) - 1; i >= 0; i-- {
		if logType != "" && m.logs[i].Type != logType {
			continue
		}
		result = append(result, *m.logs[i])
	}
	return paginate(result, offset, limit)
}

// ── 测试装配 ──

type mockRepos struct {
	user      *mockUserRepo
	student   *mockStudentRepo
	teacher   *mockTeacherRepo
	class     *mockClassRepo
	dormitory *mockDormitoryRepo
	score     *mockScoreRepo
	todo      *mockTodoRepo
	settings  *mockSettingsRepo
	systemLog *mockSystemLogRepo
}

// newMockRepository 构造全 mock 的仓储聚合；db 为 nil 时事务退化为直通
func newMockRepository() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	students := newMockStudentRepo(users)
	mocks := &mockRepos{
		user:      users,
		student:   students,
		teacher:   newMockTeacherRepo(),
		class:     newMockClassRepo(),
		dormitory: newMockDormitoryRepo(students),
		score:     newMockScoreRepo(students),
		todo:      newMockTodoRepo(),
		settings:  newMockSettingsRepo(),
		systemLog: newMockSystemLogRepo(),
	}
	repo := &repository.Repository{
		User:      mocks.user,
		Student:   mocks.student,
		Teacher:   mocks.teacher,
		Class:     mocks.class,
		Dormitory: mocks.dormitory,
		Score:     mocks.score,
		Todo:      mocks.todo,
		Settings:  mocks.settings,
		SystemLog: mocks.systemLog,
	}
	return repo, mocks
}

// ── 通用辅助 ──

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func toSortedNameCounts(counts map[string]int64) []repository.NameCount {
	result := make([]repository.NameCount, 0, len(counts))
	for name, n := range counts {
		result = append(result, repository.NameCount{Name: name, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func paginate[T any](items []T, offset, limit int) ([]T, int64, error) {
	total := int64(len(items))
	if offset >= len(items) {
		return nil, total, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, total, nil
}
