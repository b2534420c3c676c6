package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// ── 测试辅助 ──

func setupTestImporterService() (ImporterService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewImporterService(repo, zap.NewNop())
	return svc, mocks
}

// buildAccountExcel 按给定表头构造账号导入文件
func buildAccountExcel(t *testing.T, header []string, rows [][]string) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		t.Fatalf("写入表头失败: %v", err)
	}
	for i, row := range rows {
		data := make([]interface{}, len(row))
		for j, v := range row {
			data[j] = v
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &data); err != nil {
			t.Fatalf("写入数据行失败: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成 Excel 失败: %v", err)
	}
	return buf
}

var (
	testTeacherHeader = []string{"用户名*", "邮箱*", "姓名*", "性别", "联系方式", "省份", "院系", "职称", "研究方向"}
	testStudentHeader = []string{"用户名*", "邮箱*", "姓名*", "性别", "联系方式", "省份", "专业", "学号", "入学年份"}
)

// ── ImportTeachers 测试 ──

func TestImporterService_ImportTeachers_Success(t *testing.T) {
	svc, mocks := setupTestImporterService()

	r := buildAccountExcel(t, testTeacherHeader, [][]string{
		{"wang", "wang@example.com", "王老师", "M", "13800000001", "湖北省", "计算机学院", "教授", "分布式系统"},
		{"li", "li@example.com", "李老师", "F", "", "", "软件学院", "", ""},
	})

	result, err := svc.ImportTeachers(context.Background(), r)
	if err != nil {
		t.Fatalf("ImportTeachers 应成功: %v", err)
	}
	if result.Imported != 2 || len(result.Failed) != 0 {
		t.Fatalf("期望导入 2 行，实际=%+v", result)
	}

	user, err := mocks.user.GetByUsername(context.Background(), "wang")
	if err != nil {
		t.Fatalf("查询导入用户失败: %v", err)
	}
	if user.Role != model.RoleTeacher || !user.IsActive {
		t.Errorf("导入账号角色/状态不符，实际=%+v", user)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("123456")); err != nil {
		t.Error("初始密码应为默认口令")
	}
	teacher, err := mocks.teacher.GetByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("查询教师档案失败: %v", err)
	}
	if teacher.Department != "计算机学院" || teacher.Title != "教授" {
		t.Errorf("教师档案不符，实际=%+v", teacher)
	}
}

func TestImporterService_ImportTeachers_DuplicateInFile(t *testing.T) {
	svc, _ := setupTestImporterService()

	r := buildAccountExcel(t, testTeacherHeader, [][]string{
		{"wang", "wang@example.com", "王老师", "", "", "", "计算机学院", "", ""},
		{"wang", "wang2@example.com", "王二", "", "", "", "计算机学院", "", ""},
	})

	result, err := svc.ImportTeachers(context.Background(), r)
	if err != nil {
		t.Fatalf("ImportTeachers 应成功: %v", err)
	}
	if result.Imported != 1 || len(result.Failed) != 1 {
		t.Fatalf("重复用户名应整行失败，实际=%+v", result)
	}
	if !strings.Contains(result.Failed[0].Reason, "重复") {
		t.Errorf("失败原因应提示重复，实际=%s", result.Failed[0].Reason)
	}
}

func TestImporterService_ImportTeachers_ExistingUsername(t *testing.T) {
	svc, mocks := setupTestImporterService()
	seedStudent(mocks, "wang", model.StudentStatusPending, 2026)

	r := buildAccountExcel(t, testTeacherHeader, [][]string{
		{"wang", "other@example.com", "王老师", "", "", "", "计算机学院", "", ""},
	})

	result, err := svc.ImportTeachers(context.Background(), r)
	if err != nil {
		t.Fatalf("ImportTeachers 应成功: %v", err)
	}
	if result.Imported != 0 || len(result.Failed) != 1 {
		t.Fatalf("已存在用户名应失败，实际=%+v", result)
	}
}

func TestImporterService_ImportTeachers_BadTemplate(t *testing.T) {
	svc, _ := setupTestImporterService()

	r := buildAccountExcel(t, []string{"用户名", "邮箱"}, [][]string{{"wang", "wang@example.com"}})
	if _, err := svc.ImportTeachers(context.Background(), r); !errors.Is(err, ErrBadExcelTemplate) {
		t.Errorf("期望 ErrBadExcelTemplate，实际: %v", err)
	}
}

// ── ImportStudents 测试 ──

func TestImporterService_ImportStudents_AutoStudentNo(t *testing.T) {
	svc, mocks := setupTestImporterService()

	r := buildAccountExcel(t, testStudentHeader, [][]string{
		{"zhao", "zhao@example.com", "赵同学", "M", "", "广东", "软件工程", "", "2026"},
		{"qian", "qian@example.com", "钱同学", "F", "", "湖南", "软件工程", "", "2026"},
	})

	result, err := svc.ImportStudents(context.Background(), r)
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("期望导入 2 行，实际=%+v", result)
	}

	u1, _ := mocks.user.GetByUsername(context.Background(), "zhao")
	s1, err := mocks.student.GetByUserID(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("查询学生档案失败: %v", err)
	}
	if s1.StudentNo != "S20260001" {
		t.Errorf("期望自动学号=S20260001，实际=%s", s1.StudentNo)
	}
	if s1.Status != model.StudentStatusPending {
		t.Errorf("期望默认状态=pending，实际=%s", s1.Status)
	}
	if s1.AdmissionDate == nil || s1.AdmissionDate.Month() != 9 || s1.AdmissionDate.Day() != 1 {
		t.Errorf("入学日期应为 9 月 1 日，实际=%v", s1.AdmissionDate)
	}
	if s1.GraduationDate == nil || s1.GraduationDate.Year() != 2030 {
		t.Errorf("毕业年份应为 2030，实际=%v", s1.GraduationDate)
	}

	u2, _ := mocks.user.GetByUsername(context.Background(), "qian")
	s2, _ := mocks.student.GetByUserID(context.Background(), u2.ID)
	if s2.StudentNo != "S20260002" {
		t.Errorf("自动学号应连续，实际=%s", s2.StudentNo)
	}
}

func TestImporterService_ImportStudents_ExplicitNoConflicts(t *testing.T) {
	svc, mocks := setupTestImporterService()
	existing := seedStudent(mocks, "stu1", model.StudentStatusPending, 2026)

	r := buildAccountExcel(t, testStudentHeader, [][]string{
		{"zhao", "zhao@example.com", "赵同学", "", "", "", "软件工程", existing.StudentNo, "2026"}, // 学号已存在
		{"qian", "qian@example.com", "钱同学", "", "", "", "软件工程", "S20269001", "2026"},
		{"sun", "sun@example.com", "孙同学", "", "", "", "软件工程", "S20269001", "2026"}, // 文件内重复
	})

	result, err := svc.ImportStudents(context.Background(), r)
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if result.Imported != 1 || len(result.Failed) != 2 {
		t.Fatalf("期望 1 行成功 2 行失败，实际=%+v", result)
	}
}

func TestImporterService_ImportStudents_InvalidYear(t *testing.T) {
	svc, _ := setupTestImporterService()

	r := buildAccountExcel(t, testStudentHeader, [][]string{
		{"zhao", "zhao@example.com", "赵同学", "", "", "", "软件工程", "", "199"},
	})

	result, err := svc.ImportStudents(context.Background(), r)
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if len(result.Failed) != 1 || !strings.Contains(result.Failed[0].Reason, "年份") {
		t.Fatalf("无效年份应失败，实际=%+v", result)
	}
}

// ── 模板 / 导出测试 ──

func TestImporterService_Templates(t *testing.T) {
	svc, _ := setupTestImporterService()

	if _, err := svc.TeacherTemplate(context.Background()); err != nil {
		t.Fatalf("TeacherTemplate 应成功: %v", err)
	}

	buf, err := svc.StudentTemplate(context.Background())
	if err != nil {
		t.Fatalf("StudentTemplate 应成功: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("模板应为合法 Excel: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("学生信息")
	if err != nil {
		t.Fatalf("读取模板失败: %v", err)
	}
	if len(rows) < 2 {
		t.Fatal("模板应包含表头和示例行")
	}
	if got := strings.TrimSuffix(rows[0][0], "*"); got != "用户名" {
		t.Errorf("模板首列应为用户名，实际=%s", rows[0][0])
	}

	// 表头加星的列要与必填项一致
	starred := make(map[string]bool)
	for _, h := range rows[0] {
		if strings.HasSuffix(h, "*") {
			starred[strings.TrimSuffix(h, "*")] = true
		}
	}
	for _, want := range []string{"用户名", "邮箱", "姓名", "专业", "学号", "入学年份"} {
		if !starred[want] {
			t.Errorf("列 %s 应标记为必填，实际表头=%v", want, rows[0])
		}
	}
	if starred["性别"] {
		t.Errorf("性别不应标记为必填，实际表头=%v", rows[0])
	}

	notes, err := f.GetRows("填写说明")
	if err != nil {
		t.Fatalf("模板应包含填写说明页: %v", err)
	}
	defaults := model.DefaultSettings()
	var majorNote string
	for _, row := range notes {
		if len(row) >= 2 && row[0] == "专业选项" {
			majorNote = row[1]
		}
	}
	if majorNote == "" {
		t.Fatalf("填写说明应列出专业选项，实际=%v", notes)
	}
	for _, m := range defaults.Majors {
		if !strings.Contains(majorNote, m) {
			t.Errorf("专业选项应包含 %s，实际=%s", m, majorNote)
		}
	}
}

func TestImporterService_TeacherTemplate_ListsDepartments(t *testing.T) {
	svc, _ := setupTestImporterService()

	buf, err := svc.TeacherTemplate(context.Background())
	if err != nil {
		t.Fatalf("TeacherTemplate 应成功: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("模板应为合法 Excel: %v", err)
	}
	defer f.Close()

	notes, err := f.GetRows("填写说明")
	if err != nil {
		t.Fatalf("模板应包含填写说明页: %v", err)
	}
	var deptNote string
	for _, row := range notes {
		if len(row) >= 2 && row[0] == "院系选项" {
			deptNote = row[1]
		}
	}
	if deptNote == "" {
		t.Fatalf("填写说明应列出院系选项，实际=%v", notes)
	}
	for _, d := range model.DefaultSettings().Departments {
		if !strings.Contains(deptNote, d) {
			t.Errorf("院系选项应包含 %s，实际=%s", d, deptNote)
		}
	}
}

func TestImporterService_ExportStudents(t *testing.T) {
	svc, mocks := setupTestImporterService()
	student := seedStudent(mocks, "stu1", model.StudentStatusReported, 2026)
	student.Major = "软件工程"

	buf, err := svc.ExportStudents(context.Background(), &dto.ListStudentsRequest{})
	if err != nil {
		t.Fatalf("ExportStudents 应成功: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出应为合法 Excel: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("学生名册")
	if err != nil {
		t.Fatalf("读取名册失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望表头+1 行数据，实际=%d 行", len(rows))
	}
	if rows[1][0] != student.StudentNo {
		t.Errorf("期望学号=%s，实际=%s", student.StudentNo, rows[1][0])
	}
	if rows[1][7] != "已报到" {
		t.Errorf("期望报到状态=已报到，实际=%s", rows[1][7])
	}
}
