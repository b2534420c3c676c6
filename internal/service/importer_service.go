package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

// 批量导入模板列序
var (
	teacherHeader = []string{"用户名", "邮箱", "姓名", "性别", "联系方式", "省份", "院系", "职称", "研究方向"}
	studentHeader = []string{"用户名", "邮箱", "姓名", "性别", "联系方式", "省份", "专业", "学号", "入学年份"}
)

// ImporterService Excel 批量导入 / 导出业务接口
type ImporterService interface {
	// ImportTeachers 批量创建教师账号，初始密码为默认口令；逐行校验后一次事务落库
	ImportTeachers(ctx context.Context, r io.Reader) (*dto.ImportResultResponse, error)
	// ImportStudents 同 ImportTeachers；学号留空时自动生成
	ImportStudents(ctx context.Context, r io.Reader) (*dto.ImportResultResponse, error)
	// TeacherTemplate / StudentTemplate 生成导入模板，说明页带系统设置里的院系 / 专业选项
	TeacherTemplate(ctx context.Context) (*bytes.Buffer, error)
	StudentTemplate(ctx context.Context) (*bytes.Buffer, error)
	// ExportStudents 按过滤条件导出学生名册
	ExportStudents(ctx context.Context, req *dto.ListStudentsRequest) (*bytes.Buffer, error)
}

type importerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImporterService 创建 ImporterService 实例
func NewImporterService(repo *repository.Repository, logger *zap.Logger) ImporterService {
	return &importerService{repo: repo, logger: logger}
}

// ────────────────────── ImportTeachers ──────────────────────

type importedAccount struct {
	rowNum  int
	user    *model.User
	student *model.Student
	teacher *model.Teacher
}

func (s *importerService) ImportTeachers(ctx context.Context, r io.Reader) (*dto.ImportResultResponse, error) {
	rows, result, err := s.openSheet(r, teacherHeader)
	if err != nil {
		return nil, err
	}

	valid := make([]importedAccount, 0, len(rows))
	seen := make(map[string]bool)
	for i, row := range rows {
		rowNum := i + 2
		user, reason := s.parseAccountRow(ctx, row, seen)
		if reason != "" {
			result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, Reason: reason})
			continue
		}

		get := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		user.Role = model.RoleTeacher
		valid = append(valid, importedAccount{
			rowNum: rowNum,
			user:   user,
			teacher: &model.Teacher{
				Department:   get(6),
				Title:        get(7),
				ResearchArea: get(8),
			},
		})
	}

	if err := s.commitAccounts(ctx, valid, result); err != nil {
		return nil, err
	}

	s.logger.Info("教师导入完成",
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// ────────────────────── ImportStudents ──────────────────────

func (s *importerService) ImportStudents(ctx context.Context, r io.Reader) (*dto.ImportResultResponse, error) {
	rows, result, err := s.openSheet(r, studentHeader)
	if err != nil {
		return nil, err
	}

	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]importedAccount, 0, len(rows))
	seen := make(map[string]bool)
	seenNos := make(map[string]bool)
	for i, row := range rows {
		rowNum := i + 2
		user, reason := s.parseAccountRow(ctx, row, seen)
		if reason != "" {
			result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, Reason: reason})
			continue
		}

		get := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		year := time.Now().Year()
		if y := get(8); y != "" {
			parsed, err := strconv.Atoi(y)
			if err != nil || parsed < 2000 || parsed > 2100 {
				result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, Reason: "入学年份无效"})
				continue
			}
			year = parsed
		}

		studentNo := get(7)
		if studentNo != "" {
			if seenNos[studentNo] {
				result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, Reason: "学号在文件内重复"})
				continue
			}
			if _, err := s.repo.Student.GetByStudentNo(ctx, studentNo); err == nil {
				result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, Reason: "学号已存在"})
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			seenNos[studentNo] = true
		}

		admission := time.Date(year, time.September, 1, 0, 0, 0, 0, time.Local)
		graduation := time.Date(year+4, time.June, 30, 0, 0, 0, 0, time.Local)

		user.Role = model.RoleStudent
		valid = append(valid, importedAccount{
			rowNum: rowNum,
			user:   user,
			student: &model.Student{
				StudentNo:      studentNo,
				Major:          get(6),
				AdmissionYear:  year,
				AdmissionDate:  &admission,
				GraduationDate: &graduation,
				Status:         settings.DefaultStudentStatus,
			},
		})
	}

	// 留空的学号在事务内统一生成，保证序号连续
	if err := s.fillStudentNos(ctx, valid, settings.StudentIDPrefix); err != nil {
		return nil, err
	}
	if err := s.commitAccounts(ctx, valid, result); err != nil {
		return nil, err
	}

	s.logger.Info("学生导入完成",
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// ────────────────────── 模板 ──────────────────────

func (s *importerService) TeacherTemplate(ctx context.Context) (*bytes.Buffer, error) {
	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return buildTemplate("教师信息", teacherHeader, []string{"用户名", "邮箱", "姓名"},
		catalogNote("院系选项", settings.Departments),
		[][]string{
			{"zhangsan", "zhangsan@example.com", "张三", "M", "13800000000", "湖北省", "计算机学院", "副教授", "机器学习"},
		})
}

func (s *importerService) StudentTemplate(ctx context.Context) (*bytes.Buffer, error) {
	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	year := time.Now().Year()
	return buildTemplate("学生信息", studentHeader,
		[]string{"用户名", "邮箱", "姓名", "专业", "学号", "入学年份"},
		catalogNote("专业选项", settings.Majors),
		[][]string{
			{"lisi", "lisi@example.com", "李四", "F", "13900000000", "湖南省", "软件工程",
				fmt.Sprintf("%s%d0001", settings.StudentIDPrefix, year), strconv.Itoa(year)},
		})
}

// catalogNote 把系统设置里的候选列表拼成说明行，未配置时给出提示
func catalogNote(label string, values []string) []string {
	if len(values) == 0 {
		return []string{label, "未设置"}
	}
	return []string{label, strings.Join(values, "、")}
}

// ────────────────────── ExportStudents ──────────────────────

func (s *importerService) ExportStudents(ctx context.Context, req *dto.ListStudentsRequest) (*bytes.Buffer, error) {
	students, _, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Status:        req.Status,
		Major:         req.Major,
		AdmissionYear: req.AdmissionYear,
		ClassID:       req.ClassID,
		Keyword:       req.Keyword,
		Offset:        0,
		Limit:         10000,
	})
	if err != nil {
		s.logger.Error("导出学生名册失败", zap.Error(err))
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "学生名册"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"学号", "姓名", "性别", "专业", "入学年份", "省份", "联系方式", "报到状态", "报到时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	statusText := map[string]string{
		model.StudentStatusPending:    "待报到",
		model.StudentStatusReported:   "已报到",
		model.StudentStatusUnreported: "未报到",
	}

	for i := range students {
		st := &students[i]
		row := i + 2
		set := func(col int, v interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			f.SetCellValue(sheet, cell, v)
		}
		set(1, st.StudentNo)
		if st.User != nil {
			set(2, st.User.Name)
			set(3, st.User.Gender)
			set(6, st.User.Province)
			set(7, st.User.Contact)
		}
		set(4, st.Major)
		set(5, st.AdmissionYear)
		set(8, statusText[st.Status])
		if st.ReportTime != nil {
			set(9, st.ReportTime.Format(time.DateTime))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 内部工具 ──

// openSheet 打开首个工作表并校验表头，返回数据行
func (s *importerService) openSheet(r io.Reader, header []string) ([][]string, *dto.ImportResultResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("读取 Excel 失败: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptyExcel
	}
	if err := checkHeader(rows[0], header); err != nil {
		return nil, nil, err
	}
	return rows[1:], &dto.ImportResultResponse{Total: len(rows) - 1}, nil
}

// parseAccountRow 解析账号公共列（用户名/邮箱/姓名/性别/联系方式/省份）
func (s *importerService) parseAccountRow(ctx context.Context, row []string, seen map[string]bool) (*model.User, string) {
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	username, email, name := get(0), get(1), get(2)
	if username == "" || email == "" || name == "" {
		return nil, "用户名、邮箱、姓名为必填项"
	}
	if !strings.Contains(email, "@") {
		return nil, "邮箱格式无效"
	}
	if seen[username] || seen[email] {
		return nil, "用户名或邮箱在文件内重复"
	}

	if _, err := s.repo.User.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Sprintf("用户名 %s 已存在", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "查询用户失败"
	}
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Sprintf("邮箱 %s 已注册", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "查询邮箱失败"
	}

	gender := get(3)
	if gender != "" && gender != model.GenderMale && gender != model.GenderFemale {
		return nil, "性别只能为 M 或 F"
	}

	seen[username] = true
	seen[email] = true
	return &model.User{
		Username: username,
		Email:    email,
		Name:     name,
		Gender:   gender,
		Contact:  get(4),
		Province: get(5),
		IsActive: true,
	}, ""
}

// fillStudentNos 为留空学号的行生成连续学号
func (s *importerService) fillStudentNos(ctx context.Context, accounts []importedAccount, prefix string) error {
	nextByYear := make(map[int]int)
	for i := range accounts {
		st := accounts[i].student
		if st == nil || st.StudentNo != "" {
			continue
		}
		full := fmt.Sprintf("%s%d", prefix, st.AdmissionYear)
		if _, ok := nextByYear[st.AdmissionYear]; !ok {
			max, err := s.repo.Student.MaxStudentNo(ctx, full)
			if err != nil {
				return err
			}
			seq := 1
			if max != "" && strings.HasPrefix(max, full) {
				if n, err := strconv.Atoi(max[len(full):]); err == nil {
					seq = n + 1
				}
			}
			nextByYear[st.AdmissionYear] = seq
		}
		st.StudentNo = fmt.Sprintf("%s%04d", full, nextByYear[st.AdmissionYear])
		nextByYear[st.AdmissionYear]++
	}
	return nil
}

// commitAccounts 一次事务写入全部有效账号
func (s *importerService) commitAccounts(ctx context.Context, accounts []importedAccount, result *dto.ImportResultResponse) error {
	if len(accounts) == 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	for i := range accounts {
		acc := &accounts[i]
		acc.user.PasswordHash = string(hash)
		if err := txRepo.User.Create(ctx, acc.user); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("批量创建用户失败", zap.Int("row", acc.rowNum), zap.Error(err))
			return err
		}
		if acc.student != nil {
			acc.student.UserID = acc.user.ID
			if err := txRepo.Student.Create(ctx, acc.student); err != nil {
				if tx != nil {
					tx.Rollback()
				}
				return err
			}
		}
		if acc.teacher != nil {
			acc.teacher.UserID = acc.user.ID
			if err := txRepo.Teacher.Create(ctx, acc.teacher); err != nil {
				if tx != nil {
					tx.Rollback()
				}
				return err
			}
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return err
		}
	}
	result.Imported = len(accounts)
	return nil
}

// buildTemplate 生成带填写说明页的导入模板
func buildTemplate(sheetName string, header []string, required []string, catalog []string, samples [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	requiredSet := make(map[string]bool, len(required))
	for _, r := range required {
		requiredSet[r] = true
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if requiredSet[h] {
			h += "*"
		}
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 16)
	}

	for r, sample := range samples {
		for c, v := range sample {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	// 填写说明页
	noteSheet := "填写说明"
	if _, err := f.NewSheet(noteSheet); err != nil {
		return nil, err
	}
	notes := [][]string{
		{"必填字段", strings.Join(required, "、")},
		{"性别", "M 表示男，F 表示女"},
		catalog,
		{"初始密码", "导入账号的初始密码为 " + defaultPassword + "，请提醒用户尽快修改"},
		{"示例行", "第 2 行为示例数据，导入前请删除"},
	}
	f.SetColWidth(noteSheet, "A", "A", 14)
	f.SetColWidth(noteSheet, "B", "B", 60)
	for i, note := range notes {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valCell, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(noteSheet, keyCell, note[0])
		f.SetCellValue(noteSheet, valCell, note[1])
	}

	return f.WriteToBuffer()
}
