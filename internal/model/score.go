package model

// 各科目分值上限：语文/数学/英语 150 分，物理/化学/生物 100 分
const (
	MaxMainSubjectScore = 150.0
	MaxSubSubjectScore  = 100.0
)

// Score 高考成绩 — 对应 scores，每名学生至多一条
// TotalScore 由六科成绩求和得出；ProvinceRank/MajorRank 在成绩
// 导入后按总分降序、学生 ID 升序重新计算。
type Score struct {
	BaseModel
	StudentID    uint     `gorm:"not null;uniqueIndex" json:"student_id"`
	Year         int      `gorm:"not null"             json:"year"`
	Chinese      *float64 `gorm:""                     json:"chinese,omitempty"`
	Math         *float64 `gorm:""                     json:"math,omitempty"`
	English      *float64 `gorm:""                     json:"english,omitempty"`
	Physics      *float64 `gorm:""                     json:"physics,omitempty"`
	Chemistry    *float64 `gorm:""                     json:"chemistry,omitempty"`
	Biology      *float64 `gorm:""                     json:"biology,omitempty"`
	TotalScore   float64  `gorm:"not null;index:idx_scores_total,sort:desc" json:"total_score"`
	ProvinceRank *int     `gorm:""                     json:"province_rank,omitempty"`
	MajorRank    *int     `gorm:""                     json:"major_rank,omitempty"`

	// 关联
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Score) TableName() string { return "scores" }

// ComputeTotal 按六科求和（缺考科目按 0 计）
func (s *Score) ComputeTotal() {
	total := 0.0
	for _, v := range []*float64{s.Chinese, s.Math, s.English, s.Physics, s.Chemistry, s.Biology} {
		if v != nil {
			total += *v
		}
	}
	s.TotalScore = total
}
