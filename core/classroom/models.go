package classroom

// Stored vocabulary. These are data values shared with the hosted schema.
const (
	StudentStatusActive = "Đang học"

	StatusActive    = "Hoạt động"
	StatusCompleted = "Hoàn thành"
	StatusCancelled = "Đã hủy"

	DefaultActor = "Giáo viên"

	// HighPerformerThreshold is inclusive.
	HighPerformerThreshold = 4.5
)

// Notification categories
const (
	NotificationInfo      = "info"
	NotificationUrgent    = "urgent"
	NotificationImportant = "important"
	NotificationSuccess   = "success"
)

var (
	NotificationTypes = []string{NotificationInfo, NotificationUrgent, NotificationImportant, NotificationSuccess}
	PlanStatuses      = []string{StatusActive, StatusCompleted, StatusCancelled}
	ScoreTypes        = []string{"Điểm cộng", "Điểm trừ"}
	StarTypes         = []string{"Học tập", "Kỷ luật", "Văn nghệ", "Thể thao"}
	QualityTraits     = []string{"Yêu nước", "Nhân ái", "Chăm chỉ", "Trung thực", "Trách nhiệm"}
	Weekdays          = []string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6", "Thứ 7", "Chủ nhật"}
)

// Vocabulary holds the choices offered by the classroom forms.
type Vocabulary struct {
	NotificationTypes []string `json:"notification_types"`
	PlanStatuses      []string `json:"plan_statuses"`
	ScoreTypes        []string `json:"score_types"`
	StarTypes         []string `json:"star_types"`
	QualityTraits     []string `json:"quality_traits"`
	AssessmentKinds   []string `json:"assessment_kinds"`
	Weekdays          []string `json:"weekdays"`
}

func FormVocabulary() Vocabulary {
	return Vocabulary{
		NotificationTypes: NotificationTypes,
		PlanStatuses:      PlanStatuses,
		ScoreTypes:        ScoreTypes,
		StarTypes:         StarTypes,
		QualityTraits:     QualityTraits,
		AssessmentKinds:   []string{KindQuality, KindCompetency},
		Weekdays:          Weekdays,
	}
}

// Student is a roster entry. Aggregates are maintained by the table service.
type Student struct {
	ID                 string  `json:"id"`
	FullName           string  `json:"full_name"`
	DateOfBirth        string  `json:"date_of_birth"` // YYYY-MM-DD
	Gender             string  `json:"gender"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Address            string  `json:"address"`
	TotalScore         float64 `json:"total_score"`
	Status             string  `json:"status"`
	Notes              string  `json:"notes"`
	TotalStars         int     `json:"total_stars"`
	AvgQualityScore    float64 `json:"avg_quality_score"`
	AvgCompetencyScore float64 `json:"avg_competency_score"`
	ParentEmail        string  `json:"parent_email"`
	ParentPhone        string  `json:"parent_phone"`
}

type ScoreHistory struct {
	Date   string  `json:"date"` // d/m/yyyy
	Type   string  `json:"type"`
	Points float64 `json:"points"`
	Reason string  `json:"reason"`
}

type StarHistory struct {
	Date   string `json:"date"` // d/m/yyyy
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type StudentDetail struct {
	Student
	ScoreHistory []ScoreHistory `json:"score_history"`
	StarHistory  []StarHistory  `json:"star_history"`
}

type Notification struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Type        string `json:"type"`
	CreatedDate string `json:"created_date"` // d/m/yyyy
	CreatedTime string `json:"created_time"`
	CreatedBy   string `json:"created_by"`
	Status      string `json:"status"`
}

func (n Notification) IsUrgent() bool { return n.Type == NotificationUrgent }

type WeeklyPlan struct {
	ID                string `json:"id"`
	Week              int    `json:"week_number"`
	DayOfWeek         string `json:"day_of_week"`
	Content           string `json:"content"`
	TimeSlot          string `json:"time_slot"`
	Location          string `json:"location"`
	ResponsiblePerson string `json:"responsible_person"`
	Status            string `json:"status"`
}

type DashboardStats struct {
	TotalStudents  int `json:"total_students"`
	ActiveStudents int `json:"active_students"`
	HighPerformers int `json:"high_performers"`
}

// DashboardData is recomputed on every fetch and never stored.
type DashboardData struct {
	Stats               DashboardStats `json:"stats"`
	RecentNotifications []Notification `json:"recent_notifications"`
	UpcomingPlans       []WeeklyPlan   `json:"upcoming_plans"`
}

type StudentFilter struct {
	Search string `query:"search"`
}

type PlanFilter struct {
	Week int `query:"week"`
}

// Inputs

type NewScore struct {
	StudentID string  `json:"student_id" validate:"required,notblank"`
	Type      string  `json:"score_type" validate:"required"`
	Points    float64 `json:"points"`
	Notes     string  `json:"notes"`
	GradedBy  string  `json:"graded_by"`
}

type NewStar struct {
	StudentID string `json:"student_id" validate:"required,notblank"`
	Type      string `json:"star_type" validate:"required"`
	Reason    string `json:"reason"`
	Week      int    `json:"week_number"`
	AwardedBy string `json:"awarded_by"`
}

type NewAssessment struct {
	StudentID  string
	Kind       Assessment
	Score      float64
	Notes      string
	AssessedBy string
}

type NewWeeklyPlan struct {
	Week              int    `json:"week_number" validate:"required"`
	DayOfWeek         string `json:"day_of_week" validate:"required"`
	Content           string `json:"content" validate:"required,notblank"`
	TimeSlot          string `json:"time_slot"`
	Location          string `json:"location"`
	ResponsiblePerson string `json:"responsible_person"`
	Status            string `json:"status"`
}

type NewNotification struct {
	Title     string `json:"title" validate:"required,notblank"`
	Content   string `json:"content" validate:"required"`
	Type      string `json:"type" validate:"required"`
	CreatedBy string `json:"created_by"`
	Status    string `json:"status"`
}
