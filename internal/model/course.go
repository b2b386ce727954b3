package model

import "time"

// Course 课程目录，以完整课程代码为主键。
type Course struct {
	FullCourseCode string    `gorm:"primaryKey;size:50" json:"fullCourseCode"`
	CourseName     string    `gorm:"size:200" json:"courseName"`
	CourseNumber   string    `gorm:"size:20" json:"courseNumber"`
	Department     string    `gorm:"size:100;index" json:"department"`
	AcademicUnit   string    `gorm:"size:100;index" json:"academicUnit"`
	Description    string    `gorm:"type:text" json:"description"`
	Division       string    `gorm:"size:100" json:"division"`
	University     string    `gorm:"size:100" json:"university"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}
