package repository

import (
	"studybuddy_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) List() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Find(&courses).Error
	return courses, err
}

// Find 不存在返回 (nil, nil)。
func (r *CourseRepository) Find(fullCourseCode string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "full_course_code = ?", fullCourseCode).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Upsert(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(fullCourseCode string) error {
	return r.DB.Where("full_course_code = ?", fullCourseCode).Delete(&model.Course{}).Error
}

func (r *CourseRepository) AcademicUnits() ([]string, error) {
	var units []string
	err := r.DB.Model(&model.Course{}).
		Distinct("academic_unit").
		Order("academic_unit ASC").
		Pluck("academic_unit", &units).Error
	return units, err
}

// Departments 按院系去重排序，academicUnit 为空串时不过滤。
func (r *CourseRepository) Departments(academicUnit string) ([]string, error) {
	var departments []string
	db := r.DB.Model(&model.Course{})
	if academicUnit != "" {
		db = db.Where("academic_unit = ?", academicUnit)
	}
	err := db.Distinct("department").
		Order("department ASC").
		Pluck("department", &departments).Error
	return departments, err
}
