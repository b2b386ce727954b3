package service

import (
	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/util"
)

// CourseService 课程目录的查询入口，目录本身由种子数据和管理端维护
type CourseService struct {
	Courses *repository.CourseRepository
}

func NewCourseService(courses *repository.CourseRepository) *CourseService {
	return &CourseService{Courses: courses}
}

func (s *CourseService) ListCourses() ([]model.Course, error) {
	return s.Courses.List()
}

func (s *CourseService) GetCourse(fullCode string) (*model.Course, error) {
	course, err := s.Courses.Find(fullCode)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) ListAcademicUnits() ([]string, error) {
	return s.Courses.AcademicUnits()
}

func (s *CourseService) ListDepartments(academicUnit string) ([]string, error) {
	return s.Courses.Departments(academicUnit)
}

func (s *CourseService) UpsertCourse(course *model.Course) error {
	return s.Courses.Upsert(course)
}

func (s *CourseService) DeleteCourse(fullCode string) error {
	if _, err := s.GetCourse(fullCode); err != nil {
		return err
	}
	return s.Courses.Delete(fullCode)
}
