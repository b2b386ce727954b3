package controller

import (
	"errors"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/service"
	"studybuddy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCourses 课程目录
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCourses()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.GetCourse(ctx.Param("code"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "课程不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// ListAcademicUnits 选课界面的第一级筛选
func (c *CourseController) ListAcademicUnits(ctx *gin.Context) {
	units, err := c.CourseService.ListAcademicUnits()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, units)
}

// ListDepartments 第二级筛选，可按学院过滤
func (c *CourseController) ListDepartments(ctx *gin.Context) {
	departments, err := c.CourseService.ListDepartments(ctx.Query("academicUnit"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, departments)
}

type CourseRequest struct {
	FullCourseCode string `json:"fullCourseCode" binding:"required"`
	CourseName     string `json:"courseName" binding:"required"`
	CourseNumber   string `json:"courseNumber"`
	Department     string `json:"department"`
	AcademicUnit   string `json:"academicUnit"`
	Description    string `json:"description"`
	Division       string `json:"division"`
	University     string `json:"university"`
}

// UpsertCourse 管理端维护课程目录
func (c *CourseController) UpsertCourse(ctx *gin.Context) {
	var req CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course := &model.Course{
		FullCourseCode: req.FullCourseCode,
		CourseName:     req.CourseName,
		CourseNumber:   req.CourseNumber,
		Department:     req.Department,
		AcademicUnit:   req.AcademicUnit,
		Description:    req.Description,
		Division:       req.Division,
		University:     req.University,
	}

	if err := c.CourseService.UpsertCourse(course); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.DeleteCourse(ctx.Param("code")); err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "课程不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
