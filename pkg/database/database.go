package database

import (
	"fmt"
	"log"

	"studybuddy_backend/internal/config"
	"studybuddy_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ShouldMigrate release 模式默认不自动建表，用 -migrate 显式开启；其余模式总是迁移。
func ShouldMigrate(mode string, force bool) bool {
	return force || mode != "release"
}

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Enrollment{},
			&model.Course{},
			&model.Event{},
			&model.CalendarEntry{},
			&model.ChatRoom{},
			&model.ChatMessage{},
			&model.FriendRegister{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")

		// 课程目录为空时写入一批默认课程，方便首次启动就能选课
		var count int64
		db.Model(&model.Course{}).Count(&count)
		if count == 0 {
			defaultCourses := []model.Course{
				{FullCourseCode: "CAS CS 501", CourseName: "Mobile Application Development", CourseNumber: "501", Department: "Computer Science", AcademicUnit: "College of Arts & Sciences", Division: "Undergraduate", University: "Boston University"},
				{FullCourseCode: "CAS CS 460", CourseName: "Introduction to Database Systems", CourseNumber: "460", Department: "Computer Science", AcademicUnit: "College of Arts & Sciences", Division: "Undergraduate", University: "Boston University"},
				{FullCourseCode: "CAS MA 581", CourseName: "Probability", CourseNumber: "581", Department: "Mathematics & Statistics", AcademicUnit: "College of Arts & Sciences", Division: "Undergraduate", University: "Boston University"},
				{FullCourseCode: "QST SM 131", CourseName: "Business, Ethics, and the Creation of Value", CourseNumber: "131", Department: "Management", AcademicUnit: "Questrom School of Business", Division: "Undergraduate", University: "Boston University"},
			}
			for _, c := range defaultCourses {
				db.Create(&c)
			}
		}
	}

	return db, nil
}
