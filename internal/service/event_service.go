package service

import (
	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/util"
	"studybuddy_backend/pkg/logger"

	"go.uber.org/zap"
)

// EventService 处理学习活动的发布、检索与个人日历
type EventService struct {
	Events  *repository.EventRepository
	Courses *repository.CourseRepository
}

func NewEventService(events *repository.EventRepository, courses *repository.CourseRepository) *EventService {
	return &EventService{Events: events, Courses: courses}
}

type EventInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Course      string  `json:"course" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	StartTime   float32 `json:"startTime"`
	EndTime     float32 `json:"endTime"`
	Location    string  `json:"location"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// CreateEvent 作者信息以当前会话为准，客户端传什么都不认
func (s *EventService) CreateEvent(author *model.User, in EventInput) (*model.Event, error) {
	course, err := s.Courses.Find(in.Course)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}

	event := &model.Event{
		Title:       in.Title,
		Description: in.Description,
		Course:      course.FullCourseCode,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		AuthorID:    author.ID,
		AuthorEmail: author.Email,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if err := s.Events.Create(event); err != nil {
		return nil, err
	}

	logger.Log.Info("event created",
		zap.String("eventId", event.ID),
		zap.String("course", event.Course),
		zap.Uint("authorId", author.ID))
	return event, nil
}

func (s *EventService) GetEvent(eventID string) (*model.Event, error) {
	event, err := s.Events.FindByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, util.ErrEventNotFound
	}
	return event, nil
}

// UpdateEvent 只有作者可以改
func (s *EventService) UpdateEvent(userID uint, eventID string, in EventInput) (*model.Event, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.AuthorID != userID {
		return nil, util.ErrNotEventAuthor
	}

	fields := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"date":        in.Date,
		"start_time":  in.StartTime,
		"end_time":    in.EndTime,
		"location":    in.Location,
		"latitude":    in.Latitude,
		"longitude":   in.Longitude,
	}
	if in.Course != "" && in.Course != event.Course {
		course, err := s.Courses.Find(in.Course)
		if err != nil {
			return nil, err
		}
		if course == nil {
			return nil, util.ErrCourseNotFound
		}
		fields["course"] = course.FullCourseCode
	}

	if err := s.Events.UpdateFields(eventID, fields); err != nil {
		return nil, err
	}
	return s.GetEvent(eventID)
}

// DeleteEvent 删除活动并级联清掉所有人的日历条目
func (s *EventService) DeleteEvent(userID uint, eventID string) error {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return err
	}
	if event.AuthorID != userID {
		return util.ErrNotEventAuthor
	}
	return s.Events.Delete(eventID)
}

func (s *EventService) ListEvents() ([]model.Event, error) {
	return s.Events.ListAll()
}

func (s *EventService) ListMyEvents(userID uint) ([]model.Event, error) {
	return s.Events.ListByAuthor(userID)
}

func (s *EventService) ListCourseEvents(courseCode string) ([]model.Event, error) {
	course, err := s.Courses.Find(courseCode)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	return s.Events.ListByCourse(course.FullCourseCode)
}

// AddToCalendar 重复加日历按幂等处理
func (s *EventService) AddToCalendar(userID uint, eventID string) error {
	if _, err := s.GetEvent(eventID); err != nil {
		return err
	}
	return s.Events.AddToCalendar(userID, eventID)
}

func (s *EventService) InCalendar(userID uint, eventID string) (bool, error) {
	return s.Events.InCalendar(userID, eventID)
}

func (s *EventService) RemoveFromCalendar(userID uint, eventID string) error {
	return s.Events.RemoveFromCalendar(userID, eventID)
}

func (s *EventService) ListCalendar(userID uint) ([]model.Event, error) {
	return s.Events.ListCalendar(userID)
}
