package repository

import (
	"studybuddy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(event *model.Event) error {
	return r.DB.Create(event).Error
}

// FindByID 不存在返回 (nil, nil)。
func (r *EventRepository) FindByID(id string) (*model.Event, error) {
	var event model.Event
	err := r.DB.First(&event, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) ListAll() ([]model.Event, error) {
	var events []model.Event
	err := r.DB.Find(&events).Error
	return events, err
}

func (r *EventRepository) ListByAuthor(authorID uint) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.Where("author_id = ?", authorID).Find(&events).Error
	return events, err
}

func (r *EventRepository) ListByCourse(course string) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.Where("course = ?", course).Find(&events).Error
	return events, err
}

func (r *EventRepository) UpdateFields(id string, updates map[string]interface{}) error {
	return r.DB.Model(&model.Event{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除活动并级联清掉所有用户日历里的该活动。
func (r *EventRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("event_id = ?", id).Delete(&model.CalendarEntry{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&model.Event{}).Error
	})
}

func (r *EventRepository) AddToCalendar(userID uint, eventID string) error {
	entry := model.CalendarEntry{UserID: userID, EventID: eventID}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
}

func (r *EventRepository) InCalendar(userID uint, eventID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CalendarEntry{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *EventRepository) RemoveFromCalendar(userID uint, eventID string) error {
	return r.DB.Unscoped().
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&model.CalendarEntry{}).Error
}

func (r *EventRepository) ListCalendar(userID uint) ([]model.Event, error) {
	var events []model.Event
	err := r.DB.Joins("JOIN user_calendars ON user_calendars.event_id = events.id").
		Where("user_calendars.user_id = ?", userID).
		Find(&events).Error
	return events, err
}
