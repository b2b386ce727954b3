package service

import (
	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/util"
)

type ChatService struct {
	ChatRepo   *repository.ChatRepository
	CourseRepo *repository.CourseRepository
}

func NewChatService(chatRepo *repository.ChatRepository, courseRepo *repository.CourseRepository) *ChatService {
	return &ChatService{
		ChatRepo:   chatRepo,
		CourseRepo: courseRepo,
	}
}

// SendMessage 往私聊房间或课程频道写一条消息。
// 私聊要求发送者是房间参与方；频道 ID 不是房间时按课程代码校验课程存在。
// 返回消息和私聊对端 ID（课程频道没有对端，返回 0）。
func (s *ChatService) SendMessage(senderID uint, channelID, content string) (*model.ChatMessage, uint, error) {
	var opponentID uint

	room, err := s.ChatRepo.GetRoom(channelID)
	if err != nil {
		return nil, 0, err
	}
	if room != nil {
		if room.UserAID != senderID && room.UserBID != senderID {
			return nil, 0, util.ErrPermissionDenied
		}
		opponentID = room.UserAID
		if opponentID == senderID {
			opponentID = room.UserBID
		}
	} else {
		course, err := s.CourseRepo.Find(channelID)
		if err != nil {
			return nil, 0, err
		}
		if course == nil {
			return nil, 0, util.ErrCourseNotFound
		}
	}

	msg := &model.ChatMessage{
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		Status:    model.MessageSent,
	}
	if err := s.ChatRepo.CreateMessage(msg); err != nil {
		return nil, 0, err
	}
	return msg, opponentID, nil
}

// LoadMessages 拉取历史。私聊场景读取前先把对端的消息标记为已收。
func (s *ChatService) LoadMessages(readerID uint, channelID string, limit, offset int) ([]model.ChatMessage, error) {
	room, err := s.ChatRepo.GetRoom(channelID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		if room.UserAID != readerID && room.UserBID != readerID {
			return nil, util.ErrPermissionDenied
		}
		if err := s.ChatRepo.MarkReceived(channelID, readerID); err != nil {
			return nil, err
		}
	}
	return s.ChatRepo.GetMessages(channelID, limit, offset)
}
