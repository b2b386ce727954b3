package service

import (
	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/util"
	"studybuddy_backend/pkg/monitoring"
)

// Notifier toast 式提示通道。只管发出，不保证送达，也不阻塞业务流程。
type Notifier interface {
	Notify(userID uint, message string)
}

// 好友流程依赖的三个窄接口，由 repository 实现，测试用内存替身。
type userDirectory interface {
	FindByEmail(email string) (*model.User, error)
}

type roomProvisioner interface {
	EnsureRoom(userA, userB uint) (*model.ChatRoom, bool, error)
}

type registerStore interface {
	CreateRegister(reg *model.FriendRegister) (*model.FriendRegister, bool, error)
	FindByPair(userA, userB uint) (*model.FriendRegister, error)
	GetRegister(id string) (*model.FriendRegister, error)
	UpdateStatus(id string, status model.FriendStatus, blockedBy uint) error
	DeleteRegister(id string) error
}

type FriendshipService struct {
	Users       userDirectory
	Rooms       roomProvisioner
	Registers   registerStore
	Notifier    Notifier
	FriendLists *FriendListService
}

func NewFriendshipService(users userDirectory, rooms roomProvisioner, registers registerStore, notifier Notifier, friendLists *FriendListService) *FriendshipService {
	return &FriendshipService{
		Users:       users,
		Rooms:       rooms,
		Registers:   registers,
		Notifier:    notifier,
		FriendLists: friendLists,
	}
}

// SendFriendRequest 发起好友申请：查邮箱 → 确保聊天房间 → 查登记 → 建登记。
// 链条中任何一步失败直接中断并返回错误，已完成的步骤不回滚
// （房间可能已建好，下次申请直接复用）。重复申请不报错，只发提示语。
func (s *FriendshipService) SendFriendRequest(requester *model.User, acceptorEmail string) error {
	acceptor, err := s.Users.FindByEmail(acceptorEmail)
	if err != nil {
		return err
	}
	if acceptor == nil {
		s.notify(requester.ID, util.MsgEmailNotFound, "email_not_found")
		return nil
	}
	if acceptor.ID == requester.ID {
		return util.ErrSelfFriendRequest
	}

	room, _, err := s.Rooms.EnsureRoom(requester.ID, acceptor.ID)
	if err != nil {
		return err
	}

	existing, err := s.Registers.FindByPair(requester.ID, acceptor.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.handleExistingRegister(existing, requester.ID)
	}

	reg := &model.FriendRegister{
		RequesterID:    requester.ID,
		RequesterEmail: requester.Email,
		AcceptorID:     acceptor.ID,
		AcceptorEmail:  acceptor.Email,
		ChatRoomID:     room.ID,
		Status:         model.FriendPending,
	}
	created, createdNew, err := s.Registers.CreateRegister(reg)
	if err != nil {
		return err
	}
	if !createdNew {
		// 对端并发抢先建好了登记，按它的状态提示
		return s.handleExistingRegister(created, requester.ID)
	}

	s.notify(requester.ID, util.MsgFriendRequestSent, "request_sent")
	s.refreshFriendLists(requester.ID, acceptor.ID)
	return nil
}

func (s *FriendshipService) handleExistingRegister(reg *model.FriendRegister, requesterID uint) error {
	switch reg.Status {
	case model.FriendPending:
		s.notify(requesterID, util.MsgAlreadyHaveRequest, "already_pending")
	case model.FriendAccepted:
		s.notify(requesterID, util.MsgAlreadyFriend, "already_friend")
	case model.FriendBlocked:
		// 对拉黑中的关系再次发申请等价于尝试解除拉黑
		_, err := s.OpenBlockedFriend(reg.ID, requesterID)
		return err
	}
	return nil
}

// AcceptPendingRequest 接受方确认申请，PENDING → ACCEPTED 单字段更新。
func (s *FriendshipService) AcceptPendingRequest(registerID string, userID uint) error {
	reg, err := s.Registers.GetRegister(registerID)
	if err != nil {
		return err
	}
	if reg == nil {
		return util.ErrRegisterNotFound
	}
	if reg.AcceptorID != userID {
		return util.ErrNotRegisterParty
	}
	if reg.Status != model.FriendPending {
		return util.ErrRequestNotPending
	}

	if err := s.Registers.UpdateStatus(registerID, model.FriendAccepted, 0); err != nil {
		return err
	}

	s.notify(userID, util.MsgFriendRequestAccepted, "accepted")
	s.refreshFriendLists(reg.RequesterID, reg.AcceptorID)
	return nil
}

// CancelPendingRequest 取消申请：整条登记删除，不是状态转移。
func (s *FriendshipService) CancelPendingRequest(registerID string, userID uint) error {
	reg, err := s.Registers.GetRegister(registerID)
	if err != nil {
		return err
	}
	if reg == nil {
		return util.ErrRegisterNotFound
	}
	if reg.RequesterID != userID && reg.AcceptorID != userID {
		return util.ErrNotRegisterParty
	}
	if reg.Status != model.FriendPending {
		return util.ErrRequestNotPending
	}

	if err := s.Registers.DeleteRegister(registerID); err != nil {
		return err
	}

	s.notify(userID, util.MsgFriendRequestCanceled, "canceled")
	s.refreshFriendLists(reg.RequesterID, reg.AcceptorID)
	return nil
}

// BlockFriend 一方拉黑，记下拉黑发起方以便之后判断解锁权限。
func (s *FriendshipService) BlockFriend(registerID string, userID uint) error {
	reg, err := s.Registers.GetRegister(registerID)
	if err != nil {
		return err
	}
	if reg == nil {
		return util.ErrRegisterNotFound
	}
	if reg.RequesterID != userID && reg.AcceptorID != userID {
		return util.ErrNotRegisterParty
	}

	if err := s.Registers.UpdateStatus(registerID, model.FriendBlocked, userID); err != nil {
		return err
	}

	monitoring.FriendWorkflowCounter.WithLabelValues("blocked").Inc()
	s.refreshFriendLists(reg.RequesterID, reg.AcceptorID)
	return nil
}

// OpenBlockedFriend 解除拉黑。只有拉黑发起方能解除，解除后直接回到 ACCEPTED；
// 被拉黑的一方调用时返回 false 且状态不变，两种结果的提示语不同。
func (s *FriendshipService) OpenBlockedFriend(registerID string, userID uint) (bool, error) {
	reg, err := s.Registers.GetRegister(registerID)
	if err != nil {
		return false, err
	}
	if reg == nil {
		return false, util.ErrRegisterNotFound
	}
	if reg.RequesterID != userID && reg.AcceptorID != userID {
		return false, util.ErrNotRegisterParty
	}
	if reg.Status != model.FriendBlocked {
		return false, util.ErrNotBlocked
	}

	if reg.BlockedBy != userID {
		s.notify(userID, util.MsgBlockedByUser, "blocked_by_peer")
		return false, nil
	}

	if err := s.Registers.UpdateStatus(registerID, model.FriendAccepted, 0); err != nil {
		return false, err
	}

	s.notify(userID, util.MsgBlockOpened, "block_opened")
	s.refreshFriendLists(reg.RequesterID, reg.AcceptorID)
	return true, nil
}

func (s *FriendshipService) notify(userID uint, message, outcome string) {
	monitoring.FriendWorkflowCounter.WithLabelValues(outcome).Inc()
	if s.Notifier != nil {
		s.Notifier.Notify(userID, message)
	}
}

func (s *FriendshipService) refreshFriendLists(userIDs ...uint) {
	if s.FriendLists == nil {
		return
	}
	s.FriendLists.RefreshUsers(userIDs...)
}
