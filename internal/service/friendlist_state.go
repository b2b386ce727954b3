package service

import (
	"context"
	"sync"
	"time"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/pkg/logger"

	"go.uber.org/zap"
)

// 好友列表聚合依赖的窄接口
type registerLister interface {
	ListPending(userID uint) ([]model.FriendRegister, error)
	ListAccepted(userID uint) ([]model.FriendRegister, error)
}

type profileSource interface {
	FindByID(id uint) (*model.User, error)
	GetEnrolledCourses(userID uint) ([]string, error)
}

type lastMessageSource interface {
	LatestMessage(channelID string) (*model.ChatMessage, error)
}

// FriendListSnapshot 好友界面一次完整快照：待处理申请、已接受好友行、
// 课程频道 ID。列表顺序就是存储返回的顺序，不额外排序。
type FriendListSnapshot struct {
	Pending        []model.FriendRegister `json:"pendingFriendRequestList"`
	Accepted       []model.FriendListRow  `json:"acceptedFriendRequestList"`
	CourseChannels []string               `json:"courseChannels"`
	Refreshing     bool                   `json:"isRefreshing"`
}

// FriendListState 单个用户的好友列表状态机。订阅通道容量为 1 且后写覆盖：
// 更新来得比消费快时只保留最新快照（conflation），中间状态直接丢弃。
type FriendListState struct {
	userID     uint
	registers  registerLister
	profiles   profileSource
	messages   lastMessageSource
	minRefresh time.Duration

	mu         sync.Mutex
	snapshot   FriendListSnapshot
	refreshing bool
	subs       map[chan FriendListSnapshot]struct{}
}

func newFriendListState(userID uint, registers registerLister, profiles profileSource, messages lastMessageSource, minRefresh time.Duration) *FriendListState {
	return &FriendListState{
		userID:     userID,
		registers:  registers,
		profiles:   profiles,
		messages:   messages,
		minRefresh: minRefresh,
		subs:       make(map[chan FriendListSnapshot]struct{}),
	}
}

// Snapshot 当前快照的副本。
func (s *FriendListState) Snapshot() FriendListSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot
	snap.Refreshing = s.refreshing
	return snap
}

// Subscribe 返回快照通道，ctx 撤销时退订。通道不关闭，留给 GC 回收：
// 投递方在锁外发送，关闭会和并发 publish 撞出 send-on-closed panic。
// 消费方用 ctx.Done() 判断退出。退订只摘掉监听，已经跑起来的拉取不会被取消。
func (s *FriendListState) Subscribe(ctx context.Context) <-chan FriendListSnapshot {
	ch := make(chan FriendListSnapshot, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	return ch
}

// Refresh 重新拉取两个列表和课程频道。refreshing 标志至少保持 minRefresh，
// 即便拉取瞬间完成，下拉刷新指示也能看见。拉取出错时保留上一份快照。
func (s *FriendListState) Refresh() {
	start := time.Now()

	s.mu.Lock()
	s.refreshing = true
	s.mu.Unlock()
	s.publish()

	s.reload()
	s.publish()

	remaining := s.minRefresh - time.Since(start)
	if remaining > 0 {
		time.AfterFunc(remaining, s.finishRefresh)
	} else {
		s.finishRefresh()
	}
}

func (s *FriendListState) finishRefresh() {
	s.mu.Lock()
	s.refreshing = false
	s.mu.Unlock()
	s.publish()
}

func (s *FriendListState) reload() {
	pending, err := s.registers.ListPending(s.userID)
	if err == nil {
		s.mu.Lock()
		s.snapshot.Pending = pending
		s.mu.Unlock()
	} else {
		logger.Log.Error("friend list pending reload failed", zap.Uint("userId", s.userID), zap.Error(err))
	}

	accepted, err := s.registers.ListAccepted(s.userID)
	if err == nil {
		rows := s.buildRows(accepted)
		s.mu.Lock()
		s.snapshot.Accepted = rows
		s.mu.Unlock()
	} else {
		logger.Log.Error("friend list accepted reload failed", zap.Uint("userId", s.userID), zap.Error(err))
	}

	channels, err := s.profiles.GetEnrolledCourses(s.userID)
	if err == nil {
		s.mu.Lock()
		s.snapshot.CourseChannels = channels
		s.mu.Unlock()
	}
}

func (s *FriendListState) buildRows(regs []model.FriendRegister) []model.FriendListRow {
	rows := make([]model.FriendListRow, 0, len(regs))
	for _, reg := range regs {
		counterpartID, counterpartEmail := reg.Counterpart(s.userID)
		row := model.FriendListRow{
			ChatRoomID: reg.ChatRoomID,
			RegisterID: reg.ID,
			UserID:     counterpartID,
			UserEmail:  counterpartEmail,
		}

		if profile, err := s.profiles.FindByID(counterpartID); err == nil {
			row.UserName = profile.Name
			row.AvatarURL = profile.AvatarURL
		}

		if last, err := s.messages.LatestMessage(reg.ChatRoomID); err == nil && last != nil {
			row.LastMessage = *last
		}

		rows = append(rows, row)
	}
	return rows
}

func (s *FriendListState) publish() {
	s.mu.Lock()
	snap := s.snapshot
	snap.Refreshing = s.refreshing
	subs := make([]chan FriendListSnapshot, 0, len(s.subs))
	for ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		// 非阻塞投递：通道满了先腾掉旧快照再放新的，保证订阅方看到的是最新值
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// FriendListService 管所有在线用户的好友列表状态，按需惰性创建。
type FriendListService struct {
	registers  registerLister
	profiles   profileSource
	messages   lastMessageSource
	minRefresh time.Duration

	mu     sync.Mutex
	states map[uint]*FriendListState
}

const defaultMinRefresh = time.Second

func NewFriendListService(registers registerLister, profiles profileSource, messages lastMessageSource) *FriendListService {
	return &FriendListService{
		registers:  registers,
		profiles:   profiles,
		messages:   messages,
		minRefresh: defaultMinRefresh,
		states:     make(map[uint]*FriendListState),
	}
}

func (s *FriendListService) State(userID uint) *FriendListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		st = newFriendListState(userID, s.registers, s.profiles, s.messages, s.minRefresh)
		s.states[userID] = st
	}
	return st
}

// RefreshUsers 好友关系变化后异步刷新受影响用户的快照。
// 只刷已经有状态机的用户，其余人下次打开列表时自然会拉到新数据。
func (s *FriendListService) RefreshUsers(userIDs ...uint) {
	for _, id := range userIDs {
		s.mu.Lock()
		st, ok := s.states[id]
		s.mu.Unlock()
		if ok {
			go st.Refresh()
		}
	}
}

// Release 用户下线后丢弃状态机，释放订阅表。
func (s *FriendListService) Release(userID uint) {
	s.mu.Lock()
	delete(s.states, userID)
	s.mu.Unlock()
}
