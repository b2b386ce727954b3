package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"studybuddy_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu       sync.Mutex
	pending  []model.FriendRegister
	accepted []model.FriendRegister
}

func (f *fakeLister) setPending(regs []model.FriendRegister) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = regs
}

func (f *fakeLister) ListPending(userID uint) ([]model.FriendRegister, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, nil
}

func (f *fakeLister) ListAccepted(userID uint) ([]model.FriendRegister, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted, nil
}

type fakeProfiles struct {
	users   map[uint]*model.User
	courses []string
}

func (f *fakeProfiles) FindByID(id uint) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeProfiles) GetEnrolledCourses(userID uint) ([]string, error) {
	return f.courses, nil
}

type fakeMessages struct {
	latest map[string]*model.ChatMessage
}

func (f *fakeMessages) LatestMessage(channelID string) (*model.ChatMessage, error) {
	return f.latest[channelID], nil
}

func pendingReg(id string, requester, acceptor uint) model.FriendRegister {
	return model.FriendRegister{
		UUIDBase:    model.UUIDBase{ID: id},
		RequesterID: requester,
		AcceptorID:  acceptor,
		Status:      model.FriendPending,
	}
}

func newTestState(minRefresh time.Duration) (*FriendListState, *fakeLister) {
	lister := &fakeLister{}
	profiles := &fakeProfiles{
		users:   map[uint]*model.User{2: {BaseModel: model.BaseModel{ID: 2}, Name: "Bob", AvatarURL: "/avatars/bob.png"}},
		courses: []string{"CAS CS 501"},
	}
	messages := &fakeMessages{latest: map[string]*model.ChatMessage{}}
	return newFriendListState(1, lister, profiles, messages, minRefresh), lister
}

func TestRefreshKeepsFlagForMinDuration(t *testing.T) {
	state, _ := newTestState(80 * time.Millisecond)

	state.Refresh()

	// 拉取瞬间完成，但标志至少保持 minRefresh
	assert.True(t, state.Snapshot().Refreshing)

	require.Eventually(t, func() bool {
		return !state.Snapshot().Refreshing
	}, time.Second, 10*time.Millisecond)
}

func TestRefreshLoadsSnapshot(t *testing.T) {
	state, lister := newTestState(0)
	lister.setPending([]model.FriendRegister{pendingReg("reg-1", 2, 1)})
	lister.mu.Lock()
	lister.accepted = []model.FriendRegister{{
		UUIDBase:      model.UUIDBase{ID: "reg-2"},
		RequesterID:   1,
		AcceptorID:    2,
		AcceptorEmail: "bob@bu.edu",
		ChatRoomID:    "room-1",
		Status:        model.FriendAccepted,
	}}
	lister.mu.Unlock()

	state.Refresh()

	snap := state.Snapshot()
	require.Len(t, snap.Pending, 1)
	require.Len(t, snap.Accepted, 1)
	assert.Equal(t, "reg-1", snap.Pending[0].ID)

	row := snap.Accepted[0]
	assert.Equal(t, uint(2), row.UserID)
	assert.Equal(t, "bob@bu.edu", row.UserEmail)
	assert.Equal(t, "Bob", row.UserName)
	assert.Equal(t, "/avatars/bob.png", row.AvatarURL)
	assert.Equal(t, []string{"CAS CS 501"}, snap.CourseChannels)
}

func TestSubscriberSeesLatestSnapshotOnly(t *testing.T) {
	state, lister := newTestState(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := state.Subscribe(ctx)

	// 订阅方不消费时连续刷新多次，通道里只留最新一份
	lister.setPending([]model.FriendRegister{pendingReg("reg-old", 2, 1)})
	state.Refresh()
	lister.setPending([]model.FriendRegister{pendingReg("reg-new", 3, 1)})
	state.Refresh()

	var last FriendListSnapshot
	require.Eventually(t, func() bool {
		select {
		case snap := <-ch:
			last = snap
			return len(last.Pending) == 1 && last.Pending[0].ID == "reg-new" && !last.Refreshing
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestUnsubscribeOnContextCancel(t *testing.T) {
	state, lister := newTestState(0)

	ctx, cancel := context.WithCancel(context.Background())
	ch := state.Subscribe(ctx)
	cancel()

	// 监听表最终摘掉该订阅
	require.Eventually(t, func() bool {
		state.mu.Lock()
		defer state.mu.Unlock()
		return len(state.subs) == 0
	}, time.Second, 5*time.Millisecond)

	// 退订后的刷新不再投递
	lister.setPending([]model.FriendRegister{pendingReg("reg-late", 2, 1)})
	state.Refresh()

	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot after unsubscribe: %+v", snap)
	default:
	}
}

func TestSubscribeCancelConcurrentWithPublish(t *testing.T) {
	state, _ := newTestState(0)

	// 订阅/退订与投递并发跑不会 panic：退订不关闭通道
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			ctx, cancel := context.WithCancel(context.Background())
			state.Subscribe(ctx)
			cancel()
		}
	}()

	for i := 0; i < 200; i++ {
		state.publish()
	}
	<-done

	require.Eventually(t, func() bool {
		state.mu.Lock()
		defer state.mu.Unlock()
		return len(state.subs) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestFriendListServiceLazyState(t *testing.T) {
	lister := &fakeLister{}
	profiles := &fakeProfiles{users: map[uint]*model.User{}}
	messages := &fakeMessages{latest: map[string]*model.ChatMessage{}}
	svc := NewFriendListService(lister, profiles, messages)

	st := svc.State(7)
	assert.Same(t, st, svc.State(7))

	svc.Release(7)
	assert.NotSame(t, st, svc.State(7))
}
