package service

import (
	"testing"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users map[string]*model.User
}

func (f *fakeDirectory) FindByEmail(email string) (*model.User, error) {
	return f.users[email], nil
}

type fakeRooms struct {
	rooms map[string]*model.ChatRoom
	calls int
}

func (f *fakeRooms) EnsureRoom(userA, userB uint) (*model.ChatRoom, bool, error) {
	f.calls++
	key := model.PairKey(userA, userB)
	if room, ok := f.rooms[key]; ok {
		return room, false, nil
	}
	room := &model.ChatRoom{
		UUIDBase: model.UUIDBase{ID: model.GenerateUUID()},
		PairKey:  key,
		UserAID:  userA,
		UserBID:  userB,
	}
	f.rooms[key] = room
	return room, true, nil
}

type fakeRegisters struct {
	byID   map[string]*model.FriendRegister
	byPair map[string]*model.FriendRegister
}

func newFakeRegisters() *fakeRegisters {
	return &fakeRegisters{
		byID:   make(map[string]*model.FriendRegister),
		byPair: make(map[string]*model.FriendRegister),
	}
}

func (f *fakeRegisters) CreateRegister(reg *model.FriendRegister) (*model.FriendRegister, bool, error) {
	key := model.PairKey(reg.RequesterID, reg.AcceptorID)
	if existing, ok := f.byPair[key]; ok {
		return existing, false, nil
	}
	reg.ID = model.GenerateUUID()
	reg.PairKey = key
	f.byID[reg.ID] = reg
	f.byPair[key] = reg
	return reg, true, nil
}

func (f *fakeRegisters) FindByPair(userA, userB uint) (*model.FriendRegister, error) {
	return f.byPair[model.PairKey(userA, userB)], nil
}

func (f *fakeRegisters) GetRegister(id string) (*model.FriendRegister, error) {
	return f.byID[id], nil
}

func (f *fakeRegisters) UpdateStatus(id string, status model.FriendStatus, blockedBy uint) error {
	reg := f.byID[id]
	reg.Status = status
	reg.BlockedBy = blockedBy
	return nil
}

func (f *fakeRegisters) DeleteRegister(id string) error {
	reg, ok := f.byID[id]
	if !ok {
		return nil
	}
	delete(f.byID, id)
	delete(f.byPair, reg.PairKey)
	return nil
}

type recordingNotifier struct {
	targets  []uint
	messages []string
}

func (n *recordingNotifier) Notify(userID uint, message string) {
	n.targets = append(n.targets, userID)
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) last() string {
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

type friendshipFixture struct {
	svc       *FriendshipService
	rooms     *fakeRooms
	registers *fakeRegisters
	notifier  *recordingNotifier
	alice     *model.User
	bob       *model.User
}

func newFriendshipFixture() *friendshipFixture {
	alice := &model.User{BaseModel: model.BaseModel{ID: 1}, Name: "Alice", Email: "alice@bu.edu"}
	bob := &model.User{BaseModel: model.BaseModel{ID: 2}, Name: "Bob", Email: "bob@bu.edu"}

	dir := &fakeDirectory{users: map[string]*model.User{
		alice.Email: alice,
		bob.Email:   bob,
	}}
	rooms := &fakeRooms{rooms: make(map[string]*model.ChatRoom)}
	registers := newFakeRegisters()
	notifier := &recordingNotifier{}

	return &friendshipFixture{
		svc:       NewFriendshipService(dir, rooms, registers, notifier, nil),
		rooms:     rooms,
		registers: registers,
		notifier:  notifier,
		alice:     alice,
		bob:       bob,
	}
}

func (f *friendshipFixture) register(t *testing.T) *model.FriendRegister {
	t.Helper()
	reg, err := f.registers.FindByPair(f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.NotNil(t, reg)
	return reg
}

func TestSendFriendRequestCreatesPendingRegister(t *testing.T) {
	f := newFriendshipFixture()

	err := f.svc.SendFriendRequest(f.alice, f.bob.Email)
	require.NoError(t, err)

	reg := f.register(t)
	assert.Equal(t, model.FriendPending, reg.Status)
	assert.Equal(t, f.alice.ID, reg.RequesterID)
	assert.Equal(t, f.bob.ID, reg.AcceptorID)
	assert.NotEmpty(t, reg.ChatRoomID)
	assert.Equal(t, util.MsgFriendRequestSent, f.notifier.last())
	assert.Equal(t, []uint{f.alice.ID}, f.notifier.targets)
}

func TestSendFriendRequestEmailNotFound(t *testing.T) {
	f := newFriendshipFixture()

	err := f.svc.SendFriendRequest(f.alice, "nobody@bu.edu")
	require.NoError(t, err)

	assert.Equal(t, util.MsgEmailNotFound, f.notifier.last())
	assert.Empty(t, f.registers.byID)
	assert.Zero(t, f.rooms.calls)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	f := newFriendshipFixture()

	err := f.svc.SendFriendRequest(f.alice, f.alice.Email)
	assert.ErrorIs(t, err, util.ErrSelfFriendRequest)
	assert.Empty(t, f.registers.byID)
}

func TestSendFriendRequestDuplicatePending(t *testing.T) {
	f := newFriendshipFixture()

	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))

	assert.Len(t, f.registers.byID, 1)
	assert.Equal(t, util.MsgAlreadyHaveRequest, f.notifier.last())
}

func TestSendFriendRequestReverseDirectionHitsSameRegister(t *testing.T) {
	f := newFriendshipFixture()

	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	require.NoError(t, f.svc.SendFriendRequest(f.bob, f.alice.Email))

	assert.Len(t, f.registers.byID, 1)
	assert.Len(t, f.rooms.rooms, 1)
	assert.Equal(t, util.MsgAlreadyHaveRequest, f.notifier.last())
}

func TestSendFriendRequestWhenAlreadyFriends(t *testing.T) {
	f := newFriendshipFixture()

	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)
	require.NoError(t, f.svc.AcceptPendingRequest(reg.ID, f.bob.ID))

	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	assert.Equal(t, util.MsgAlreadyFriend, f.notifier.last())
	assert.Len(t, f.registers.byID, 1)
}

func TestEnsureRoomIsIdempotent(t *testing.T) {
	f := newFriendshipFixture()

	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	firstRoom := f.register(t).ChatRoomID

	require.NoError(t, f.svc.SendFriendRequest(f.bob, f.alice.Email))

	assert.Len(t, f.rooms.rooms, 1)
	assert.Equal(t, firstRoom, f.register(t).ChatRoomID)
}

func TestAcceptPendingRequest(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)

	err := f.svc.AcceptPendingRequest(reg.ID, f.bob.ID)
	require.NoError(t, err)

	assert.Equal(t, model.FriendAccepted, reg.Status)
	assert.Equal(t, util.MsgFriendRequestAccepted, f.notifier.last())
}

func TestAcceptPendingRequestOnlyAcceptor(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)

	err := f.svc.AcceptPendingRequest(reg.ID, f.alice.ID)
	assert.ErrorIs(t, err, util.ErrNotRegisterParty)
	assert.Equal(t, model.FriendPending, reg.Status)
}

func TestAcceptNonPendingRequest(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)
	require.NoError(t, f.svc.AcceptPendingRequest(reg.ID, f.bob.ID))

	err := f.svc.AcceptPendingRequest(reg.ID, f.bob.ID)
	assert.ErrorIs(t, err, util.ErrRequestNotPending)
}

func TestAcceptMissingRegister(t *testing.T) {
	f := newFriendshipFixture()

	err := f.svc.AcceptPendingRequest("no-such-id", f.bob.ID)
	assert.ErrorIs(t, err, util.ErrRegisterNotFound)
}

func TestCancelPendingRequestDeletesRegister(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)

	err := f.svc.CancelPendingRequest(reg.ID, f.alice.ID)
	require.NoError(t, err)

	assert.Empty(t, f.registers.byID)
	assert.Equal(t, util.MsgFriendRequestCanceled, f.notifier.last())

	// 删除后同一对用户可以重新发起申请
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	assert.Equal(t, model.FriendPending, f.register(t).Status)
}

func TestCancelByEitherParty(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)

	err := f.svc.CancelPendingRequest(reg.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, f.registers.byID)
}

func TestCancelByOutsider(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)

	err := f.svc.CancelPendingRequest(reg.ID, 99)
	assert.ErrorIs(t, err, util.ErrNotRegisterParty)
	assert.Len(t, f.registers.byID, 1)
}

func TestBlockFriendRecordsBlocker(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)
	require.NoError(t, f.svc.AcceptPendingRequest(reg.ID, f.bob.ID))

	err := f.svc.BlockFriend(reg.ID, f.alice.ID)
	require.NoError(t, err)

	assert.Equal(t, model.FriendBlocked, reg.Status)
	assert.Equal(t, f.alice.ID, reg.BlockedBy)
}

func TestUnblockByBlocker(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)
	require.NoError(t, f.svc.AcceptPendingRequest(reg.ID, f.bob.ID))
	require.NoError(t, f.svc.BlockFriend(reg.ID, f.alice.ID))

	opened, err := f.svc.OpenBlockedFriend(reg.ID, f.alice.ID)
	require.NoError(t, err)

	assert.True(t, opened)
	assert.Equal(t, model.FriendAccepted, reg.Status)
	assert.Zero(t, reg.BlockedBy)
	assert.Equal(t, util.MsgBlockOpened, f.notifier.last())
}

func TestUnblockByBlockedParty(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)
	require.NoError(t, f.svc.AcceptPendingRequest(reg.ID, f.bob.ID))
	require.NoError(t, f.svc.BlockFriend(reg.ID, f.alice.ID))

	opened, err := f.svc.OpenBlockedFriend(reg.ID, f.bob.ID)
	require.NoError(t, err)

	assert.False(t, opened)
	assert.Equal(t, model.FriendBlocked, reg.Status)
	assert.Equal(t, f.alice.ID, reg.BlockedBy)
	assert.Equal(t, util.MsgBlockedByUser, f.notifier.last())
}

func TestUnblockNotBlocked(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)

	_, err := f.svc.OpenBlockedFriend(reg.ID, f.alice.ID)
	assert.ErrorIs(t, err, util.ErrNotBlocked)
}

func TestSendRequestToBlockedFriendActsAsUnblock(t *testing.T) {
	f := newFriendshipFixture()
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	reg := f.register(t)
	require.NoError(t, f.svc.AcceptPendingRequest(reg.ID, f.bob.ID))
	require.NoError(t, f.svc.BlockFriend(reg.ID, f.bob.ID))

	// 被拉黑的一方再次发申请：状态不变，收到被拉黑提示
	require.NoError(t, f.svc.SendFriendRequest(f.alice, f.bob.Email))
	assert.Equal(t, model.FriendBlocked, reg.Status)
	assert.Equal(t, util.MsgBlockedByUser, f.notifier.last())

	// 拉黑方再次发申请：等价于解除拉黑
	require.NoError(t, f.svc.SendFriendRequest(f.bob, f.alice.Email))
	assert.Equal(t, model.FriendAccepted, reg.Status)
	assert.Equal(t, util.MsgBlockOpened, f.notifier.last())
}
