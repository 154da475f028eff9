package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"automarket/chat/internal/hub"
	"automarket/chat/internal/models"

	"gorm.io/gorm"
)

// DefaultGroupKey identifies the group room approved members are attached to.
const DefaultGroupKey = "general"

// Publisher is the post-commit hook. Implementations must not block.
type Publisher interface {
	Publish(ev hub.Event, excludeUserID uint) error
	Revoke(roomID, userID uint) error
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID   uint
	Role     models.Role
	Approved bool
}

// PrincipalFor builds the principal of a loaded user.
func PrincipalFor(u models.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role, Approved: u.Approved}
}

func (p Principal) IsStaff() bool {
	return p.Role == models.RoleStaff
}

// CanStartChats reports whether the caller may open conversations.
func (p Principal) CanStartChats() bool {
	return p.IsStaff() || p.Approved
}

// ReadReceipt is the payload of a messages.read event.
type ReadReceipt struct {
	RoomID   uint      `json:"room_id"`
	ReaderID uint      `json:"reader_id"`
	UpTo     time.Time `json:"up_to"`
	Count    int64     `json:"count"`
}

// Service is the chat facade used by every transport. It runs directory and log
// operations on behalf of a principal and publishes events once they committed.
type Service struct {
	db        *gorm.DB
	rooms     *Directory
	log       *Log
	hub       *hub.Hub
	pub       Publisher
	groupName string
}

// NewService wires a Service. h holds this instance's live subscriptions; pub
// carries events and revocations to every instance, this one included.
func NewService(db *gorm.DB, h *hub.Hub, pub Publisher, defaultGroupName string) *Service {
	if defaultGroupName == "" {
		defaultGroupName = "General Sellers Chat"
	}
	return &Service{
		db:        db,
		rooms:     NewDirectory(db),
		log:       NewLog(db),
		hub:       h,
		pub:       pub,
		groupName: defaultGroupName,
	}
}

// Directory exposes the room directory.
func (s *Service) Directory() *Directory { return s.rooms }

// Log exposes the message log.
func (s *Service) Log() *Log { return s.log }

// region --- rooms ---

// CreatePrivateRoom returns the private room between the caller and otherUserID,
// creating it when needed.
func (s *Service) CreatePrivateRoom(ctx context.Context, p Principal, otherUserID uint) (*RoomView, bool, error) {
	if !p.CanStartChats() {
		return nil, false, fmt.Errorf("%w: your account is awaiting approval", ErrForbidden)
	}
	room, created, err := s.rooms.GetOrCreatePrivateRoom(ctx, p.UserID, otherUserID)
	if err != nil {
		return nil, false, err
	}
	if created {
		slog.Info("chat: private room created", "room_id", room.ID, "user_id", p.UserID, "other_user_id", otherUserID)
	}
	view, err := s.roomView(ctx, *room, p.UserID)
	return view, created, err
}

// CreateGroupRoom creates a named group. Staff only.
func (s *Service) CreateGroupRoom(ctx context.Context, p Principal, name, description string, memberIDs []uint) (*RoomView, error) {
	if !p.IsStaff() {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	room, err := s.rooms.CreateGroupRoom(ctx, name, description, p.UserID, memberIDs)
	if err != nil {
		return nil, err
	}
	slog.Info("chat: group room created", "room_id", room.ID, "creator_id", p.UserID)
	return s.roomView(ctx, *room, p.UserID)
}

// JoinDefaultGroup attaches the caller to the default group room.
func (s *Service) JoinDefaultGroup(ctx context.Context, p Principal) (*RoomView, error) {
	if !p.CanStartChats() {
		return nil, fmt.Errorf("%w: your account is awaiting approval", ErrForbidden)
	}
	user, err := s.activeUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	room, err := s.joinDefaultGroup(ctx, *user)
	if err != nil {
		return nil, err
	}
	return s.roomView(ctx, *room, p.UserID)
}

func (s *Service) joinDefaultGroup(ctx context.Context, user models.User) (*models.Room, error) {
	room, joined, err := s.rooms.EnsureGroupRoom(ctx, DefaultGroupKey, s.groupName, user.ID)
	if err != nil {
		return nil, err
	}
	if !joined {
		if joined, err = s.rooms.AddMember(ctx, room.ID, user.ID); err != nil {
			return nil, err
		}
	}
	if joined {
		s.announceJoin(ctx, room.ID, user)
	}
	return room, nil
}

// Room returns a room the caller belongs to.
func (s *Service) Room(ctx context.Context, p Principal, roomID uint) (*RoomView, error) {
	room, err := s.memberRoom(ctx, roomID, p.UserID)
	if err != nil {
		return nil, err
	}
	return s.roomView(ctx, *room, p.UserID)
}

// Inbox lists the caller's rooms, most recently active first, with their latest
// message and unread count.
func (s *Service) Inbox(ctx context.Context, p Principal, f RoomFilter) ([]RoomView, int64, error) {
	switch f.Kind {
	case "", models.RoomKindPrivate, models.RoomKindGroup:
	default:
		return nil, 0, fmt.Errorf("%w: unknown room kind %q", ErrInvalidArgument, f.Kind)
	}
	rooms, total, err := s.rooms.RoomsForUser(ctx, p.UserID, f)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.roomViews(ctx, rooms, p.UserID)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// InboxStats counts the caller's conversations and unread messages.
func (s *Service) InboxStats(ctx context.Context, p Principal) (*InboxStats, error) {
	var stats InboxStats
	err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("user_id = ?", p.UserID).
		Count(&stats.Conversations).Error
	if err != nil {
		return nil, fmt.Errorf("chat: count conversations: %w", err)
	}
	if stats.Unread, err = s.log.UnreadTotal(ctx, p.UserID); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AddMember attaches userID to a group room and announces it. Staff only.
func (s *Service) AddMember(ctx context.Context, p Principal, roomID, userID uint) (bool, error) {
	if !p.IsStaff() {
		return false, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	added, err := s.rooms.AddMember(ctx, roomID, userID)
	if err != nil || !added {
		return false, err
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return true, nil
	}
	s.announceJoin(ctx, roomID, *user)
	return true, nil
}

// RemoveMember detaches userID from a group room and ends their live sessions on it. Staff only.
func (s *Service) RemoveMember(ctx context.Context, p Principal, roomID, userID uint) (bool, error) {
	if !p.IsStaff() {
		return false, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	removed, err := s.rooms.RemoveMember(ctx, roomID, userID)
	if err != nil || !removed {
		return false, err
	}
	s.revoke(roomID, userID)
	return true, nil
}

// SetRoomActive opens or closes a room for new messages. Closing it ends live sessions. Staff only.
func (s *Service) SetRoomActive(ctx context.Context, p Principal, roomID uint, active bool) (*RoomView, error) {
	if !p.IsStaff() {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	room, err := s.rooms.SetActive(ctx, roomID, active)
	if err != nil {
		return nil, err
	}
	if !active {
		if err := s.revokeAll(ctx, roomID); err != nil {
			return nil, err
		}
	}
	return s.roomView(ctx, *room, p.UserID)
}

// DeleteRoom removes a room with its history. Staff only.
func (s *Service) DeleteRoom(ctx context.Context, p Principal, roomID uint) error {
	if !p.IsStaff() {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}
	members, err := s.rooms.Members(ctx, roomID)
	if err != nil {
		return err
	}
	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	for _, m := range members {
		s.revoke(roomID, m.ID)
	}
	slog.Info("chat: room deleted", "room_id", roomID, "by", p.UserID)
	return nil
}

// endregion

// region --- users ---

// ApproveUser lets a member start conversations and attaches them to the default group. Staff only.
func (s *Service) ApproveUser(ctx context.Context, p Principal, userID uint) (*models.User, error) {
	if !p.IsStaff() {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Approved {
		err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("approved", true).Error
		if err != nil {
			return nil, fmt.Errorf("chat: approve user: %w", err)
		}
		user.Approved = true
	}
	if _, err := s.joinDefaultGroup(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveUser deletes an account. Group memberships go away, private rooms are
// closed and the user's past messages stay with a removed sender. Staff only.
func (s *Service) RemoveUser(ctx context.Context, p Principal, userID uint) error {
	if !p.IsStaff() {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}
	if userID == p.UserID {
		return fmt.Errorf("%w: cannot remove your own account", ErrInvalidArgument)
	}
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return fmt.Errorf("chat: load user: %w", err)
	}

	affected, err := s.rooms.DetachUser(ctx, userID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("active", false).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("chat: remove user: %w", err)
	}
	for _, roomID := range affected {
		s.revoke(roomID, userID)
	}
	slog.Info("chat: user removed", "user_id", userID, "rooms", len(affected), "by", p.UserID)
	return nil
}

// endregion

// region --- messages ---

// SendMessage appends a message from the caller and pushes it to the room's
// other live sessions once stored.
func (s *Service) SendMessage(ctx context.Context, p Principal, roomID uint, in AppendInput) (*MessageView, error) {
	if in.Kind == models.MessageKindSystem {
		return nil, fmt.Errorf("%w: system messages cannot be sent by clients", ErrInvalidArgument)
	}
	msg, err := s.log.Append(ctx, roomID, p.UserID, in)
	if err != nil {
		return nil, err
	}
	view, err := s.messageView(ctx, *msg)
	if err != nil {
		return nil, err
	}
	s.publish(hub.Event{Type: hub.EventMessageCreated, RoomID: roomID, Payload: view}, p.UserID)
	return view, nil
}

// Messages returns a page of a room's history.
func (s *Service) Messages(ctx context.Context, p Principal, roomID uint, req PageRequest) (*MessagePageView, error) {
	page, err := s.log.List(ctx, roomID, p.UserID, req)
	if err != nil {
		return nil, err
	}
	views, err := messageViews(s.db.WithContext(ctx), page.Messages)
	if err != nil {
		return nil, err
	}
	return &MessagePageView{
		Messages:   views,
		PrevCursor: page.PrevCursor,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

// MarkRead marks everything the caller received in the room so far as read and
// sends a read receipt when anything changed.
func (s *Service) MarkRead(ctx context.Context, p Principal, roomID uint) (int64, error) {
	n, upTo, err := s.log.MarkRead(ctx, roomID, p.UserID, time.Time{})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(hub.Event{
			Type:    hub.EventMessagesRead,
			RoomID:  roomID,
			Payload: ReadReceipt{RoomID: roomID, ReaderID: p.UserID, UpTo: upTo, Count: n},
		}, p.UserID)
	}
	return n, nil
}

// UnreadCount counts the caller's unread messages in a room.
func (s *Service) UnreadCount(ctx context.Context, p Principal, roomID uint) (int64, error) {
	return s.log.UnreadCount(ctx, roomID, p.UserID)
}

// endregion

// region --- live sessions ---

// Subscribe registers a live session of the caller on a room. Membership is
// checked again after registration so a concurrent removal cannot leave the
// session behind: either the check sees the removal or the revocation sees
// the session.
func (s *Service) Subscribe(ctx context.Context, p Principal, roomID uint) (*hub.Subscription, error) {
	if _, err := s.memberRoom(ctx, roomID, p.UserID); err != nil {
		return nil, err
	}
	sub := s.hub.Subscribe(roomID, p.UserID)

	member, err := s.rooms.IsMember(ctx, roomID, p.UserID)
	if err != nil {
		s.hub.Unsubscribe(sub)
		return nil, err
	}
	if !member {
		s.hub.Unsubscribe(sub)
		return nil, ErrUnauthorized
	}
	return sub, nil
}

// Unsubscribe ends a live session.
func (s *Service) Unsubscribe(sub *hub.Subscription) {
	s.hub.Unsubscribe(sub)
}

// endregion

// region --- helpers ---

func (s *Service) publish(ev hub.Event, excludeUserID uint) {
	if err := s.pub.Publish(ev, excludeUserID); err != nil {
		slog.Warn("chat: dropped event", "type", ev.Type, "room_id", ev.RoomID, "error", err)
	}
}

func (s *Service) revoke(roomID, userID uint) {
	if err := s.pub.Revoke(roomID, userID); err != nil {
		slog.Warn("chat: dropped revocation", "room_id", roomID, "user_id", userID, "error", err)
	}
}

func (s *Service) revokeAll(ctx context.Context, roomID uint) error {
	members, err := s.rooms.Members(ctx, roomID)
	if err != nil {
		return err
	}
	for _, m := range members {
		s.revoke(roomID, m.ID)
	}
	return nil
}

func (s *Service) announceJoin(ctx context.Context, roomID uint, user models.User) {
	msg, err := s.log.Append(ctx, roomID, user.ID, AppendInput{
		Kind: models.MessageKindSystem,
		Body: fmt.Sprintf("%s joined the conversation", user.Name),
	})
	if err != nil {
		slog.Warn("chat: join announcement failed", "room_id", roomID, "user_id", user.ID, "error", err)
		return
	}
	view := messageView(*msg, map[uint]models.User{user.ID: user})
	s.publish(hub.Event{Type: hub.EventMessageCreated, RoomID: roomID, Payload: view}, user.ID)
}

func (s *Service) activeUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("active = ?", true).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("chat: load user: %w", err)
	}
	return &user, nil
}

func (s *Service) memberRoom(ctx context.Context, roomID, userID uint) (*models.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	member, err := isMember(s.db.WithContext(ctx), roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrUnauthorized
	}
	return room, nil
}

func (s *Service) messageView(ctx context.Context, m models.Message) (*MessageView, error) {
	users, err := usersByID(s.db.WithContext(ctx), []uint{m.SenderID})
	if err != nil {
		return nil, err
	}
	view := messageView(m, users)
	return &view, nil
}

func (s *Service) roomView(ctx context.Context, room models.Room, viewerID uint) (*RoomView, error) {
	views, err := s.roomViews(ctx, []models.Room{room}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// roomViews decorates rooms with members, latest message and unread count using
// a fixed number of queries.
func (s *Service) roomViews(ctx context.Context, rooms []models.Room, viewerID uint) ([]RoomView, error) {
	views := make([]RoomView, 0, len(rooms))
	if len(rooms) == 0 {
		return views, nil
	}
	db := s.db.WithContext(ctx)

	ids := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}

	var memberships []models.Membership
	if err := db.Where("room_id IN ?", ids).Order("user_id").Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("chat: load memberships: %w", err)
	}
	latest, err := s.log.Latest(ctx, ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.log.UnreadCounts(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(memberships)+len(latest))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	for _, m := range latest {
		userIDs = append(userIDs, m.SenderID)
	}
	users, err := usersByID(db, userIDs)
	if err != nil {
		return nil, err
	}

	members := make(map[uint][]UserView, len(rooms))
	for _, m := range memberships {
		members[m.RoomID] = append(members[m.RoomID], senderView(users, m.UserID))
	}

	for _, r := range rooms {
		v := RoomView{
			ID:             r.ID,
			Kind:           r.Kind,
			Name:           r.Name,
			Title:          roomTitle(r, members[r.ID], viewerID),
			Description:    r.Description,
			Active:         r.Active,
			CreatorID:      r.CreatorID,
			Members:        members[r.ID],
			UnreadCount:    unread[r.ID],
			CreatedAt:      r.CreatedAt,
			LastActivityAt: r.LastActivityAt,
		}
		if v.Members == nil {
			v.Members = []UserView{}
		}
		if m, ok := latest[r.ID]; ok {
			mv := messageView(m, users)
			v.LastMessage = &mv
		}
		views = append(views, v)
	}
	return views, nil
}

// endregion
