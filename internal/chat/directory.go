package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"automarket/chat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Directory owns rooms and their memberships.
type Directory struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDirectory returns a Directory backed by db.
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db, now: now}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// RoomFilter narrows RoomsForUser.
type RoomFilter struct {
	Query string // matches room name or a participant's name
	Kind  models.RoomKind
	Page  int
	Limit int
}

func privateKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("private:%d:%d", a, b)
}

func groupKey(key string) string {
	return "group:" + key
}

// GetOrCreatePrivateRoom returns the private room of the pair {a, b}, creating it
// if needed. created reports whether this call created it.
func (d *Directory) GetOrCreatePrivateRoom(ctx context.Context, a, b uint) (room *models.Room, created bool, err error) {
	if a == b {
		return nil, false, fmt.Errorf("%w: a private room needs two distinct users", ErrInvalidArgument)
	}
	if err := requireActiveUsers(d.db.WithContext(ctx), a, b); err != nil {
		return nil, false, err
	}

	key := privateKey(a, b)
	return d.getOrCreate(ctx, key, models.Room{
		Kind:      models.RoomKindPrivate,
		Name:      "Private Chat",
		CreatorID: a,
	}, []uint{a, b})
}

// EnsureGroupRoom returns the designated group room for key, creating it with
// creatorID as its first member if it does not exist yet.
func (d *Directory) EnsureGroupRoom(ctx context.Context, key, name string, creatorID uint) (*models.Room, bool, error) {
	if strings.TrimSpace(key) == "" || strings.TrimSpace(name) == "" {
		return nil, false, fmt.Errorf("%w: group key and name are required", ErrInvalidArgument)
	}
	if err := requireActiveUsers(d.db.WithContext(ctx), creatorID); err != nil {
		return nil, false, err
	}
	return d.getOrCreate(ctx, groupKey(key), models.Room{
		Kind:      models.RoomKindGroup,
		Name:      name,
		CreatorID: creatorID,
	}, []uint{creatorID})
}

// getOrCreate resolves a keyed room. The unique index on unique_key decides
// concurrent creators: a loser re-reads once and returns the winner's room.
func (d *Directory) getOrCreate(ctx context.Context, key string, proto models.Room, members []uint) (*models.Room, bool, error) {
	room, err := d.findByKey(ctx, key)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	proto.UniqueKey = &key
	room, createErr := d.create(ctx, proto, members)
	if createErr == nil {
		return room, true, nil
	}

	winner, err := d.findByKey(ctx, key)
	if err == nil {
		slog.Debug("chat: lost room creation race", "key", key, "room_id", winner.ID, "error", createErr)
		return winner, false, nil
	}
	return nil, false, fmt.Errorf("chat: create room %s: %w", key, createErr)
}

func (d *Directory) findByKey(ctx context.Context, key string) (*models.Room, error) {
	var room models.Room
	err := d.db.WithContext(ctx).Where("unique_key = ?", key).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chat: find room %s: %w", key, err)
	}
	return &room, nil
}

func (d *Directory) create(ctx context.Context, room models.Room, members []uint) (*models.Room, error) {
	ts := d.now()
	room.Active = true
	room.CreatedAt = ts
	room.LastActivityAt = ts

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return attach(tx, room.ID, members, ts)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateGroupRoom creates a named group with the creator and the given members.
func (d *Directory) CreateGroupRoom(ctx context.Context, name, description string, creatorID uint, memberIDs []uint) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}

	members := dedupe(append([]uint{creatorID}, memberIDs...))
	if err := requireActiveUsers(d.db.WithContext(ctx), members...); err != nil {
		return nil, err
	}

	room, err := d.create(ctx, models.Room{
		Kind:        models.RoomKindGroup,
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
	}, members)
	if err != nil {
		return nil, fmt.Errorf("chat: create group room: %w", err)
	}
	return room, nil
}

// Get returns a room by id.
func (d *Directory) Get(ctx context.Context, roomID uint) (*models.Room, error) {
	return getRoom(d.db.WithContext(ctx), roomID, false)
}

// IsMember reports whether userID belongs to the room. A missing room is ErrNotFound.
func (d *Directory) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	db := d.db.WithContext(ctx)
	if _, err := getRoom(db, roomID, false); err != nil {
		return false, err
	}
	return isMember(db, roomID, userID)
}

// AddMember attaches userID to a group room. Adding an existing member is a no-op;
// added reports whether a row was created.
func (d *Directory) AddMember(ctx context.Context, roomID, userID uint) (added bool, err error) {
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := getRoom(tx, roomID, true)
		if err != nil {
			return err
		}
		if !room.Active {
			return fmt.Errorf("%w: room %d is inactive", ErrConflict, roomID)
		}
		if err := requireActiveUsers(tx, userID); err != nil {
			return err
		}

		member, err := isMember(tx, roomID, userID)
		if err != nil || member {
			return err
		}
		if room.Kind == models.RoomKindPrivate {
			return fmt.Errorf("%w: private rooms have exactly two members", ErrConflict)
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Membership{RoomID: roomID, UserID: userID, CreatedAt: d.now()})
		if res.Error != nil {
			return fmt.Errorf("chat: add member: %w", res.Error)
		}
		added = res.RowsAffected > 0
		return nil
	})
	return added, err
}

// RemoveMember detaches userID from a group room. Removing a non-member is a no-op.
func (d *Directory) RemoveMember(ctx context.Context, roomID, userID uint) (removed bool, err error) {
	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := getRoom(tx, roomID, true)
		if err != nil {
			return err
		}
		if !room.Active {
			return fmt.Errorf("%w: room %d is inactive", ErrConflict, roomID)
		}
		if err := requireUsers(tx.Unscoped(), userID); err != nil {
			return err
		}

		member, err := isMember(tx, roomID, userID)
		if err != nil || !member {
			return err
		}
		if room.Kind == models.RoomKindPrivate {
			return fmt.Errorf("%w: private rooms have exactly two members", ErrConflict)
		}

		res := tx.Where("room_id = ? AND user_id = ?", roomID, userID).Delete(&models.Membership{})
		if res.Error != nil {
			return fmt.Errorf("chat: remove member: %w", res.Error)
		}
		removed = res.RowsAffected > 0
		return nil
	})
	return removed, err
}

// Members returns the users attached to a room, including soft-deleted ones.
func (d *Directory) Members(ctx context.Context, roomID uint) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).Unscoped().
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.room_id = ?", roomID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("chat: list members: %w", err)
	}
	return users, nil
}

// SetActive toggles whether the room accepts new messages and members.
func (d *Directory) SetActive(ctx context.Context, roomID uint, active bool) (*models.Room, error) {
	var room *models.Room
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if room, err = getRoom(tx, roomID, true); err != nil {
			return err
		}
		room.Active = active
		return tx.Model(&models.Room{}).Where("id = ?", roomID).Update("active", active).Error
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom removes a room together with its memberships and messages.
func (d *Directory) DeleteRoom(ctx context.Context, roomID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getRoom(tx, roomID, true); err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("chat: delete messages: %w", err)
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Membership{}).Error; err != nil {
			return fmt.Errorf("chat: delete memberships: %w", err)
		}
		if err := tx.Delete(&models.Room{}, roomID).Error; err != nil {
			return fmt.Errorf("chat: delete room: %w", err)
		}
		return nil
	})
}

// DetachUser is the account-deletion path. Group memberships are removed; private
// rooms keep both members and are deactivated so the counterpart keeps the history.
// It returns the ids of every affected room.
func (d *Directory) DetachUser(ctx context.Context, userID uint) ([]uint, error) {
	var affected []uint
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rooms []models.Room
		err := tx.Joins("JOIN memberships ON memberships.room_id = rooms.id").
			Where("memberships.user_id = ?", userID).
			Find(&rooms).Error
		if err != nil {
			return fmt.Errorf("chat: rooms of user: %w", err)
		}

		var groups, private []uint
		for _, r := range rooms {
			affected = append(affected, r.ID)
			if r.Kind == models.RoomKindPrivate {
				private = append(private, r.ID)
			} else {
				groups = append(groups, r.ID)
			}
		}

		if len(groups) > 0 {
			err := tx.Where("user_id = ? AND room_id IN ?", userID, groups).Delete(&models.Membership{}).Error
			if err != nil {
				return fmt.Errorf("chat: detach user: %w", err)
			}
		}
		if len(private) > 0 {
			err := tx.Model(&models.Room{}).Where("id IN ?", private).Update("active", false).Error
			if err != nil {
				return fmt.Errorf("chat: deactivate private rooms: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

// RoomsForUser lists the rooms userID belongs to, most recently active first.
func (d *Directory) RoomsForUser(ctx context.Context, userID uint, f RoomFilter) ([]models.Room, int64, error) {
	page, limit := normalizePage(f.Page, f.Limit)

	query := d.db.WithContext(ctx).Model(&models.Room{}).
		Joins("JOIN memberships ON memberships.room_id = rooms.id AND memberships.user_id = ?", userID)
	if f.Kind != "" {
		query = query.Where("rooms.kind = ?", f.Kind)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"(LOWER(rooms.name) LIKE ? OR EXISTS (SELECT 1 FROM memberships pm JOIN users pu ON pu.id = pm.user_id WHERE pm.room_id = rooms.id AND LOWER(pu.name) LIKE ?))",
			like, like,
		)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("chat: count rooms: %w", err)
	}

	var rooms []models.Room
	err := query.Order("rooms.last_activity_at DESC, rooms.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, 0, fmt.Errorf("chat: list rooms: %w", err)
	}
	return rooms, total, nil
}

// region --- helpers shared with the message log ---

// getRoom loads a room, taking a row lock when lock is set. Row locks serialize
// appends per room on postgres; sqlite ignores them and serializes writers anyway.
func getRoom(db *gorm.DB, roomID uint, lock bool) (*models.Room, error) {
	var room models.Room
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("chat: load room %d: %w", roomID, err)
	}
	return &room, nil
}

func isMember(db *gorm.DB, roomID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Membership{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("chat: membership lookup: %w", err)
	}
	return count > 0, nil
}

func attach(tx *gorm.DB, roomID uint, userIDs []uint, ts time.Time) error {
	memberships := make([]models.Membership, 0, len(userIDs))
	for _, id := range dedupe(userIDs) {
		memberships = append(memberships, models.Membership{RoomID: roomID, UserID: id, CreatedAt: ts})
	}
	if len(memberships) == 0 {
		return nil
	}
	return tx.Create(&memberships).Error
}

// requireActiveUsers fails with ErrNotFound unless every id is an active, non-deleted user.
func requireActiveUsers(db *gorm.DB, ids ...uint) error {
	return requireUsersWhere(db.Where("active = ?", true), ids)
}

func requireUsers(db *gorm.DB, ids ...uint) error {
	return requireUsersWhere(db, ids)
}

func requireUsersWhere(db *gorm.DB, ids []uint) error {
	for _, id := range ids {
		if id == 0 {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
	}
	ids = dedupe(ids)
	var count int64
	if err := db.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("chat: user lookup: %w", err)
	}
	if count != int64(len(ids)) {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100 // Max limit
	}
	return page, limit
}

// endregion
