package domain

import "slices"

type (
	RoomName string
	RoomID   string
)

// Room is the membership aggregate. Owner is fixed at creation.
// Members and Invited keep insertion order and never hold duplicates.
type Room struct {
	ID         RoomID   `json:"id"`
	Name       RoomName `json:"name"`
	Owner      ConnID   `json:"owner"`
	IsPrivate  bool     `json:"isPrivate"`
	IsPersonal bool     `json:"isPersonal"`
	Members    []ConnID `json:"members"`
	Invited    []ConnID `json:"invited"`
}

func NewRoom(id RoomID, name RoomName, owner ConnID, private, personal bool) *Room {
	return &Room{
		ID:         id,
		Name:       name,
		Owner:      owner,
		IsPrivate:  private,
		IsPersonal: personal,
		Members:    []ConnID{owner},
		Invited:    []ConnID{},
	}
}

func (r *Room) IsMember(id ConnID) bool  { return slices.Contains(r.Members, id) }
func (r *Room) IsInvited(id ConnID) bool { return slices.Contains(r.Invited, id) }

// CanJoin reports whether id passes the visibility gate.
// Private rooms admit the owner and invitees; personal rooms admit only the owner.
func (r *Room) CanJoin(id ConnID) bool {
	if id == r.Owner {
		return true
	}
	switch {
	case r.IsPersonal:
		return false
	case r.IsPrivate:
		return r.IsInvited(id)
	default:
		return true
	}
}

// AddMember reports whether id was newly added.
func (r *Room) AddMember(id ConnID) bool {
	if r.IsMember(id) {
		return false
	}
	r.Members = append(r.Members, id)
	return true
}

// RemoveMember reports whether id was a member.
func (r *Room) RemoveMember(id ConnID) bool {
	i := slices.Index(r.Members, id)
	if i < 0 {
		return false
	}
	r.Members = slices.Delete(r.Members, i, i+1)
	return true
}

func (r *Room) Invite(id ConnID) bool {
	if r.IsInvited(id) {
		return false
	}
	r.Invited = append(r.Invited, id)
	return true
}

// Clone returns a deep copy safe to hand to encoders outside the lock.
func (r *Room) Clone() Room {
	c := *r
	c.Members = slices.Clone(r.Members)
	c.Invited = slices.Clone(r.Invited)
	if c.Members == nil {
		c.Members = []ConnID{}
	}
	if c.Invited == nil {
		c.Invited = []ConnID{}
	}
	return c
}
