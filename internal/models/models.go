// Package models defines the structs that map to database tables. GORM uses
// these to build queries and scan rows; the authoritative schema lives in the
// SQL files under migrations/.
//
// The data model represents an amateur sports club platform:
//   - Users hold Memberships in Clubs, each with a per-club role
//   - Clubs run Leagues, which have Participants
//   - Leagues hold prize Draws, each with ordered Prizes and Winners
//   - Notices, FAQs, and policy documents make up the public board content
//
// Users are identified by a sequential integer id; everything on the club
// side uses opaque uuid tokens generated by the database.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Enums ---

// AuthProvider tags how an account authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
	ProviderKakao  AuthProvider = "kakao"
	ProviderNaver  AuthProvider = "naver"
)

// ClubRole is a user's permission level within one club. Roles are scoped
// per club per user — there is no global club role.
type ClubRole string

const (
	RoleOwner  ClubRole = "owner"  // the club creator; exactly one per club, immutable
	RoleAdmin  ClubRole = "admin"  // can manage leagues, participants, and draws
	RoleMember ClubRole = "member" // regular member
)

// LeagueStatus tracks the lifecycle of a league.
type LeagueStatus string

const (
	LeagueStatusDraft     LeagueStatus = "draft"
	LeagueStatusActive    LeagueStatus = "active"
	LeagueStatusCompleted LeagueStatus = "completed"
)

// --- Models ---

// User is a registered person. PasswordHash is nil for pure social accounts;
// it is kept when a local account is later linked to a social provider, so
// local login keeps working after linking.
type User struct {
	ID           uint         `gorm:"primaryKey"`
	Email        string       `gorm:"uniqueIndex;not null"` // unique across all providers
	PasswordHash *string      // nil unless the account has a local credential
	DisplayName  string       `gorm:"not null"`
	Provider     AuthProvider `gorm:"type:auth_provider;not null;default:'local'"`
	ProviderID   *string      // external account id at the OAuth provider
	IsAdmin      bool         `gorm:"not null;default:false"`
	MemberCode   string       `gorm:"uniqueIndex;not null"` // e.g. "M202601150001"
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Memberships []Membership `gorm:"foreignKey:UserID"`
}

// MemberCodeCounter backs member code generation: one row per calendar day,
// bumped with a single atomic upsert so concurrent signups on the same day
// can never produce the same code.
type MemberCodeCounter struct {
	Day string `gorm:"primaryKey;size:8"` // "YYYYMMDD"
	Seq int    `gorm:"not null"`
}

// Club is the top-level organizational unit. Creating a club also creates
// the creator's owner membership in the same transaction, so a club with
// zero members cannot exist.
type Club struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string    `gorm:"not null;default:''"`
	Sport       string    `gorm:"not null;default:''"` // e.g. "badminton", "tennis"
	City        string    `gorm:"not null;default:''"`
	District    string    `gorm:"not null;default:''"`
	FoundedOn   *time.Time
	CreatedBy   uint `gorm:"not null"`
	Creator     User `gorm:"foreignKey:CreatedBy"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Memberships []Membership `gorm:"foreignKey:ClubID"`
	Leagues     []League     `gorm:"foreignKey:ClubID"`
}

// Membership links a User to a Club with a role. The composite unique index
// guarantees at most one membership row per (club, user) pair.
type Membership struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClubID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_club_user"`
	Club     Club      `gorm:"foreignKey:ClubID"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_club_user"`
	User     User      `gorm:"foreignKey:UserID"`
	Role     ClubRole  `gorm:"type:club_role;not null;default:'member'"`
	Division string    `gorm:"not null;default:''"` // optional grade/division tag (e.g. "A조")
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// League is a competitive event owned by one club. ParticipantCount is a
// stored counter maintained transactionally alongside every participant
// insert and delete — it is never taken from client input.
type League struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClubID           uuid.UUID    `gorm:"type:uuid;not null;index"`
	Club             Club         `gorm:"foreignKey:ClubID"`
	Name             string       `gorm:"not null"`
	Description      string       `gorm:"not null;default:''"`
	LeagueType       string       `gorm:"not null;default:''"` // e.g. "regular", "friendly"
	Format           string       `gorm:"not null;default:''"` // e.g. "singles", "doubles"
	Sport            string       `gorm:"not null;default:''"`
	StartsAt         *time.Time
	Notice           string       `gorm:"not null;default:''"` // rules / notice text shown to members
	SortOrder        int          `gorm:"not null;default:0"`
	Status           LeagueStatus `gorm:"type:league_status;not null;default:'draft'"`
	RecruitTarget    int          `gorm:"not null;default:0"`
	ParticipantCount int          `gorm:"not null;default:0"`
	CreatedBy        uint         `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Participants []Participant `gorm:"foreignKey:LeagueID"`
	Draws        []Draw        `gorm:"foreignKey:LeagueID"`
}

// Participant is an entrant in one league. Names are free text and may
// repeat within a league.
type Participant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeagueID  uuid.UUID `gorm:"type:uuid;not null;index"`
	League    League    `gorm:"foreignKey:LeagueID"`
	Division  string    `gorm:"not null;default:''"`
	Name      string    `gorm:"not null"`
	Paid      bool      `gorm:"not null;default:false"` // entry fee received
	Arrived   bool      `gorm:"not null;default:false"` // checked in on the day
	Attended  bool      `gorm:"not null;default:false"` // post-event attendance confirmed
	CreatedAt time.Time
}

// Draw is a prize-allocation record owned by one league.
type Draw struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeagueID  uuid.UUID `gorm:"type:uuid;not null;index"`
	League    League    `gorm:"foreignKey:LeagueID"`
	Name      string    `gorm:"not null"`
	CreatedBy uint      `gorm:"not null"`
	CreatedAt time.Time

	Prizes []Prize `gorm:"foreignKey:DrawID"`
}

// Prize is one prize category within a draw. SortOrder preserves display
// order across the delete-and-reinsert that a draw "run" performs.
type Prize struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DrawID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Draw      Draw      `gorm:"foreignKey:DrawID"`
	Name      string    `gorm:"not null"`
	Quantity  int       `gorm:"not null;default:1"`
	SortOrder int       `gorm:"not null;default:0"`

	Winners []Winner `gorm:"foreignKey:PrizeID"`
}

// Winner records one winner of a prize. Name is free text — it is not a
// foreign key to Participant.
type Winner struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PrizeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Prize     Prize     `gorm:"foreignKey:PrizeID"`
	Name      string    `gorm:"not null"`
	Division  string    `gorm:"not null;default:''"`
	SortOrder int       `gorm:"not null;default:0"`
}

// Notice is a site-wide announcement managed by platform admins.
type Notice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string    `gorm:"not null"`
	Body      string    `gorm:"not null;default:''"`
	Pinned    bool      `gorm:"not null;default:false"`
	CreatedBy uint      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FAQ is a question/answer entry on the public board.
type FAQ struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question  string    `gorm:"not null"`
	Answer    string    `gorm:"not null;default:''"`
	SortOrder int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PolicyDocument is a legal document identified by slug ("terms",
// "privacy"). CurrentVersionID points at the published PolicyVersion;
// publication inserts the version and moves this pointer in one transaction.
type PolicyDocument struct {
	Slug             string     `gorm:"primaryKey"`
	Title            string     `gorm:"not null"`
	CurrentVersionID *uuid.UUID `gorm:"type:uuid"`
	UpdatedAt        time.Time
}

// PolicyVersion is one immutable published revision of a policy document.
type PolicyVersion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug        string    `gorm:"not null;index"`
	Version     int       `gorm:"not null"`
	Body        string    `gorm:"not null"`
	PublishedAt time.Time `gorm:"autoCreateTime"`
}

// --- ID hooks ---
//
// Uuid primary keys are assigned before insert, so a row's id is known as
// soon as Create returns. The column defaults in migrations/ cover rows
// created outside the application.

func (c *Club) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (m *Membership) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (l *League) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (p *Participant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (d *Draw) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (p *Prize) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (w *Winner) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (n *Notice) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (f *FAQ) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (v *PolicyVersion) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
