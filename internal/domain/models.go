// Package domain defines the persistence models for conversations, messages,
// feedback, preferences and recommendation audit rows, plus the typed
// itinerary document stored on a conversation. These types are mapped with
// GORM and form the core data layer of the travel planner.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Conversation states. A conversation starts without a plan, moves to
// plan_created once an itinerary is stored, and to feedback_recorded after
// each accepted feedback.
const (
	StateNoPlan           = "no_plan"
	StatePlanCreated      = "plan_created"
	StateFeedbackRecorded = "feedback_recorded"
)

// Conversation is a user's planning session. It carries the trip being
// planned, the latest itinerary, and the cumulative feedback score.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: owner of the conversation; indexed for listing.
//   - Destination / Days: the trip currently being planned.
//   - TotalScore: cumulative feedback points; never decreases.
//   - BonusRights: bonus rights unlocked so far; never decreases.
//   - Plan: most recent itinerary, stored as JSON; nil until generated.
//   - State: one of the State* constants.
//   - IsActive: whether the session is still open.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type Conversation struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string         `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_user_conversations"`
	Destination string         `json:"destination"  gorm:"type:varchar(128);not null;default:''"`
	Days        int            `json:"days"         gorm:"not null;default:0"`
	TotalScore  int            `json:"total_score"  gorm:"not null;default:0;check:total_score >= 0"`
	BonusRights int            `json:"bonus_rights" gorm:"not null;default:0;check:bonus_rights >= 0"`
	Plan        *Itinerary     `json:"plan,omitempty" gorm:"type:text;serializer:json"`
	State       string         `json:"state"        gorm:"type:varchar(32);not null;default:'no_plan'"`
	IsActive    bool           `json:"is_active"    gorm:"not null;default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// HasPlan reports whether an itinerary has been generated.
func (c Conversation) HasPlan() bool { return c.Plan != nil }

// Message is one exchange within a conversation: the user's text and the
// reply produced for it. Messages are append-only.
type Message struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"type:char(36);not null;index:idx_conversation_msgs,priority:1"`
	UserMessage    string    `json:"user_message"    gorm:"type:text;not null"`
	BotResponse    string    `json:"bot_response"    gorm:"type:text;not null"`
	Intent         string    `json:"intent"          gorm:"type:varchar(32);not null;default:'general'"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_conversation_msgs,priority:2"`

	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Feedback is a 1..5 rating left on a recommendation (or on the plan as a
// whole) of a conversation. The scoring outcome is stored with the row so
// retried requests can be answered without scoring twice.
//
// Fields:
//   - RecommendationID: place id, or "general_plan" for whole-plan feedback.
//   - Rating: 1..5 (enforced by DB constraint).
//   - DayNumber / TimeSlot: optional position of the rated item in the plan.
//   - PointsEarned / ScoreAfter / BonusGranted: outcome of this feedback.
type Feedback struct {
	ID                 string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	ConversationID     string    `json:"conversation_id"     gorm:"type:char(36);not null;index"`
	UserID             string    `json:"user_id"             gorm:"type:varchar(64);not null;index"`
	RecommendationID   string    `json:"recommendation_id"   gorm:"type:varchar(255);not null"`
	RecommendationName string    `json:"recommendation_name" gorm:"type:varchar(255);not null;default:''"`
	RecommendationType string    `json:"recommendation_type" gorm:"type:varchar(64);not null;default:'general'"`
	Rating             int       `json:"rating"              gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment            string    `json:"comment,omitempty"   gorm:"type:text"`
	DayNumber          int       `json:"day_number,omitempty"`
	TimeSlot           string    `json:"time_slot,omitempty" gorm:"type:varchar(16)"`
	PointsEarned       int       `json:"points_earned"       gorm:"not null;default:0"`
	ScoreAfter         int       `json:"score_after"         gorm:"not null;default:0"`
	BonusGranted       bool      `json:"bonus_granted"       gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"created_at"`

	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedback" }

// Preference is a learned or explicit user preference for a category.
// Weight is at least 1; Value holds either an explicit setting such as
// "budget" or "luxury", or "liked"/"disliked" for learned categories.
type Preference struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"  gorm:"type:varchar(64);not null;uniqueIndex:ux_pref_user_category,priority:1"`
	Category  string    `json:"category" gorm:"type:varchar(64);not null;uniqueIndex:ux_pref_user_category,priority:2"`
	Value     string    `json:"value"    gorm:"type:varchar(128);not null;default:''"`
	Weight    int       `json:"weight"   gorm:"not null;default:1;check:weight >= 1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Preference.
func (Preference) TableName() string { return "preferences" }

// RecommendationRecord is the audit copy of a recommendation that made it
// into a generated plan.
type RecommendationRecord struct {
	ID             string    `gorm:"type:char(36);primaryKey"`
	ConversationID string    `gorm:"type:char(36);not null;index"`
	Position       int       `gorm:"not null"`
	DayNumber      int       `gorm:"not null"`
	TimeSlot       string    `gorm:"type:varchar(16);not null"`
	PlaceID        string    `gorm:"type:varchar(255);not null"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Category       string    `gorm:"type:varchar(64);not null"`
	Lat            float64
	Lng            float64
	Rating         float64
	PriceLevel     int
	Score          float64
	CreatedAt      time.Time
}

// TableName returns the database table name for RecommendationRecord.
func (RecommendationRecord) TableName() string { return "recommendations" }
