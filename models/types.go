package models

import "time"

// User roles
const (
	RoleUser      = "USER"
	RoleTrusted   = "TRUSTED"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// Product status constants
const (
	ProductActive = "ACTIVE"
	ProductBeta   = "BETA"
	ProductHidden = "HIDDEN"
)

// Topic type constants
const (
	TopicQuestion     = "QUESTION"
	TopicDiscussion   = "DISCUSSION"
	TopicAnnouncement = "ANNOUNCEMENT"
	TopicShowcase     = "SHOWCASE"
)

// Topic status constants
const (
	StatusOpen     = "OPEN"
	StatusAnswered = "ANSWERED"
	StatusResolved = "RESOLVED"
	StatusLocked   = "LOCKED"
	StatusArchived = "ARCHIVED"
)

// Vote type constants
const (
	VoteUp   = "UP"
	VoteDown = "DOWN"
)

// Report status constants
const (
	ReportPending   = "PENDING"
	ReportReviewed  = "REVIEWED"
	ReportResolved  = "RESOLVED"
	ReportDismissed = "DISMISSED"
)

// Moderation action types
const (
	ModLockTopic     = "LOCK_TOPIC"
	ModUnlockTopic   = "UNLOCK_TOPIC"
	ModPinTopic      = "PIN_TOPIC"
	ModUnpinTopic    = "UNPIN_TOPIC"
	ModMoveTopic     = "MOVE_TOPIC"
	ModDeleteTopic   = "DELETE_TOPIC"
	ModDeleteReply   = "DELETE_REPLY"
	ModBanUser       = "BAN_USER"
	ModUnbanUser     = "UNBAN_USER"
	ModWarnUser      = "WARN_USER"
	ModChangeStatus  = "CHANGE_STATUS"
	ModResolveReport = "RESOLVE_REPORT"
	ModDismissReport = "DISMISS_REPORT"
)

// Verification code types
const (
	CodeEmailVerification = "EMAIL_VERIFICATION"
	CodeSignIn            = "SIGN_IN"
)

// Reputation awarded for contributions
const (
	ReputationTopic    = 5
	ReputationReply    = 2
	ReputationAccepted = 15
)

// CanModerate reports whether role may use moderation tools.
func CanModerate(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}

func CanAdmin(role string) bool {
	return role == RoleAdmin
}

func IsTrusted(role string) bool {
	return role == RoleTrusted || role == RoleModerator || role == RoleAdmin
}

// Session types

// SessionUser is the signed-in user attached to a request.
type SessionUser struct {
	ID         string `json:"id"`
	Username   string `json:"username,omitempty"`
	Role       string `json:"role"`
	Reputation int    `json:"reputation"`
}

// Domain types

type User struct {
	ID            string     `json:"id"`
	Name          *string    `json:"name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Username      *string    `json:"username,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	Image         *string    `json:"image,omitempty"`
	Bio           *string    `json:"bio,omitempty"`
	Website       *string    `json:"website,omitempty"`
	GitHub        *string    `json:"github,omitempty"`
	Twitter       *string    `json:"twitter,omitempty"`
	Role          string     `json:"role"`
	Reputation    int        `json:"reputation"`
	IsBanned      bool       `json:"is_banned"`
	PasswordHash  *string    `json:"-"` // Never expose in JSON
	CreatedAt     time.Time  `json:"created_at"`
}

// Author is the public summary of a user shown next to content.
type Author struct {
	ID         string  `json:"id"`
	Name       *string `json:"name,omitempty"`
	Username   *string `json:"username,omitempty"`
	Image      *string `json:"image,omitempty"`
	Role       string  `json:"role"`
	Reputation int     `json:"reputation"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Status      string    `json:"status"`
	Ordering    int       `json:"ordering"`
	DocsURL     *string   `json:"docs_url,omitempty"`
	ReleaseURL  *string   `json:"release_url,omitempty"`
	TopicCount  int       `json:"topic_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Category struct {
	ID          string  `json:"id"`
	ProductID   *string `json:"product_id,omitempty"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Ordering    int     `json:"ordering"`
}

type Tag struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	UsageCount  int     `json:"usage_count"`
}

// TagRef is the short form of a tag attached to a topic.
type TagRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductRef is the short form of a product attached to a topic.
type ProductRef struct {
	ID    string  `json:"id"`
	Slug  string  `json:"slug"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

// CategoryRef is the short form of a category attached to a topic.
type CategoryRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Topic struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Body            string       `json:"body"`
	BodyHTML        string       `json:"body_html,omitempty"`
	Slug            string       `json:"slug"`
	Type            string       `json:"type"`
	Status          string       `json:"status"`
	IsPinned        bool         `json:"is_pinned"`
	VoteScore       int          `json:"vote_score"`
	ReplyCount      int          `json:"reply_count"`
	ViewCount       int          `json:"view_count"`
	ViewCountLabel  string       `json:"view_count_label"`
	Excerpt         string       `json:"excerpt"`
	AcceptedReplyID *string      `json:"accepted_reply_id,omitempty"`
	Author          Author       `json:"author"`
	Product         ProductRef   `json:"product"`
	Category        *CategoryRef `json:"category,omitempty"`
	Tags            []TagRef     `json:"tags"`
	LastActivity    time.Time    `json:"last_activity"`
	LastActivityAgo string       `json:"last_activity_ago"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type Reply struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topic_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"body_html,omitempty"`
	VoteScore int       `json:"vote_score"`
	IsDeleted bool      `json:"is_deleted"`
	Author    Author    `json:"author"`
	// UserVote is the signed-in caller's vote, set only on reply lists.
	UserVote  *string   `json:"user_vote,omitempty"`
	Children  []Reply   `json:"children,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Report struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	Details   *string   `json:"details,omitempty"`
	Status    string    `json:"status"`
	Reporter  Author    `json:"reporter"`
	TopicID   *string   `json:"topic_id,omitempty"`
	ReplyID   *string   `json:"reply_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ModAction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Reason       *string   `json:"reason,omitempty"`
	Moderator    Author    `json:"moderator"`
	TopicID      *string   `json:"topic_id,omitempty"`
	ReplyID      *string   `json:"reply_id,omitempty"`
	ReportID     *string   `json:"report_id,omitempty"`
	TargetUserID *string   `json:"target_user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Color       *string   `json:"color,omitempty"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
