package models

import "time"

// Response types

type SuccessResponse struct {
	Success bool `json:"success"`
}

type VerifyOTPResponse struct {
	Success  bool    `json:"success"`
	Verified bool    `json:"verified"`
	UserID   *string `json:"user_id,omitempty"`
}

type SignUpResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type SessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

type ProductDetail struct {
	Product     Product    `json:"product"`
	Categories  []Category `json:"categories"`
	PopularTags []Tag      `json:"popular_tags"`
}

type CreateTopicResponse struct {
	Topic Topic  `json:"topic"`
	Path  string `json:"path"`
}

type TopicPage struct {
	Items []Topic `json:"items"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Pages int     `json:"pages"`
}

type TopicDetail struct {
	Topic         Topic   `json:"topic"`
	AcceptedReply *Reply  `json:"accepted_reply,omitempty"`
	UserVote      *string `json:"user_vote"`
	Bookmarked    bool    `json:"bookmarked"`
}

type RelatedTopic struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	VoteScore   int    `json:"vote_score"`
	ReplyCount  int    `json:"reply_count"`
	ProductSlug string `json:"product_slug"`
}

type VoteResponse struct {
	VoteScore int     `json:"vote_score"`
	UserVote  *string `json:"user_vote"`
}

type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

type PinResponse struct {
	Pinned bool `json:"pinned"`
}

type ReportList struct {
	Reports []Report       `json:"reports"`
	Counts  map[string]int `json:"counts"`
}

type UserStats struct {
	Total      int `json:"total"`
	Admins     int `json:"admins"`
	Moderators int `json:"moderators"`
	Trusted    int `json:"trusted"`
}

type AdminOverview struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
	Users      UserStats  `json:"users"`
}

type Profile struct {
	User       User    `json:"user"`
	Badges     []Badge `json:"badges"`
	TopicCount int     `json:"topic_count"`
	ReplyCount int     `json:"reply_count"`
}

// UserReply is a reply listed on a profile, with enough of its topic to link
// back to it.
type UserReply struct {
	Reply       Reply  `json:"reply"`
	TopicTitle  string `json:"topic_title"`
	TopicSlug   string `json:"topic_slug"`
	ProductSlug string `json:"product_slug"`
}

// Search types

type SearchHit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Slug           string    `json:"slug"`
	Status         string    `json:"status"`
	Type           string    `json:"type"`
	ProductSlug    string    `json:"product_slug"`
	ProductName    string    `json:"product_name"`
	CategorySlug   *string   `json:"category_slug,omitempty"`
	CategoryName   *string   `json:"category_name,omitempty"`
	AuthorName     string    `json:"author_name"`
	AuthorUsername *string   `json:"author_username,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	VoteScore      int       `json:"vote_score"`
	ReplyCount     int       `json:"reply_count"`
	Tags           []TagRef  `json:"tags"`
}

type SearchResult struct {
	Items      []SearchHit `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
}
