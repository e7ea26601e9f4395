package models

// Request types. Validation rules live in the validate tags and are checked
// by Validate.

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Type  string `json:"type" validate:"required,oneof=signup signin"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
	Type  string `json:"type" validate:"required,oneof=signup signin"`
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72,password"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateTopicRequest struct {
	Title      string   `json:"title" validate:"required,min=10,max=200"`
	Body       string   `json:"body" validate:"required,min=30,max=50000"`
	ProductID  string   `json:"product_id" validate:"required"`
	CategoryID string   `json:"category_id"`
	Type       string   `json:"type" validate:"required,oneof=QUESTION DISCUSSION ANNOUNCEMENT SHOWCASE"`
	TagIDs     []string `json:"tag_ids" validate:"max=5,dive,required"`
}

type UpdateTopicRequest struct {
	Title      *string   `json:"title" validate:"omitempty,min=10,max=200"`
	Body       *string   `json:"body" validate:"omitempty,min=30,max=50000"`
	CategoryID *string   `json:"category_id"`
	TagIDs     *[]string `json:"tag_ids" validate:"omitempty,max=5,dive,required"`
}

type TopicStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN ANSWERED RESOLVED LOCKED ARCHIVED"`
}

type AcceptAnswerRequest struct {
	ReplyID string `json:"reply_id" validate:"required"`
}

type CreateReplyRequest struct {
	Body     string `json:"body" validate:"required,min=10,max=30000"`
	ParentID string `json:"parent_id"`
}

type UpdateReplyRequest struct {
	Body string `json:"body" validate:"required,min=10,max=30000"`
}

// VoteRequest targets exactly one of a topic or a reply.
type VoteRequest struct {
	Type    string `json:"type" validate:"required,oneof=UP DOWN"`
	TopicID string `json:"topic_id" validate:"required_without=ReplyID,excluded_with=ReplyID"`
	ReplyID string `json:"reply_id" validate:"required_without=TopicID"`
}

type ReportRequest struct {
	Reason  string `json:"reason" validate:"required,oneof=SPAM HARASSMENT INAPPROPRIATE OFF_TOPIC DUPLICATE OTHER"`
	Details string `json:"details" validate:"max=1000"`
	TopicID string `json:"topic_id" validate:"required_without=ReplyID,excluded_with=ReplyID"`
	ReplyID string `json:"reply_id" validate:"required_without=TopicID"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Username *string `json:"username" validate:"omitempty,min=3,max=30,username"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Website  *string `json:"website" validate:"omitempty,weburl"`
	GitHub   *string `json:"github" validate:"omitempty,max=50"`
	Twitter  *string `json:"twitter" validate:"omitempty,max=50"`
}

type ModReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ResolveReportRequest struct {
	Action string `json:"action" validate:"required,oneof=RESOLVE DISMISS"`
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"required,min=2,max=50,slug"`
	Description string `json:"description" validate:"max=1000"`
	Icon        string `json:"icon" validate:"max=100"`
	Color       string `json:"color" validate:"omitempty,color"`
	Status      string `json:"status" validate:"omitempty,oneof=ACTIVE BETA HIDDEN"`
	Ordering    int    `json:"ordering"`
	DocsURL     string `json:"docs_url" validate:"weburl"`
	ReleaseURL  string `json:"release_url" validate:"weburl"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"required,min=2,max=50,slug"`
	Description string `json:"description" validate:"max=500"`
	Icon        string `json:"icon" validate:"max=100"`
	ProductID   string `json:"product_id"`
	Ordering    int    `json:"ordering"`
}

type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=30"`
	Slug        string `json:"slug" validate:"required,min=2,max=30,slug"`
	Description string `json:"description" validate:"max=200"`
	Color       string `json:"color" validate:"omitempty,color"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER TRUSTED MODERATOR ADMIN"`
}

// SearchRequest is built from query parameters rather than a JSON body.
type SearchRequest struct {
	Query      string   `json:"q" validate:"required,min=2,max=200"`
	ProductID  string   `json:"product"`
	CategoryID string   `json:"category"`
	TagIDs     []string `json:"tags"`
	Status     string   `json:"status" validate:"omitempty,oneof=OPEN ANSWERED RESOLVED LOCKED ARCHIVED"`
	Type       string   `json:"type" validate:"omitempty,oneof=QUESTION DISCUSSION ANNOUNCEMENT SHOWCASE"`
	Page       int      `json:"page" validate:"min=1"`
	Limit      int      `json:"limit" validate:"min=1,max=50"`
}
