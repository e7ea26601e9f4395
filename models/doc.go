// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, validated with go-playground/validator
struct tags:

  - SendOTPRequest, VerifyOTPRequest, SignUpRequest, SignInRequest
  - CreateTopicRequest, UpdateTopicRequest, TopicStatusRequest,
    AcceptAnswerRequest
  - CreateReplyRequest, UpdateReplyRequest
  - VoteRequest: exactly one of topic_id and reply_id
  - ReportRequest, ModReasonRequest, ResolveReportRequest
  - CreateProductRequest, CreateCategoryRequest, CreateTagRequest,
    UpdateRoleRequest
  - UpdateProfileRequest: pointer fields, nil means unchanged
  - SearchRequest: built from query parameters

# Validation

Validate runs the struct tags and returns a *ValidationError whose message
names the JSON field and the failed rule. Custom rules:

	password  an uppercase letter and a digit
	username  letters, digits, underscores and hyphens
	slug      lowercase letters, digits and hyphens
	color     #RRGGBB
	weburl    absolute http(s) URL

# Response Types

  - SessionResponse, SignUpResponse, VerifyOTPResponse
  - ProductDetail, TopicPage, TopicDetail, CreateTopicResponse,
    RelatedTopic
  - VoteResponse, BookmarkResponse, PinResponse
  - ReportList, AdminOverview, UserStats
  - Profile, UserReply
  - SearchResult, SearchHit
  - SuccessResponse, ErrorResponse

# Constants

Roles, ordered by privilege:

	RoleUser, RoleTrusted, RoleModerator, RoleAdmin

CanModerate and CanAdmin gate the moderation and admin routes. IsTrusted
marks members whose standing has been raised above a plain user.

Topic types and statuses:

	TopicQuestion, TopicDiscussion, TopicAnnouncement, TopicShowcase
	StatusOpen, StatusAnswered, StatusResolved, StatusLocked, StatusArchived

Reputation awards:

	ReputationTopic    = 5
	ReputationReply    = 2
	ReputationAccepted = 15
*/
package models
