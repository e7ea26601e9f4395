package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidate_SignUp(t *testing.T) {
	tests := []struct {
		name    string
		req     SignUpRequest
		wantErr string
	}{
		{"valid", SignUpRequest{Name: "Alice", Email: "alice@example.com", Password: "Secret123"}, ""},
		{"short name", SignUpRequest{Name: "A", Email: "alice@example.com", Password: "Secret123"}, "name must be at least 2 characters"},
		{"bad email", SignUpRequest{Name: "Alice", Email: "nope", Password: "Secret123"}, "Invalid email address"},
		{"short password", SignUpRequest{Name: "Alice", Email: "a@b.co", Password: "Ab1"}, "password must be at least 8 characters"},
		{"no uppercase", SignUpRequest{Name: "Alice", Email: "a@b.co", Password: "secret123"}, "uppercase"},
		{"no digit", SignUpRequest{Name: "Alice", Email: "a@b.co", Password: "SecretPass"}, "uppercase"},
		{"non-ascii upper and digit", SignUpRequest{Name: "Alice", Email: "a@b.co", Password: "Äbcdefg٣"}, "uppercase"},
		{"72 bytes", SignUpRequest{Name: "Alice", Email: "a@b.co", Password: "Passw0rd" + strings.Repeat("x", 64)}, ""},
		{"over 72 bytes", SignUpRequest{Name: "Alice", Email: "a@b.co", Password: "Passw0rd" + strings.Repeat("x", 65)}, "password must be at most 72 bytes"},
		{"multibyte over 72 bytes", SignUpRequest{Name: "Alice", Email: "a@b.co", Password: "Passw0rd" + strings.Repeat("é", 40)}, "password must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CreateTopic(t *testing.T) {
	base := CreateTopicRequest{
		Title:     "How do I configure webhooks?",
		Body:      strings.Repeat("details ", 5),
		ProductID: "prod-1",
		Type:      TopicQuestion,
	}
	require.NoError(t, Validate(base))

	tooManyTags := base
	tooManyTags.TagIDs = []string{"a", "b", "c", "d", "e", "f"}
	err := Validate(tooManyTags)
	require.Error(t, err)
	assert.Equal(t, "tag_ids allows at most 5 entries", err.Error())

	badType := base
	badType.Type = "RANT"
	err = Validate(badType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type must be one of")

	shortBody := base
	shortBody.Body = "too short"
	var verr *ValidationError
	require.True(t, errors.As(Validate(shortBody), &verr))
	assert.Equal(t, "body", verr.Field)
}

func TestValidate_VoteTarget(t *testing.T) {
	tests := []struct {
		name    string
		req     VoteRequest
		wantErr bool
	}{
		{"topic vote", VoteRequest{Type: VoteUp, TopicID: "t1"}, false},
		{"reply vote", VoteRequest{Type: VoteDown, ReplyID: "r1"}, false},
		{"no target", VoteRequest{Type: VoteUp}, true},
		{"both targets", VoteRequest{Type: VoteUp, TopicID: "t1", ReplyID: "r1"}, true},
		{"bad type", VoteRequest{Type: "SIDEWAYS", TopicID: "t1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_UpdateProfile(t *testing.T) {
	assert.NoError(t, Validate(UpdateProfileRequest{}))
	assert.NoError(t, Validate(UpdateProfileRequest{Website: strPtr("")}))
	assert.NoError(t, Validate(UpdateProfileRequest{Website: strPtr("https://example.com")}))
	assert.Error(t, Validate(UpdateProfileRequest{Website: strPtr("example.com")}))
	assert.NoError(t, Validate(UpdateProfileRequest{Username: strPtr("alice_dev-1")}))
	assert.Error(t, Validate(UpdateProfileRequest{Username: strPtr("alice dev")}))
	assert.Error(t, Validate(UpdateProfileRequest{Username: strPtr("al")}))
}

func TestValidate_CatalogRules(t *testing.T) {
	assert.NoError(t, Validate(CreateTagRequest{Name: "Go", Slug: "go", Color: "#00ADD8"}))
	assert.Error(t, Validate(CreateTagRequest{Name: "Go", Slug: "Go Lang"}))
	assert.Error(t, Validate(CreateTagRequest{Name: "Go", Slug: "go", Color: "#fff"}))

	assert.NoError(t, Validate(CreateProductRequest{Name: "Acme", Slug: "acme", DocsURL: ""}))
	assert.Error(t, Validate(CreateProductRequest{Name: "Acme", Slug: "acme", DocsURL: "ftp://docs"}))
	assert.Error(t, Validate(CreateProductRequest{Name: "Acme", Slug: "acme", Status: "GONE"}))
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role                      string
		moderate, admin, trusted bool
	}{
		{RoleUser, false, false, false},
		{RoleTrusted, false, false, true},
		{RoleModerator, true, false, true},
		{RoleAdmin, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.moderate, CanModerate(tt.role))
			assert.Equal(t, tt.admin, CanAdmin(tt.role))
			assert.Equal(t, tt.trusted, IsTrusted(tt.role))
		})
	}
}
