// AngelaMos | 2026
// dto.go

package apikey

import (
	"time"

	"github.com/mailsfinder/admin-console/internal/ledger"
)

type CreateRequest struct {
	UserID             string `json:"user_id"               validate:"omitempty,max=128"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute" validate:"required,gt=0,lte=100000"`
}

type RevokeRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type RateLimitRequest struct {
	RateLimitPerMinute int `json:"rate_limit_per_minute" validate:"required,gt=0,lte=100000"`
}

type ListParams struct {
	UserID string
	Status ledger.KeyStatus
}

// KeyResponse is the listing shape. The sealed secret never leaves the
// server.
type KeyResponse struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"userId,omitempty"`
	KeyPrefix          string           `json:"keyPrefix"`
	RateLimitPerMinute int              `json:"rateLimitPerMinute"`
	LastUsedAt         *time.Time       `json:"lastUsedAt,omitempty"`
	UsageCount         int64            `json:"usageCount"`
	Status             ledger.KeyStatus `json:"status"`
	CreatedAt          time.Time        `json:"createdAt"`
}

type CreatedResponse struct {
	Key     KeyResponse     `json:"key"`
	FullKey string          `json:"full_key"`
	Audit   ledger.AuditRow `json:"audit"`
}

type RevokedResponse struct {
	Key   KeyResponse     `json:"key"`
	Audit ledger.AuditRow `json:"audit"`
}

func ToKeyResponse(k ledger.APIKey) KeyResponse {
	return KeyResponse{
		ID:                 k.ID,
		UserID:             k.UserID,
		KeyPrefix:          k.KeyPrefix,
		RateLimitPerMinute: k.RateLimitPerMinute,
		LastUsedAt:         k.LastUsedAt,
		UsageCount:         k.UsageCount,
		Status:             k.Status,
		CreatedAt:          k.CreatedAt,
	}
}

func ToKeyResponseList(keys []ledger.APIKey) []KeyResponse {
	responses := make([]KeyResponse, 0, len(keys))
	for _, k := range keys {
		responses = append(responses, ToKeyResponse(k))
	}
	return responses
}
