package http

import (
	"time"

	"github.com/vovakirdan/relaychat/internal/core"
)

// OnlineUser describes one live session.
type OnlineUser struct {
	SessionID    string `json:"session_id"`
	Identity     string `json:"identity"`
	MessagesSent int    `json:"messages_sent"`
	JoinedAt     string `json:"joined_at"`
}

// OnlineResponse is the body of GET /api/online.
type OnlineResponse struct {
	Count                int          `json:"count"`
	RejectDuplicateNames bool         `json:"reject_duplicate_names"`
	Users                []OnlineUser `json:"users"`
}

func onlineFromRecords(records []*core.Record, rejectDuplicates bool) OnlineResponse {
	users := make([]OnlineUser, 0, len(records))
	for _, r := range records {
		users = append(users, OnlineUser{
			SessionID:    r.ID,
			Identity:     r.Identity,
			MessagesSent: r.SentCount(),
			JoinedAt:     r.JoinedAt.UTC().Format(time.RFC3339),
		})
	}
	return OnlineResponse{
		Count:                len(users),
		RejectDuplicateNames: rejectDuplicates,
		Users:                users,
	}
}
