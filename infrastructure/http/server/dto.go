package server

import (
	"flockr/domain"

	"github.com/samber/lo"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"name_first"`
	LastName  string `json:"name_last"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token domain.Token `json:"token"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	ResetCode   string `json:"reset_code"`
	NewPassword string `json:"new_password"`
}

type channelRequest struct {
	Token     domain.Token     `json:"token"`
	ChannelID domain.ChannelID `json:"channel_id"`
}

type channelUserRequest struct {
	Token     domain.Token     `json:"token"`
	ChannelID domain.ChannelID `json:"channel_id"`
	UserID    domain.UserID    `json:"u_id"`
}

type createChannelRequest struct {
	Token    domain.Token `json:"token"`
	Name     string       `json:"name"`
	IsPublic bool         `json:"is_public"`
}

type sendRequest struct {
	Token     domain.Token     `json:"token"`
	ChannelID domain.ChannelID `json:"channel_id"`
	Message   string           `json:"message"`
}

type sendLaterRequest struct {
	Token     domain.Token     `json:"token"`
	ChannelID domain.ChannelID `json:"channel_id"`
	Message   string           `json:"message"`
	TimeSent  int64            `json:"time_sent"`
}

type messageRequest struct {
	Token     domain.Token     `json:"token"`
	MessageID domain.MessageID `json:"message_id"`
}

type editRequest struct {
	Token     domain.Token     `json:"token"`
	MessageID domain.MessageID `json:"message_id"`
	Message   string           `json:"message"`
}

type reactRequest struct {
	Token     domain.Token     `json:"token"`
	MessageID domain.MessageID `json:"message_id"`
	ReactID   domain.ReactID   `json:"react_id"`
}

type setNameRequest struct {
	Token     domain.Token `json:"token"`
	FirstName string       `json:"name_first"`
	LastName  string       `json:"name_last"`
}

type setEmailRequest struct {
	Token domain.Token `json:"token"`
	Email string       `json:"email"`
}

type setHandleRequest struct {
	Token  domain.Token `json:"token"`
	Handle string       `json:"handle_str"`
}

type permissionRequest struct {
	Token        domain.Token      `json:"token"`
	UserID       domain.UserID     `json:"u_id"`
	PermissionID domain.Permission `json:"permission_id"`
}

type empty struct{}

type authResponse struct {
	UserID domain.UserID `json:"u_id"`
	Token  domain.Token  `json:"token"`
}

type logoutResponse struct {
	IsSuccess bool `json:"is_success"`
}

type channelIDResponse struct {
	ChannelID domain.ChannelID `json:"channel_id"`
}

type messageIDResponse struct {
	MessageID domain.MessageID `json:"message_id"`
}

type memberResponse struct {
	UserID    domain.UserID `json:"u_id"`
	FirstName string        `json:"name_first"`
	LastName  string        `json:"name_last"`
}

type detailsResponse struct {
	Name         string           `json:"name"`
	OwnerMembers []memberResponse `json:"owner_members"`
	AllMembers   []memberResponse `json:"all_members"`
}

type channelSummary struct {
	ChannelID domain.ChannelID `json:"channel_id"`
	Name      string           `json:"name"`
}

type channelsResponse struct {
	Channels []channelSummary `json:"channels"`
}

type reactResponse struct {
	ReactID           domain.ReactID  `json:"react_id"`
	UserIDs           []domain.UserID `json:"u_ids"`
	IsThisUserReacted bool            `json:"is_this_user_reacted"`
}

type messageResponse struct {
	MessageID   domain.MessageID `json:"message_id"`
	UserID      domain.UserID    `json:"u_id"`
	Message     string           `json:"message"`
	TimeCreated int64            `json:"time_created"`
	Reacts      []reactResponse  `json:"reacts"`
	IsPinned    bool             `json:"is_pinned"`
}

type messagesResponse struct {
	Messages []messageResponse `json:"messages"`
	Start    int               `json:"start"`
	End      int               `json:"end"`
}

type searchResponse struct {
	Messages []messageResponse `json:"messages"`
}

type userResponse struct {
	UserID    domain.UserID `json:"u_id"`
	Email     string        `json:"email"`
	FirstName string        `json:"name_first"`
	LastName  string        `json:"name_last"`
	Handle    string        `json:"handle_str"`
}

type profileResponse struct {
	User userResponse `json:"user"`
}

type usersResponse struct {
	Users []userResponse `json:"users"`
}

type echoResponse struct {
	Data string `json:"data"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func toMembers(views []domain.MemberView) []memberResponse {
	return lo.Map(views, func(v domain.MemberView, _ int) memberResponse {
		return memberResponse{UserID: v.UserID, FirstName: v.FirstName, LastName: v.LastName}
	})
}

func toChannels(summaries []domain.ChannelSummary) channelsResponse {
	return channelsResponse{Channels: lo.Map(summaries, func(s domain.ChannelSummary, _ int) channelSummary {
		return channelSummary{ChannelID: s.ID, Name: s.Name}
	})}
}

// toMessages renders messages as seen by viewer, who may have reacted.
func toMessages(messages []domain.Message, viewer domain.UserID) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return messageResponse{
			MessageID:   m.ID,
			UserID:      m.SenderID,
			Message:     m.Content,
			TimeCreated: m.CreatedAt.Unix(),
			Reacts: lo.Map(m.Reacts, func(r domain.React, _ int) reactResponse {
				return reactResponse{
					ReactID:           r.ReactID,
					UserIDs:           r.UserIDs,
					IsThisUserReacted: lo.Contains(r.UserIDs, viewer),
				}
			}),
			IsPinned: m.IsPinned,
		}
	})
}

func toUser(p domain.UserProfile) userResponse {
	return userResponse{UserID: p.UserID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName, Handle: p.Handle}
}
