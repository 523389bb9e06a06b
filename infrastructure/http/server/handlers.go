package server

import (
	"flockr/auth"
	"flockr/domain"
	"flockr/errors"
	"net/http"
	"strconv"
	"time"
)

// token prefers the token of a JSON body and falls back to the request
// headers and query.
func token(r *http.Request, fromBody domain.Token) domain.Token {
	if fromBody != "" {
		return fromBody
	}
	return auth.TokenFromRequest(r)
}

func queryInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0, errors.Input("invalid %s", name)
	}
	return value, nil
}

func (s *Server) echo(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get("data")
	if data == "echo" {
		s.writeError(w, r, errors.Input(`cannot echo "echo"`))
		return
	}
	s.writeJSON(w, http.StatusOK, echoResponse{Data: data})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.platform.Auth.Register(body.Email, body.Password, body.FirstName, body.LastName)
	s.writeResult(w, r, authResponse{UserID: result.UserID, Token: result.Token}, err)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.platform.Auth.Login(body.Email, body.Password)
	s.writeResult(w, r, authResponse{UserID: result.UserID, Token: result.Token}, err)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var body tokenRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok := s.platform.Auth.Logout(token(r, body.Token))
	s.writeJSON(w, http.StatusOK, logoutResponse{IsSuccess: ok})
}

func (s *Server) passwordResetRequest(w http.ResponseWriter, r *http.Request) {
	var body resetRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Auth.RequestPasswordReset(body.Email))
}

func (s *Server) passwordReset(w http.ResponseWriter, r *http.Request) {
	var body resetPasswordRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Auth.ResetPassword(body.ResetCode, body.NewPassword))
}

func (s *Server) channelInvite(w http.ResponseWriter, r *http.Request) {
	var body channelUserRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.platform.Channels.Invite(token(r, body.Token), body.ChannelID, body.UserID)
	s.writeResult(w, r, empty{}, err)
}

func (s *Server) channelDetails(w http.ResponseWriter, r *http.Request) {
	channelID, err := queryInt(r, "channel_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	details, err := s.platform.Channels.Details(auth.TokenFromRequest(r), domain.ChannelID(channelID))
	s.writeResult(w, r, detailsResponse{
		Name:         details.Name,
		OwnerMembers: toMembers(details.OwnerMembers),
		AllMembers:   toMembers(details.AllMembers),
	}, err)
}

func (s *Server) channelMessages(w http.ResponseWriter, r *http.Request) {
	channelID, err := queryInt(r, "channel_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	start, err := queryInt(r, "start")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tok := auth.TokenFromRequest(r)
	page, err := s.platform.Messages.Messages(tok, domain.ChannelID(channelID), start)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messagesResponse{
		Messages: toMessages(page.Messages, s.viewer(tok)),
		Start:    page.Start,
		End:      page.End,
	})
}

// viewer names the caller for is_this_user_reacted, -1 when unknown.
func (s *Server) viewer(tok domain.Token) domain.UserID {
	userID, err := s.platform.Identify(tok)
	if err != nil {
		return -1
	}
	return userID
}

func (s *Server) channelLeave(w http.ResponseWriter, r *http.Request) {
	var body channelRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Channels.Leave(token(r, body.Token), body.ChannelID))
}

func (s *Server) channelJoin(w http.ResponseWriter, r *http.Request) {
	var body channelRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Channels.Join(token(r, body.Token), body.ChannelID))
}

func (s *Server) channelAddOwner(w http.ResponseWriter, r *http.Request) {
	var body channelUserRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.platform.Channels.AddOwner(token(r, body.Token), body.ChannelID, body.UserID)
	s.writeResult(w, r, empty{}, err)
}

func (s *Server) channelRemoveOwner(w http.ResponseWriter, r *http.Request) {
	var body channelUserRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.platform.Channels.RemoveOwner(token(r, body.Token), body.ChannelID, body.UserID)
	s.writeResult(w, r, empty{}, err)
}

func (s *Server) channelsList(w http.ResponseWriter, r *http.Request) {
	channels, err := s.platform.Channels.List(auth.TokenFromRequest(r))
	s.writeResult(w, r, toChannels(channels), err)
}

func (s *Server) channelsListAll(w http.ResponseWriter, r *http.Request) {
	channels, err := s.platform.Channels.ListAll(auth.TokenFromRequest(r))
	s.writeResult(w, r, toChannels(channels), err)
}

func (s *Server) channelsCreate(w http.ResponseWriter, r *http.Request) {
	var body createChannelRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.platform.Channels.Create(token(r, body.Token), body.Name, body.IsPublic)
	s.writeResult(w, r, channelIDResponse{ChannelID: id}, err)
}

func (s *Server) messageSend(w http.ResponseWriter, r *http.Request) {
	var body sendRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.platform.Messages.Send(token(r, body.Token), body.ChannelID, body.Message)
	s.writeResult(w, r, messageIDResponse{MessageID: id}, err)
}

func (s *Server) messageSendLater(w http.ResponseWriter, r *http.Request) {
	var body sendLaterRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	at := time.Unix(body.TimeSent, 0)
	id, err := s.platform.Messages.SendLater(token(r, body.Token), body.ChannelID, body.Message, at)
	s.writeResult(w, r, messageIDResponse{MessageID: id}, err)
}

func (s *Server) messageEdit(w http.ResponseWriter, r *http.Request) {
	var body editRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Messages.Edit(token(r, body.Token), body.MessageID, body.Message))
}

func (s *Server) messageRemove(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Messages.Remove(token(r, body.Token), body.MessageID))
}

func (s *Server) messageReact(w http.ResponseWriter, r *http.Request) {
	var body reactRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.platform.Messages.React(token(r, body.Token), body.MessageID, body.ReactID)
	s.writeResult(w, r, empty{}, err)
}

func (s *Server) messageUnreact(w http.ResponseWriter, r *http.Request) {
	var body reactRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.platform.Messages.Unreact(token(r, body.Token), body.MessageID, body.ReactID)
	s.writeResult(w, r, empty{}, err)
}

func (s *Server) messagePin(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Messages.Pin(token(r, body.Token), body.MessageID))
}

func (s *Server) messageUnpin(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Messages.Unpin(token(r, body.Token), body.MessageID))
}

func (s *Server) userProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt(r, "u_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := s.platform.Users.Profile(auth.TokenFromRequest(r), domain.UserID(userID))
	s.writeResult(w, r, profileResponse{User: toUser(profile)}, err)
}

func (s *Server) userSetName(w http.ResponseWriter, r *http.Request) {
	var body setNameRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.platform.Users.SetName(token(r, body.Token), body.FirstName, body.LastName)
	s.writeResult(w, r, empty{}, err)
}

func (s *Server) userSetEmail(w http.ResponseWriter, r *http.Request) {
	var body setEmailRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Users.SetEmail(token(r, body.Token), body.Email))
}

func (s *Server) userSetHandle(w http.ResponseWriter, r *http.Request) {
	var body setHandleRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, empty{}, s.platform.Users.SetHandle(token(r, body.Token), body.Handle))
}

func (s *Server) usersAll(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.platform.Users.All(auth.TokenFromRequest(r))
	users := make([]userResponse, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, toUser(p))
	}
	s.writeResult(w, r, usersResponse{Users: users}, err)
}

func (s *Server) adminPermissionChange(w http.ResponseWriter, r *http.Request) {
	var body permissionRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.platform.Admin.ChangePermission(token(r, body.Token), body.UserID, body.PermissionID)
	s.writeResult(w, r, empty{}, err)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	tok := auth.TokenFromRequest(r)
	found, err := s.platform.Messages.Search(tok, r.URL.Query().Get("query_str"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, searchResponse{Messages: toMessages(found, s.viewer(tok))})
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, r, empty{}, s.platform.Reset())
}

func (s *Server) debugStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Collect()
	s.writeResult(w, r, stats, err)
}
