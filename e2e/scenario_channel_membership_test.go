package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type testChannelMembershipSuite struct {
	BaseHTTPSuite
}

func TestChannelMembershipSuite(t *testing.T) {
	suite.Run(t, &testChannelMembershipSuite{})
}

type session struct {
	UserID int    `json:"u_id"`
	Token  string `json:"token"`
}

type member struct {
	UserID int `json:"u_id"`
}

type details struct {
	Name         string   `json:"name"`
	OwnerMembers []member `json:"owner_members"`
	AllMembers   []member `json:"all_members"`
}

func (s *testChannelMembershipSuite) register(first string) session {
	var out session
	status, message := s.Call("Register "+first, http.MethodPost, "/auth/register", map[string]any{
		"email":      first + "@flockr.test",
		"password":   "correct-horse",
		"name_first": first,
		"name_last":  "Tester",
	}, &out)
	s.Require().Equal(http.StatusOK, status, message)
	return out
}

func (s *testChannelMembershipSuite) createChannel(token, name string, public bool) int {
	var out struct {
		ChannelID int `json:"channel_id"`
	}
	status, message := s.Call("Create channel "+name, http.MethodPost, "/channels/create",
		map[string]any{"token": token, "name": name, "is_public": public}, &out)
	s.Require().Equal(http.StatusOK, status, message)
	return out.ChannelID
}

func (s *testChannelMembershipSuite) details(token string, channelID int) (details, int, string) {
	var out details
	status, message := s.Call("Channel details", http.MethodGet,
		fmt.Sprintf("/channel/details?token=%s&channel_id=%d", token, channelID), nil, &out)
	return out, status, message
}

func ids(members []member) []int {
	out := make([]int, 0, len(members))
	for _, m := range members {
		out = append(out, m.UserID)
	}
	return out
}

func (s *testChannelMembershipSuite) TestOwnershipHandOff() {
	var a, b session
	var channelID int

	// --- STEP 1: TWO USERS, ONE PUBLIC CHANNEL ---
	s.Run("Step 1: Register users and create a channel", func() {
		a = s.register("ada")
		b = s.register("bob")
		s.Require().Equal(0, a.UserID)
		s.Require().Equal(1, b.UserID)
		channelID = s.createChannel(a.Token, "general", true)
	})

	// --- STEP 2: INVITE ---
	s.Run("Step 2: Invite B as a plain member", func() {
		status, message := s.Call("Invite B", http.MethodPost, "/channel/invite",
			map[string]any{"token": a.Token, "channel_id": channelID, "u_id": b.UserID}, nil)
		s.Require().Equal(http.StatusOK, status, message)

		d, status, message := s.details(a.Token, channelID)
		s.Require().Equal(http.StatusOK, status, message)
		s.Require().Equal([]int{0, 1}, ids(d.AllMembers))
		s.Require().Equal([]int{0}, ids(d.OwnerMembers))
	})

	// --- STEP 3: PROMOTE ---
	s.Run("Step 3: Promote B, who becomes a global owner", func() {
		status, message := s.Call("Add owner B", http.MethodPost, "/channel/addowner",
			map[string]any{"token": a.Token, "channel_id": channelID, "u_id": b.UserID}, nil)
		s.Require().Equal(http.StatusOK, status, message)

		d, _, _ := s.details(a.Token, channelID)
		s.Require().Equal([]int{0, 1}, ids(d.OwnerMembers))

		// Only a global owner may change permissions: B succeeds now.
		status, message = s.Call("B keeps the owner permission", http.MethodPost, "/admin/userpermission/change",
			map[string]any{"token": b.Token, "u_id": b.UserID, "permission_id": 1}, nil)
		s.Require().Equal(http.StatusOK, status, message)
	})

	// --- STEP 4: LEAVE ---
	s.Run("Step 4: A leaves, B keeps the channel", func() {
		status, message := s.Call("A leaves", http.MethodPost, "/channel/leave",
			map[string]any{"token": a.Token, "channel_id": channelID}, nil)
		s.Require().Equal(http.StatusOK, status, message)

		d, status, message := s.details(b.Token, channelID)
		s.Require().Equal(http.StatusOK, status, message)
		s.Require().Equal([]int{1}, ids(d.AllMembers))
		s.Require().Equal([]int{1}, ids(d.OwnerMembers))
	})
}

func (s *testChannelMembershipSuite) TestLastMemberDeletesChannel() {
	a := s.register("ada")
	channelID := s.createChannel(a.Token, "solo", true)

	status, message := s.Call("A leaves", http.MethodPost, "/channel/leave",
		map[string]any{"token": a.Token, "channel_id": channelID}, nil)
	s.Require().Equal(http.StatusOK, status, message)

	_, status, message = s.details(a.Token, channelID)
	s.Require().Equal(http.StatusBadRequest, status)
	s.Require().Equal("invalid channel id", message)
}

func (s *testChannelMembershipSuite) TestPrivateInvite() {
	owner := s.register("ada")
	plain := s.register("bob")
	other := s.register("cid")
	privateID := s.createChannel(plain.Token, "secret", false)

	status, message := s.Call("Invite a member", http.MethodPost, "/channel/invite",
		map[string]any{"token": plain.Token, "channel_id": privateID, "u_id": other.UserID}, nil)
	s.Require().Equal(http.StatusBadRequest, status)
	s.Require().Equal("user is not authorised to join this channel", message)

	status, message = s.Call("Invite the global owner", http.MethodPost, "/channel/invite",
		map[string]any{"token": plain.Token, "channel_id": privateID, "u_id": owner.UserID}, nil)
	s.Require().Equal(http.StatusOK, status, message)
}

func (s *testChannelMembershipSuite) TestScheduledMessage() {
	a := s.register("ada")
	channelID := s.createChannel(a.Token, "later", true)

	var sent struct {
		MessageID int `json:"message_id"`
	}
	status, message := s.Call("Send later", http.MethodPost, "/message/sendlater", map[string]any{
		"token": a.Token, "channel_id": channelID, "message": "from the future",
		"time_sent": time.Now().Add(2 * time.Second).Unix(),
	}, &sent)
	s.Require().Equal(http.StatusOK, status, message)

	path := fmt.Sprintf("/channel/messages?token=%s&channel_id=%d&start=0", a.Token, channelID)
	s.Eventually(func() bool {
		var page struct {
			Messages []struct {
				MessageID int `json:"message_id"`
			} `json:"messages"`
		}
		s.Call("Poll messages", http.MethodGet, path, nil, &page)
		return len(page.Messages) == 1 && page.Messages[0].MessageID == sent.MessageID
	}, 10*time.Second, 250*time.Millisecond)
}

func (s *testChannelMembershipSuite) TestHealth() {
	s.WithHealth("Check health", func(ctx context.Context, client healthpb.HealthClient) {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{}, grpc.WaitForReady(true))
		s.Require().NoError(err)
		s.Require().Equal(healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})
}
