package friends

import (
	"context"
	"strings"
	"time"

	"github.com/nutritiontrax/nutritiontrax/internal/goals"
)

type friendship struct {
	id        int
	userID    int
	friendID  int
	status    string
	createdAt time.Time
}

type repoMock struct {
	users       map[int]Friend
	friendships map[int]*friendship
	nextID      int
}

func NewMockFriendsRepo() *repoMock {
	return &repoMock{
		users:       make(map[int]Friend),
		friendships: make(map[int]*friendship),
		nextID:      1,
	}
}

func (r *repoMock) Friends(_ context.Context, userID int) ([]Friend, error) {
	found := make([]Friend, 0)
	for _, f := range r.friendships {
		if f.status != StatusAccepted {
			continue
		}
		switch userID {
		case f.userID:
			found = append(found, r.users[f.friendID])
		case f.friendID:
			found = append(found, r.users[f.userID])
		}
	}
	return found, nil
}

func (r *repoMock) PendingRequests(_ context.Context, userID int) ([]PendingRequest, error) {
	found := make([]PendingRequest, 0)
	for _, f := range r.friendships {
		if f.friendID != userID || f.status != StatusPending {
			continue
		}
		found = append(found, PendingRequest{
			FriendshipID: f.id,
			User:         r.users[f.userID],
			CreatedAt:    f.createdAt,
		})
	}
	return found, nil
}

func (r *repoMock) SearchUsers(_ context.Context, userID int, query string) ([]SearchResult, error) {
	results := make([]SearchResult, 0)
	for id, u := range r.users {
		if id == userID {
			continue
		}
		if !strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			continue
		}
		res := SearchResult{UserID: id, Username: u.Username, Nickname: u.Nickname}
		for _, f := range r.friendships {
			if (f.userID == userID && f.friendID == id) || (f.userID == id && f.friendID == userID) {
				status := f.status
				res.FriendshipStatus = &status
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *repoMock) Request(_ context.Context, userID, friendID int) (int, error) {
	for _, f := range r.friendships {
		if (f.userID == userID && f.friendID == friendID) || (f.userID == friendID && f.friendID == userID) {
			return 0, ErrRequestExists
		}
	}
	f := &friendship{id: r.nextID, userID: userID, friendID: friendID, status: StatusPending, createdAt: time.Now()}
	r.nextID++
	r.friendships[f.id] = f
	return f.id, nil
}

func (r *repoMock) Accept(_ context.Context, userID, friendshipID int) error {
	f, ok := r.friendships[friendshipID]
	if !ok || f.friendID != userID || f.status != StatusPending {
		return ErrRequestNotFound
	}
	f.status = StatusAccepted
	return nil
}

func (r *repoMock) Decline(_ context.Context, userID, friendshipID int) error {
	f, ok := r.friendships[friendshipID]
	if !ok || f.friendID != userID || f.status != StatusPending {
		return ErrRequestNotFound
	}
	delete(r.friendships, friendshipID)
	return nil
}

func (r *repoMock) Remove(_ context.Context, userID, friendUserID int) error {
	for id, f := range r.friendships {
		if f.status != StatusAccepted {
			continue
		}
		if (f.userID == userID && f.friendID == friendUserID) || (f.userID == friendUserID && f.friendID == userID) {
			delete(r.friendships, id)
			return nil
		}
	}
	return ErrFriendshipNotFound
}

func (r *repoMock) AreFriends(_ context.Context, userID, otherUserID int) (bool, error) {
	for _, f := range r.friendships {
		if f.status != StatusAccepted {
			continue
		}
		if (f.userID == userID && f.friendID == otherUserID) || (f.userID == otherUserID && f.friendID == userID) {
			return true, nil
		}
	}
	return false, nil
}

type challengesRepoMock struct {
	challenges map[int]*goals.Challenge
	statuses   map[int]string
	created    []goals.Goal
	nextID     int
}

func NewMockChallengesRepo() *challengesRepoMock {
	return &challengesRepoMock{
		challenges: make(map[int]*goals.Challenge),
		statuses:   make(map[int]string),
		nextID:     100,
	}
}

func (r *challengesRepoMock) CreateChallenge(_ context.Context, fromUserID int, goal goals.Goal) (int, error) {
	goalID := r.nextID
	r.nextID++
	r.challenges[goalID] = &goals.Challenge{
		GoalID:      goalID,
		Name:        goal.Name,
		Type:        goal.Type,
		TargetValue: goal.TargetValue,
		EndDate:     goal.EndDate,
		MetricType:  goal.MetricType,
		FromUserID:  fromUserID,
	}
	r.statuses[goalID] = goals.StatusPending
	r.created = append(r.created, goal)
	return goalID, nil
}

func (r *challengesRepoMock) AcceptChallenge(_ context.Context, _, goalID int) error {
	if r.statuses[goalID] != goals.StatusPending {
		return goals.ErrChallengeNotFound
	}
	r.statuses[goalID] = goals.StatusAccepted
	return nil
}

func (r *challengesRepoMock) DeclineChallenge(_ context.Context, _, goalID int) error {
	if r.statuses[goalID] != goals.StatusPending {
		return goals.ErrChallengeNotFound
	}
	r.statuses[goalID] = goals.StatusDeclined
	return nil
}

func (r *challengesRepoMock) PendingChallenges(_ context.Context, _ int) ([]goals.Challenge, error) {
	found := make([]goals.Challenge, 0)
	for goalID, c := range r.challenges {
		if r.statuses[goalID] != goals.StatusPending {
			continue
		}
		found = append(found, *c)
	}
	return found, nil
}
