package users

import (
	"context"
	"time"
)

type repoMock struct {
	users  map[int]*User
	nextID int
}

func NewMockUsersRepo() *repoMock {
	return &repoMock{
		users:  make(map[int]*User),
		nextID: 1,
	}
}

func (r *repoMock) Create(_ context.Context, username, passwordHash, dob string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}
	user := &User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		DOB:          &dob,
		CreatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	r.nextID++
	return user, nil
}

func (r *repoMock) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) Get(_ context.Context, id int) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *repoMock) UpdateProfile(_ context.Context, id int, nickname, dob *string) error {
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if nickname != nil {
		user.Nickname = nickname
	}
	if dob != nil {
		user.DOB = dob
	}
	return nil
}
