package users

import (
	"errors"
	"regexp"
	"time"
)

const dobFormat = "2006-01-02"

var (
	usernameRegex = regexp.MustCompile(`^\w{3,32}$`)
	nicknameRegex = regexp.MustCompile(`^[a-zA-Z]{1,32}$`)
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Nickname     *string   `json:"nickname,omitempty"`
	DOB          *string   `json:"dob,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 3-32 characters: letters, numbers and underscores only")
	}
	return nil
}

func ValidateNickname(nickname string) error {
	if !nicknameRegex.MatchString(nickname) {
		return errors.New("nickname must be at most 32 letters")
	}
	return nil
}

func ValidateDOB(dob string) error {
	if _, err := time.Parse(dobFormat, dob); err != nil {
		return errors.New("date of birth must be in YYYY-MM-DD format")
	}
	return nil
}

func ValidateHeight(heightInches float64) error {
	if heightInches <= 0 || heightInches > 120 {
		return errors.New("height must be between 0 and 120 inches")
	}
	return nil
}

func ValidateWeight(weightLbs float64) error {
	if weightLbs <= 0 {
		return errors.New("weight must be greater than 0")
	}
	return nil
}
