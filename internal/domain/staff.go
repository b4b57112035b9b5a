package domain

import "time"

type Staff struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"userID"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}

func NewStaff(name string) (*Staff, error) {
	if name == "" {
		return nil, missingField("staff", "name")
	}
	return &Staff{Name: name, IsAvailable: true}, nil
}

type Assignment struct {
	StaffID   int64     `json:"staffID"`
	ClientID  int64     `json:"clientID"`
	CreatedAt time.Time `json:"createdAt"`
}
