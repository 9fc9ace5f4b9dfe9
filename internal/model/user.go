package model

import "time"

// User represents a registered examinee.
type User struct {
	ID           int       `json:"id"`
	ServiceNo    string    `json:"service_no"`
	Name         string    `json:"name"`
	WingName     string    `json:"wing_name"`
	DivisionName string    `json:"division_name"`
	DistrictName string    `json:"district_name"`
	SectionName  string    `json:"section_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for student self-registration.
type RegisterRequest struct {
	ServiceNo    string `json:"service_no" binding:"required,min=4,max=20,alphanum"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	WingName     string `json:"wing_name" binding:"required,max=100"`
	DivisionName string `json:"division_name" binding:"required,max=100"`
	DistrictName string `json:"district_name" binding:"required,max=100"`
	SectionName  string `json:"section_name" binding:"omitempty,max=100"`
	Password     string `json:"password" binding:"required,min=6,max=128"`
}

// UserLoginRequest is the payload for student authentication.
type UserLoginRequest struct {
	ServiceNo string `json:"service_no" binding:"required,min=4,max=20"`
	Password  string `json:"password" binding:"required,min=4,max=128"`
}

// UserLoginResponse is returned after successful student login.
type UserLoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
