package models

import "strings"

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address represents a postal address on a user or company record
type Address struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	StateCode   string      `json:"stateCode"`
	PostalCode  string      `json:"postalCode"`
	Coordinates Coordinates `json:"coordinates"`
	Country     string      `json:"country"`
}

// Company represents a user's employer
type Company struct {
	Department string  `json:"department"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Address    Address `json:"address"`
}

// Bank holds the masked card details returned with a user
type Bank struct {
	CardExpire string `json:"cardExpire"`
	CardNumber string `json:"cardNumber"`
	CardType   string `json:"cardType"`
	Currency   string `json:"currency"`
	IBAN       string `json:"iban"`
}

// User represents a people record
type User struct {
	ID         int     `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	MaidenName string  `json:"maidenName,omitempty"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Username   string  `json:"username"`
	BirthDate  string  `json:"birthDate"`
	Image      string  `json:"image"`
	BloodGroup string  `json:"bloodGroup,omitempty"`
	Height     float64 `json:"height"`
	Weight     float64 `json:"weight"`
	EyeColor   string  `json:"eyeColor,omitempty"`
	Address    Address `json:"address"`
	University string  `json:"university"`
	Company    Company `json:"company"`
	Bank       Bank    `json:"bank"`
	Role       string  `json:"role,omitempty"`
}

// FullName joins first and last name
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UsersResponse is one page of users
type UsersResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}
