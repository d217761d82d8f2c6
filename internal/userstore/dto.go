package userstore

// LoginDTO is the transport shape for login requests.
type LoginDTO struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RefreshTokenDTO for token refresh requests.
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d LoginDTO) Validate() error {
	if d.Login == "" {
		return ValidationError{Msg: "login is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}

// Validate checks the required Person fields on create/update payloads.
func (p Person) Validate() error {
	if p.Firstname == "" {
		return ValidationError{Msg: "firstname is required"}
	}
	if p.Lastname == "" {
		return ValidationError{Msg: "lastname is required"}
	}
	if p.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if p.Phone == "" {
		return ValidationError{Msg: "phone is required"}
	}
	return nil
}

// ValidateForCreate checks an AppUser create payload. The person must
// already exist; only its surrogate id is consulted.
func (u AppUser) ValidateForCreate() error {
	if u.Login == "" {
		return ValidationError{Msg: "login is required"}
	}
	if u.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	if u.Person.ID == 0 {
		return ValidationError{Msg: "person.id is required"}
	}
	return nil
}
