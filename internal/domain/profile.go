package domain

import "time"

// CandidateProfile is the directory row created for each candidate account.
type CandidateProfile struct {
	CredentialID string    `json:"credential_id"`
	UserName     string    `json:"user_name"`
	Email        string    `json:"email"`
	Headline     string    `json:"headline,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// EmployerProfile is the directory row created for each employer account.
type EmployerProfile struct {
	CredentialID string    `json:"credential_id"`
	UserName     string    `json:"user_name"`
	Email        string    `json:"email"`
	CompanyName  string    `json:"company_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
