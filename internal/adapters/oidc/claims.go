package oidc

import (
	"time"

	"github.com/samber/lo"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

// claims covers standard OIDC claims and the Active Directory (ADFS) shape.
type claims struct {
	Subject       string   `json:"sub"`
	Email         string   `json:"email"`
	EmailVerified *bool    `json:"email_verified"`
	GivenName     string   `json:"given_name"`
	FamilyName    string   `json:"family_name"`
	Groups        []string `json:"groups"`

	SamAccountName string   `json:"samaccountname"`
	Mail           string   `json:"mail"`
	UPN            string   `json:"upn"`
	FirstName      string   `json:"firstname"`
	LastName       string   `json:"lastname"`
	MemberOf       []string `json:"memberof"`
}

func (c claims) userID() string {
	return lo.CoalesceOrEmpty(c.SamAccountName, c.Subject)
}

// primaryEmail prefers a verified standard email claim over directory attributes.
func (c claims) primaryEmail() string {
	email := c.Email
	if c.EmailVerified != nil && !*c.EmailVerified {
		email = ""
	}
	return lo.CoalesceOrEmpty(email, c.Mail, c.UPN)
}

func (c claims) groups() []string {
	if len(c.Groups) > 0 {
		return c.Groups
	}
	return c.MemberOf
}

func (c claims) complete() bool {
	return c.userID() != "" && c.primaryEmail() != ""
}

// merge fills fields missing from c with values from other.
func (c claims) merge(other claims) claims {
	c.Subject = lo.CoalesceOrEmpty(c.Subject, other.Subject)
	c.SamAccountName = lo.CoalesceOrEmpty(c.SamAccountName, other.SamAccountName)
	if c.primaryEmail() == "" {
		c.Email, c.EmailVerified = other.Email, other.EmailVerified
		c.Mail = other.Mail
		c.UPN = other.UPN
	}
	c.GivenName = lo.CoalesceOrEmpty(c.GivenName, other.GivenName)
	c.FamilyName = lo.CoalesceOrEmpty(c.FamilyName, other.FamilyName)
	c.FirstName = lo.CoalesceOrEmpty(c.FirstName, other.FirstName)
	c.LastName = lo.CoalesceOrEmpty(c.LastName, other.LastName)
	if len(c.groups()) == 0 {
		c.Groups, c.MemberOf = other.Groups, other.MemberOf
	}
	return c
}

func (c claims) identity(expiresAt time.Time) domainauth.Identity {
	return domainauth.Identity{
		UserID:    c.userID(),
		FirstName: lo.CoalesceOrEmpty(c.GivenName, c.FirstName),
		LastName:  lo.CoalesceOrEmpty(c.FamilyName, c.LastName),
		Email:     c.primaryEmail(),
		Groups:    c.groups(),
		ExpiresAt: expiresAt,
	}
}
