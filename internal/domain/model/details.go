package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the wire format of DateOfBirth.
const DateLayout = "2006-01-02"

// Limits on free-form profile fields.
const (
	MaxShortText     = 100
	MaxBioLength     = 2_000
	MaxListEntries   = 20
	MinGraduation    = 1900
	MaxGraduation    = 2100
	maxHeightLength  = 50
	maxURLLength     = 500
	maxListEntryText = 200
)

// ErrInvalidDetails is wrapped by every Details validation failure.
var ErrInvalidDetails = errors.New("invalid profile details")

// Details holds the descriptive, optional part of an athlete profile.
type Details struct {
	DateOfBirth       string   `json:"dateOfBirth,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	ProfilePictureURL string   `json:"profilePictureUrl,omitempty"`
	Hometown          string   `json:"hometown,omitempty"`
	HighSchool        string   `json:"highSchool,omitempty"`
	College           string   `json:"college,omitempty"`
	GraduationYear    int      `json:"graduationYear,omitempty"`
	Positions         []string `json:"positions,omitempty"`
	HeightFeet        string   `json:"heightFeet,omitempty"`
	Weight            int      `json:"weight,omitempty"`
	PhoneNumber       string   `json:"phoneNumber,omitempty"`
	SocialMediaLinks  []string `json:"socialMediaLinks,omitempty"`
}

// Normalized trims every text field and drops blank list entries. Empty
// lists become nil.
func (d Details) Normalized() Details {
	d.DateOfBirth = strings.TrimSpace(d.DateOfBirth)
	d.Bio = strings.TrimSpace(d.Bio)
	d.ProfilePictureURL = strings.TrimSpace(d.ProfilePictureURL)
	d.Hometown = strings.TrimSpace(d.Hometown)
	d.HighSchool = strings.TrimSpace(d.HighSchool)
	d.College = strings.TrimSpace(d.College)
	d.HeightFeet = strings.TrimSpace(d.HeightFeet)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.Positions = compact(d.Positions)
	d.SocialMediaLinks = compact(d.SocialMediaLinks)
	return d
}

// Clone returns a copy of d that shares no list storage with it.
func (d Details) Clone() Details {
	d.Positions = slices.Clone(d.Positions)
	d.SocialMediaLinks = slices.Clone(d.SocialMediaLinks)
	return d
}

func compact(list []string) []string {
	var out []string
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate reports the first field that is out of bounds.
func (d Details) Validate() error {
	if d.DateOfBirth != "" {
		if _, err := time.Parse(DateLayout, d.DateOfBirth); err != nil {
			return fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", ErrInvalidDetails)
		}
	}
	if d.GraduationYear != 0 && (d.GraduationYear < MinGraduation || d.GraduationYear > MaxGraduation) {
		return fmt.Errorf("%w: graduationYear must be within [%d, %d]", ErrInvalidDetails, MinGraduation, MaxGraduation)
	}
	if d.Weight < 0 {
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidDetails)
	}

	limits := []struct {
		name  string
		value string
		max   int
	}{
		{"bio", d.Bio, MaxBioLength},
		{"profilePictureUrl", d.ProfilePictureURL, maxURLLength},
		{"hometown", d.Hometown, MaxShortText},
		{"highSchool", d.HighSchool, MaxShortText},
		{"college", d.College, MaxShortText},
		{"heightFeet", d.HeightFeet, maxHeightLength},
		{"phoneNumber", d.PhoneNumber, MaxShortText},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidDetails, l.name, l.max)
		}
	}

	for name, list := range map[string][]string{"positions": d.Positions, "socialMediaLinks": d.SocialMediaLinks} {
		if len(list) > MaxListEntries {
			return fmt.Errorf("%w: %s holds more than %d entries", ErrInvalidDetails, name, MaxListEntries)
		}
		if slices.ContainsFunc(list, func(v string) bool { return utf8.RuneCountInString(v) > maxListEntryText }) {
			return fmt.Errorf("%w: %s entries exceed %d characters", ErrInvalidDetails, name, maxListEntryText)
		}
	}
	return nil
}

// DetailsPatch is a partial Details update. Nil fields are left unchanged.
type DetailsPatch struct {
	DateOfBirth       *string   `json:"dateOfBirth,omitempty"`
	Bio               *string   `json:"bio,omitempty"`
	ProfilePictureURL *string   `json:"profilePictureUrl,omitempty"`
	Hometown          *string   `json:"hometown,omitempty"`
	HighSchool        *string   `json:"highSchool,omitempty"`
	College           *string   `json:"college,omitempty"`
	GraduationYear    *int      `json:"graduationYear,omitempty"`
	Positions         *[]string `json:"positions,omitempty"`
	HeightFeet        *string   `json:"heightFeet,omitempty"`
	Weight            *int      `json:"weight,omitempty"`
	PhoneNumber       *string   `json:"phoneNumber,omitempty"`
	SocialMediaLinks  *[]string `json:"socialMediaLinks,omitempty"`
}

// Apply returns d with every non-nil patch field written over it.
func (p DetailsPatch) Apply(d Details) Details {
	set(&d.DateOfBirth, p.DateOfBirth)
	set(&d.Bio, p.Bio)
	set(&d.ProfilePictureURL, p.ProfilePictureURL)
	set(&d.Hometown, p.Hometown)
	set(&d.HighSchool, p.HighSchool)
	set(&d.College, p.College)
	set(&d.GraduationYear, p.GraduationYear)
	set(&d.Positions, p.Positions)
	set(&d.HeightFeet, p.HeightFeet)
	set(&d.Weight, p.Weight)
	set(&d.PhoneNumber, p.PhoneNumber)
	set(&d.SocialMediaLinks, p.SocialMediaLinks)
	return d
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
