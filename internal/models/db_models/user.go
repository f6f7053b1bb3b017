package db_models

import "time"

// Closed enumerations for the demographic fields. The discover query builds
// its predicate from these, so anything else stored in the columns is
// effectively invisible to matching.
const (
	GenderMan   = "man"
	GenderWoman = "woman"

	PreferenceMen          = "men"
	PreferenceWomen        = "women"
	PreferenceNoPreference = "no_preference"

	ProximityLocal    = "local"
	ProximityAnywhere = "anywhere"
)

type User struct {
	BaseModel
	Email        string `gorm:"unique"`
	PasswordHash string
	Username     string `gorm:"unique"`
	Nickname     string
	ProfileImage string

	DateOfBirth      time.Time
	Gender           string
	GenderPreference string `gorm:"default:no_preference"`
	PreferredAgeMin  int    `gorm:"default:18"`
	PreferredAgeMax  int    `gorm:"default:99"`
	Proximity        string `gorm:"default:anywhere"`
	MetroArea        string
	Latitude         float64
	Longitude        float64

	Tags     []Tag     `gorm:"many2many:user_tags"`
	Thoughts []Thought `gorm:"foreignKey:UserID"`
}

// DisplayName is what explanation text refers to the user by.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

func ValidGenderPreference(p string) bool {
	return p == PreferenceMen || p == PreferenceWomen || p == PreferenceNoPreference
}

func ValidProximity(p string) bool {
	return p == ProximityLocal || p == ProximityAnywhere
}
