package response_models

type LoginResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	Username         string  `json:"username"`
	Nickname         string  `json:"nickname,omitempty"`
	ProfileImage     string  `json:"profile_image,omitempty"`
	DateOfBirth      string  `json:"date_of_birth"`
	Gender           string  `json:"gender"`
	GenderPreference string  `json:"gender_preference"`
	PreferredAgeMin  int     `json:"preferred_age_min"`
	PreferredAgeMax  int     `json:"preferred_age_max"`
	Proximity        string  `json:"proximity"`
	MetroArea        string  `json:"metro_area,omitempty"`
	Latitude         float64 `json:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty"`
}
