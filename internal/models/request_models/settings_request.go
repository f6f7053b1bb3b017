package request_models

// UpdateSettingsRequest carries the mutable profile fields. Pointer fields
// are optional; nil means leave the stored value alone.
type UpdateSettingsRequest struct {
	Nickname         *string  `json:"nickname"`
	ProfileImage     *string  `json:"profile_image"`
	GenderPreference *string  `json:"gender_preference"`
	PreferredAgeMin  *int     `json:"preferred_age_min"`
	PreferredAgeMax  *int     `json:"preferred_age_max"`
	Proximity        *string  `json:"proximity"`
	MetroArea        *string  `json:"metro_area"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
}
