package dto

// SettingsRequest is the body of a settings update. Empty times select
// the defaults.
type SettingsRequest struct {
	CoachPersonality string `json:"coachPersonality"`
	RemindersEnabled bool   `json:"remindersEnabled"`
	MorningTime      string `json:"morningTime" validate:"omitempty,hhmm"`
	EveningTime      string `json:"eveningTime" validate:"omitempty,hhmm"`
	Email            string `json:"email" validate:"omitempty,email"`
}

type SettingsResponse struct {
	CoachPersonality string `json:"coachPersonality"`
	RemindersEnabled bool   `json:"remindersEnabled"`
	MorningTime      string `json:"morningTime"`
	EveningTime      string `json:"eveningTime"`
	Email            string `json:"email,omitempty"`
}
