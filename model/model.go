package model

import "gorm.io/gorm"

// Speech status values
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
)

// Allowed tone values
var Tones = []string{"inspiring", "educational", "storytelling", "persuasive", "humorous"}

// Allowed target durations in minutes
var Durations = []int{5, 10, 15, 18}

// User struct
type User struct {
	gorm.Model
	Email      string `gorm:"uniqueIndex;not null" json:"email" form:"email"`
	Password   string `gorm:"not null" json:"-" form:"password"`
	Names      string `json:"names"`
	Status     uint   `gorm:"not null;default:0" json:"status"`
	Token      string `json:"-"`
	ResetToken string `json:"-"`
}

// Speech struct
type Speech struct {
	gorm.Model
	UserID               uint   `gorm:"not null;index" json:"user_id"`
	Title                string `gorm:"not null" json:"title" form:"title"`
	Topic                string `gorm:"not null" json:"topic" form:"topic"`
	KeyMessage           string `json:"key_message" form:"key_message"`
	AudienceDemographics string `json:"audience_demographics" form:"audience_demographics"`
	SpeakerBackground    string `json:"speaker_background" form:"speaker_background"`
	DurationMinutes      int    `gorm:"not null;default:15" json:"duration_minutes" form:"duration_minutes"`
	Tone                 string `gorm:"not null;default:inspiring" json:"tone" form:"tone"`
	Content              string `json:"content" form:"content"`
	Status               string `gorm:"not null;default:draft" json:"status"`
}

// Analysis struct, at most one per speech
type Analysis struct {
	gorm.Model
	SpeechID          uint   `gorm:"not null;uniqueIndex" json:"speech_id"`
	Logos             int    `gorm:"not null" json:"logos"`
	Pathos            int    `gorm:"not null" json:"pathos"`
	Ethos             int    `gorm:"not null" json:"ethos"`
	LogosDescription  string `json:"logos_description"`
	PathosDescription string `json:"pathos_description"`
	EthosDescription  string `json:"ethos_description"`
	OverallScore      int    `gorm:"not null" json:"overall_score"`
}

// ValidTone reports whether tone is one of the allowed values.
func ValidTone(tone string) bool {
	for _, t := range Tones {
		if t == tone {
			return true
		}
	}
	return false
}

// ValidDuration reports whether minutes is one of the allowed durations.
func ValidDuration(minutes int) bool {
	for _, d := range Durations {
		if d == minutes {
			return true
		}
	}
	return false
}
