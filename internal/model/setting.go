package model

import "time"

// AppSetting represents a key-value pair for global application configuration.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Exam control setting keys. Controls are global, not per exam.
const (
	SettingShowResultImmediately = "show_result_immediately"
	SettingShowResultHistory     = "show_result_history"
	SettingShowRankings          = "show_rankings"
	SettingAllowAnswerReview     = "allow_answer_review"
	SettingCopyProtection        = "enable_copy_protection"
	SettingScreenshotBlock       = "enable_screenshot_block"
	SettingTabSwitchDetect       = "enable_tab_switch_detect"
)

// ExamControls is the typed view over the exam control settings rows.
type ExamControls struct {
	ShowResultImmediately bool `json:"show_result_immediately"`
	ShowResultHistory     bool `json:"show_result_history"`
	ShowRankings          bool `json:"show_rankings"`
	AllowAnswerReview     bool `json:"allow_answer_review"`
	CopyProtection        bool `json:"enable_copy_protection"`
	ScreenshotBlock       bool `json:"enable_screenshot_block"`
	TabSwitchDetect       bool `json:"enable_tab_switch_detect"`
}

// DefaultExamControls mirrors the seed values: everything visible and
// anti-cheat client toggles on, answer review off.
func DefaultExamControls() ExamControls {
	return ExamControls{
		ShowResultImmediately: true,
		ShowResultHistory:     true,
		ShowRankings:          true,
		AllowAnswerReview:     false,
		CopyProtection:        true,
		ScreenshotBlock:       true,
		TabSwitchDetect:       true,
	}
}

// UpdateControlsRequest is the payload for bulk updating exam controls.
type UpdateControlsRequest struct {
	Controls map[string]bool `json:"controls" binding:"required"`
}
