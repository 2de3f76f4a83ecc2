package cli

import (
	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/emoji"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// GetStageEmoji returns the emoji of an analysis stage
func GetStageEmoji(stage analysis.Stage) string {
	if stage == analysis.StageNone {
		return GetEmoji("info")
	}
	return GetEmoji(stage.String())
}

// GetVerdictEmoji returns the success or error symbol
func GetVerdictEmoji(ok bool) string {
	if ok {
		return GetEmoji("success")
	}
	return GetEmoji("error")
}
