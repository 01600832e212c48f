package tui

import "github.com/rgehrsitz/taxcalc/internal/tui/tuistyles"

// Re-export styles from tuistyles to avoid import cycles
var (
	ColorPrimary = tuistyles.ColorPrimary
	ColorMuted   = tuistyles.ColorMuted

	AppStyle               = tuistyles.AppStyle
	TitleStyle             = tuistyles.TitleStyle
	SubtitleStyle          = tuistyles.SubtitleStyle
	BorderStyle            = tuistyles.BorderStyle
	ActiveBorderStyle      = tuistyles.ActiveBorderStyle
	FieldLabelStyle        = tuistyles.FieldLabelStyle
	FocusedFieldLabelStyle = tuistyles.FocusedFieldLabelStyle
	TableHeaderStyle       = tuistyles.TableHeaderStyle
	TableCellStyle         = tuistyles.TableCellStyle
	ErrorStyle             = tuistyles.ErrorStyle
	InfoStyle              = tuistyles.InfoStyle
)
