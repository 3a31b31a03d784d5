package extension

import (
	alertcallouts "github.com/zmtcreative/gm-alert-callouts"
	"go.abhg.dev/goldmark/mermaid"
)

// RegisterBuiltins installs the extender modules that ship with the host
// binary. Installed extensions opt into them by naming one in their
// manifest's plugin hook.
func RegisterBuiltins(r *HookRegistry) {
	r.Register("mermaid", ExportExtender(&mermaid.Extender{}))
	r.Register("alert-callouts", ExportExtender(alertcallouts.NewAlertCallouts(
		alertcallouts.UseGFMStrictIcons(),
		alertcallouts.WithFolding(true),
	)))
}
