package templates

import (
	"fmt"
	"strings"
	"time"

	"flight-pipeline-service/internal/orchestrator"
)

// RenderRunReport formats the per-stage outcome of a pipeline run as a
// text block for the end-of-run log
func RenderRunReport(state *orchestrator.State) string {
	if state == nil {
		return "no pipeline state"
	}

	var b strings.Builder
	b.WriteString("pipeline run report\n")
	b.WriteString(fmt.Sprintf("%-10s %-10s %-9s %-12s %s\n", "STAGE", "STATUS", "ATTEMPTS", "DURATION", "ERROR"))

	for _, ss := range state.Summary() {
		errText := "-"
		if ss.LastError != "" {
			errText = ss.LastError
		}
		b.WriteString(fmt.Sprintf("%-10s %-10s %-9d %-12s %s\n",
			ss.Name,
			string(ss.Status),
			ss.Attempts,
			formatDuration(ss),
			errText))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDuration(ss orchestrator.StageState) string {
	if ss.StartedAt == nil || ss.FinishedAt == nil {
		return "-"
	}
	return ss.Duration().Truncate(time.Millisecond).String()
}
