package source

import (
	"context"
	"strings"

	"faqsearch/internal/contextutil"
)

// chatSheetTab is the spreadsheet tab holding per-tenant chat settings.
const chatSheetTab = "Chat"

const (
	markerKey          = "#KEY"
	markerValue        = "#VALUE"
	markerSystemPrompt = "#system-prompt"
)

// ResolvePrompt reads the tenant's system prompt from the "Chat" tab: the
// value column of the row whose key column contains the system-prompt marker.
//
// Prompt customization is optional per tenant, so every failure here is soft:
// an unreachable tab, a missing marker row or an unparsable sheet all yield
// ("", false) and the caller falls back to the default prompt.
func (l *Loader) ResolvePrompt(ctx context.Context, typ Type, id string, data *Payload) (string, bool) {
	logger := contextutil.LoggerFromContext(ctx)

	rows, err := l.rows(ctx, typ, chatSheetTab, id, data)
	if err != nil {
		logger.DebugContext(ctx, "no tenant prompt available", "error", err)
		return "", false
	}
	if len(rows) < 2 {
		return "", false
	}

	keyCol, valueCol := -1, -1
	for i, h := range rows[0] {
		if strings.Contains(h, markerKey) {
			keyCol = i
		}
		if strings.Contains(h, markerValue) {
			valueCol = i
		}
	}
	if keyCol < 0 || valueCol < 0 {
		return "", false
	}

	for _, row := range rows[1:] {
		if keyCol >= len(row) || valueCol >= len(row) {
			continue
		}
		if strings.Contains(row[keyCol], markerSystemPrompt) {
			prompt := strings.TrimSpace(row[valueCol])
			if prompt == "" {
				return "", false
			}
			return prompt, true
		}
	}
	return "", false
}
